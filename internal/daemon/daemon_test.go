package daemon

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/strix/internal/config"
	"firestige.xyz/strix/internal/control"
	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/iface"
	"firestige.xyz/strix/internal/log"
)

func testDaemon(t *testing.T) *Daemon {
	t.Helper()
	d := &Daemon{
		cfg:    &config.Config{PollInterval: 10 * time.Millisecond},
		logger: log.Discard(),
		inbox:  make(chan *control.Inbound, 8),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	t.Cleanup(d.cancel)
	return d
}

func mustAddr(s string) core.Address {
	a, err := core.ParseAddr(s)
	if err != nil {
		panic(err)
	}
	return a
}

// mapRequestBody builds the fixed map-request prefix followed by the given
// source-EID bytes (AFI first).
func mapRequestBody(eid ...byte) []byte {
	body := make([]byte, mapRequestEIDOffset)
	body[0] = 0x10
	return append(body, eid...)
}

func buildEncap(t *testing.T, inner []byte) []byte {
	t.Helper()
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP{192, 0, 2, 8},
		DstIP:    net.IP{10, 0, 0, 1},
	}
	udp := &layers.UDP{SrcPort: 61001, DstPort: control.Port}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, udp, gopacket.Payload(inner)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return append([]byte{0x80, 0x00, 0x00, 0x00}, buf.Bytes()...)
}

func TestDispatchLoopSurvivesHandlerErrors(t *testing.T) {
	d := testDaemon(t)

	processed := make(chan struct{}, 1)
	d.dispatcher = control.NewDispatcher(control.Handlers{
		MapReply: func(context.Context, []byte) error { return errors.New("boom") },
		MapNotify: func(context.Context, []byte) error {
			processed <- struct{}{}
			return nil
		},
	}, log.Discard())

	go d.dispatchLoop()

	d.inbox <- &control.Inbound{Data: []byte{0x20, 0x00, 0x00, 0x01}}
	d.inbox <- &control.Inbound{Data: []byte{0x40, 0x00, 0x00, 0x01}}

	select {
	case <-processed:
	case <-time.After(time.Second):
		t.Fatal("expected the loop to keep dispatching after a handler error")
	}
}

func TestHandleMapRequest(t *testing.T) {
	d := testDaemon(t)
	ctx := context.Background()
	rloc := mustAddr("192.0.2.1")

	t.Run("Plain", func(t *testing.T) {
		body := mapRequestBody(0x00, 0x01, 10, 0, 0, 9)
		if err := d.handleMapRequest(ctx, body, rloc, 61000); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("Encapsulated", func(t *testing.T) {
		wrapped := buildEncap(t, mapRequestBody(0x00, 0x01, 10, 0, 0, 9))
		if err := d.handleMapRequest(ctx, wrapped, rloc, 61000); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("TruncatedEncap", func(t *testing.T) {
		wrapped := buildEncap(t, mapRequestBody(0x00, 0x01, 10, 0, 0, 9))
		if err := d.handleMapRequest(ctx, wrapped[:10], rloc, 61000); err == nil {
			t.Error("expected error for truncated encapsulation")
		}
	})
	t.Run("TooShort", func(t *testing.T) {
		err := d.handleMapRequest(ctx, []byte{0x10, 0x00}, rloc, 61000)
		if !errors.Is(err, core.ErrPacketTooShort) {
			t.Errorf("expected ErrPacketTooShort, got %v", err)
		}
	})
}

func TestRequestSourceEID(t *testing.T) {
	t.Run("IPv4", func(t *testing.T) {
		eid, err := requestSourceEID(mapRequestBody(0x00, 0x01, 10, 0, 0, 9))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if eid.String() != "10.0.0.9" {
			t.Errorf("expected 10.0.0.9, got %s", eid)
		}
	})
	t.Run("UnspecifiedAFI", func(t *testing.T) {
		eid, err := requestSourceEID(mapRequestBody(0x00, 0x00))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !eid.IsUnspecified() {
			t.Errorf("expected unspecified eid, got %s", eid)
		}
	})
	t.Run("WrongType", func(t *testing.T) {
		body := mapRequestBody(0x00, 0x01, 10, 0, 0, 9)
		body[0] = 0x20
		if _, err := requestSourceEID(body); err == nil {
			t.Error("expected error for non map-request body")
		}
	})
	t.Run("TruncatedAddress", func(t *testing.T) {
		_, err := requestSourceEID(mapRequestBody(0x00, 0x01, 10))
		if !errors.Is(err, core.ErrPacketTooShort) {
			t.Errorf("expected ErrPacketTooShort, got %v", err)
		}
	})
}

func TestRecordHandlers(t *testing.T) {
	d := testDaemon(t)
	ctx := context.Background()

	t.Run("MapReply", func(t *testing.T) {
		if err := d.handleMapReply(ctx, []byte{0x20, 0x00, 0x00, 0x02}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := d.handleMapReply(ctx, []byte{0x20}); !errors.Is(err, core.ErrPacketTooShort) {
			t.Errorf("expected ErrPacketTooShort, got %v", err)
		}
	})
	t.Run("MapNotify", func(t *testing.T) {
		if err := d.handleMapNotify(ctx, []byte{0x40, 0x00, 0x00, 0x01}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("MapReferral", func(t *testing.T) {
		if err := d.handleMapReferral(ctx, []byte{0x60, 0x00, 0x00, 0x01}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("InfoNAT", func(t *testing.T) {
		err := d.handleInfoNAT(ctx, []byte{0x70, 0x00, 0x00, 0x00}, mustAddr("192.0.2.1"))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

type fakeEnum struct {
	addrs []iface.IfAddr
	err   error
}

func (f fakeEnum) Addresses() ([]iface.IfAddr, error) { return f.addrs, f.err }

func TestDiscoverRLOCs(t *testing.T) {
	t.Run("BothFamilies", func(t *testing.T) {
		d := testDaemon(t)
		d.cfg.ControlIface = "eth0"
		d.enumerator = fakeEnum{addrs: []iface.IfAddr{
			{Iface: "eth0", Addr: mustAddr("10.0.0.5"), Up: true},
			{Iface: "eth0", Addr: mustAddr("2001:db8::5"), Up: true},
		}}
		if err := d.discoverRLOCs(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.localV4.String() != "10.0.0.5" {
			t.Errorf("expected 10.0.0.5, got %s", d.localV4)
		}
		if d.localV6.String() != "2001:db8::5" {
			t.Errorf("expected 2001:db8::5, got %s", d.localV6)
		}
	})
	t.Run("NoAddress", func(t *testing.T) {
		d := testDaemon(t)
		d.cfg.ControlIface = "eth0"
		d.enumerator = fakeEnum{}
		if err := d.discoverRLOCs(); !errors.Is(err, core.ErrNoInterfaceAddress) {
			t.Errorf("expected ErrNoInterfaceAddress, got %v", err)
		}
	})
	t.Run("ForcedFamily", func(t *testing.T) {
		d := testDaemon(t)
		d.cfg.ControlIface = "eth0"
		d.cfg.DefaultRLOCFamily = "ipv6"
		d.enumerator = fakeEnum{addrs: []iface.IfAddr{
			{Iface: "eth0", Addr: mustAddr("10.0.0.5"), Up: true},
			{Iface: "eth0", Addr: mustAddr("2001:db8::5"), Up: true},
		}}
		if err := d.discoverRLOCs(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.localV4.IsIP() {
			t.Errorf("expected no ipv4 rloc, got %s", d.localV4)
		}
		if !d.localV6.IsIP() {
			t.Error("expected an ipv6 rloc")
		}
	})
}

func TestSelectResolver(t *testing.T) {
	t.Run("Compatible", func(t *testing.T) {
		d := testDaemon(t)
		d.localV4 = mustAddr("10.0.0.5")
		resolvers := &core.AddressList{}
		if err := resolvers.Prepend(mustAddr("192.0.2.1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d.peers = &config.Peers{MapResolvers: resolvers}
		if err := d.selectResolver(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("Incompatible", func(t *testing.T) {
		d := testDaemon(t)
		d.localV4 = mustAddr("10.0.0.5")
		resolvers := &core.AddressList{}
		if err := resolvers.Prepend(mustAddr("2001:db8::1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d.peers = &config.Peers{MapResolvers: resolvers}
		if err := d.selectResolver(); !errors.Is(err, core.ErrNoCompatibleResolver) {
			t.Errorf("expected ErrNoCompatibleResolver, got %v", err)
		}
	})
	t.Run("NoneConfigured", func(t *testing.T) {
		d := testDaemon(t)
		d.peers = &config.Peers{MapResolvers: &core.AddressList{}}
		if err := d.selectResolver(); err != nil {
			t.Errorf("expected none-configured to pass, got %v", err)
		}
	})
}

func TestPIDFile(t *testing.T) {
	d := testDaemon(t)
	d.pidFile = filepath.Join(t.TempDir(), "strix.pid")

	if err := d.writePIDFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		t.Fatalf("expected pid file to exist: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected pid file to hold the pid")
	}

	if err := d.removePIDFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(d.pidFile); !os.IsNotExist(err) {
		t.Error("expected pid file to be removed")
	}
	// Removing again is not an error.
	if err := d.removePIDFile(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStopClearsState(t *testing.T) {
	d := testDaemon(t)
	d.pidFile = filepath.Join(t.TempDir(), "strix.pid")
	if err := d.writePIDFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolvers := &core.AddressList{}
	if err := resolvers.Prepend(mustAddr("192.0.2.1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.peers = &config.Peers{MapResolvers: resolvers}

	d.Stop()

	if d.peers.MapResolvers.Len() != 0 {
		t.Error("expected resolver list to be cleared")
	}
	if d.ctx.Err() == nil {
		t.Error("expected context to be cancelled")
	}
	if _, err := os.Stat(d.pidFile); !os.IsNotExist(err) {
		t.Error("expected pid file to be removed")
	}
}

func TestReloadReportsRestartChanges(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "strix.yml")
	content := "control_iface: eth1\ncontrol_port: 9999\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logPath := filepath.Join(dir, "out.log")
	logger, err := log.New(&log.Config{
		Level:   "info",
		Pattern: "%msg\n",
		Appenders: []log.AppenderConfig{
			{Type: "file", Options: map[string]interface{}{"filename": logPath}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := &Daemon{
		cfg: &config.Config{
			ControlIface: "eth0",
			ControlPort:  4342,
			PollInterval: time.Second,
			Log:          &log.Config{Level: "info"},
		},
		configPath: configPath,
		logger:     logger,
	}

	if err := d.Reload(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log output: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "control_iface") || !strings.Contains(text, "control_port") {
		t.Errorf("expected changed keys in the restart warning, got %q", text)
	}
	if !strings.Contains(text, "need a restart") {
		t.Errorf("expected a restart warning, got %q", text)
	}
}

func TestReloadBadConfig(t *testing.T) {
	d := testDaemon(t)
	d.configPath = filepath.Join(t.TempDir(), "missing.yml")
	if err := d.Reload(); err == nil {
		t.Error("expected error for missing config file")
	}
}

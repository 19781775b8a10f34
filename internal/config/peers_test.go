package config

import (
	"context"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
)

func stubResolver(hosts map[string][]string) *core.Resolver {
	return &core.Resolver{Lookup: func(_ context.Context, _, host string) ([]netip.Addr, error) {
		var out []netip.Addr
		for _, s := range hosts[host] {
			out = append(out, netip.MustParseAddr(s))
		}
		return out, nil
	}}
}

func TestResolvePeers(t *testing.T) {
	logger := log.Discard()

	t.Run("ResolverOrderNewestFirst", func(t *testing.T) {
		cfg := &Config{MapResolvers: []string{"192.0.2.1", "192.0.2.2"}}
		peers, err := cfg.ResolvePeers(context.Background(), stubResolver(nil), logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		addrs := peers.MapResolvers.Addrs()
		if len(addrs) != 2 || addrs[0].String() != "192.0.2.2" || addrs[1].String() != "192.0.2.1" {
			t.Errorf("expected newest-first order, got %v", addrs)
		}
	})

	t.Run("HostnameExpansion", func(t *testing.T) {
		cfg := &Config{MapResolvers: []string{"mr.example.com"}}
		r := stubResolver(map[string][]string{
			"mr.example.com": {"192.0.2.10", "2001:db8::10"},
		})
		peers, err := cfg.ResolvePeers(context.Background(), r, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peers.MapResolvers.Len() != 2 {
			t.Errorf("expected both lookup results, got %v", peers.MapResolvers.Addrs())
		}
	})

	t.Run("MapServerKeyDecoded", func(t *testing.T) {
		cfg := &Config{MapServers: []MapServer{{
			Address: "192.0.2.2",
			KeyType: 1,
			Key:     "000102030405060708090a0b0c0d0e0f10111213",
		}}}
		peers, err := cfg.ResolvePeers(context.Background(), stubResolver(nil), logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(peers.MapServers) != 1 {
			t.Fatalf("expected one map server, got %d", len(peers.MapServers))
		}
		ms := peers.MapServers[0]
		if ms.KeyType != KeyHMACSHA1 || len(ms.Key) != 20 {
			t.Errorf("expected a 20-byte sha1 key, got type %s len %d", ms.KeyType, len(ms.Key))
		}
	})

	t.Run("StaticMapParsed", func(t *testing.T) {
		cfg := &Config{StaticMapCache: []StaticMapEntry{{
			EIDPrefix: "203.0.113.0/24",
			RLOC:      "192.0.2.4",
			Priority:  1,
			Weight:    50,
		}}}
		peers, err := cfg.ResolvePeers(context.Background(), stubResolver(nil), logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(peers.StaticMap) != 1 {
			t.Fatalf("expected one static entry, got %d", len(peers.StaticMap))
		}
		sm := peers.StaticMap[0]
		if sm.EID.String() != "203.0.113.0/24" || sm.RLOC.String() != "192.0.2.4" {
			t.Errorf("expected 203.0.113.0/24 via 192.0.2.4, got %s via %s", sm.EID, sm.RLOC)
		}
	})

	t.Run("UnresolvableHostFails", func(t *testing.T) {
		cfg := &Config{ProxyETRs: []ProxyETR{{Address: "gone.example.com"}}}
		_, err := cfg.ResolvePeers(context.Background(), stubResolver(nil), logger)
		if err == nil {
			t.Error("expected error for unresolvable proxy etr")
		}
	})
}

func TestPeersDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.log")
	logger, err := log.New(&log.Config{
		Level:   "debug",
		Pattern: "%msg\n",
		Appenders: []log.AppenderConfig{
			{Type: "file", Options: map[string]interface{}{"filename": path}},
		},
	})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	cfg := &Config{
		MapResolvers: []string{"192.0.2.1"},
		MapServers: []MapServer{{
			Address: "192.0.2.2",
			KeyType: 2,
			Key:     "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		}},
		ProxyETRs: []ProxyETR{{Address: "192.0.2.3", Priority: 1, Weight: 100}},
	}
	peers, err := cfg.ResolvePeers(context.Background(), stubResolver(nil), logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	peers.Dump(logger)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"Map-Resolvers",
		"Map-Servers list",
		"HMAC-SHA-256-128",
		"Proxy ETRs List",
		"1/100",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected dump to contain %q, got:\n%s", want, out)
		}
	}
}

func TestDumpSkippedBelowDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.log")
	logger, err := log.New(&log.Config{
		Level:   "info",
		Pattern: "%msg\n",
		Appenders: []log.AppenderConfig{
			{Type: "file", Options: map[string]interface{}{"filename": path}},
		},
	})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	list := &core.AddressList{}
	a, _ := core.ParseAddr("192.0.2.1")
	if err := list.Prepend(a); err != nil {
		t.Fatalf("prepend: %v", err)
	}
	DumpServers(list, "Map-Resolvers", logger)

	if data, err := os.ReadFile(path); err == nil && strings.Contains(string(data), "Map-Resolvers") {
		t.Error("expected no dump output below debug level")
	}
}

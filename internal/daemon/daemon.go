// Package daemon wires configuration, peer resolution, control sockets and
// the dispatch loop into one process lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"firestige.xyz/strix/internal/config"
	"firestige.xyz/strix/internal/control"
	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/iface"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/metrics"
)

// Daemon is the running agent: the resolved peer lists, one control socket
// per usable address family, and the dispatch loop that owns all message
// processing.
type Daemon struct {
	cfg        *config.Config
	configPath string
	pidFile    string
	logger     log.Logger

	enumerator iface.Enumerator
	resolver   *core.Resolver

	peers   *config.Peers
	localV4 core.Address
	localV6 core.Address

	conns         []*control.Conn
	dispatcher    *control.Dispatcher
	inbox         chan *control.Inbound
	metricsServer *metrics.Server

	ctx     context.Context
	cancel  context.CancelFunc
	sigChan chan os.Signal
}

// New loads the configuration, initializes logging and returns an
// unstarted daemon.
func New(configPath, pidFile string) (*Daemon, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := log.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		pidFile:    pidFile,
		logger:     log.GetLogger(),
		enumerator: iface.System(),
		resolver:   &core.Resolver{},
		inbox:      make(chan *control.Inbound, 64),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d, nil
}

// Start brings the components up in dependency order. On error the caller
// is expected to exit; partially started components are closed by Stop.
func (d *Daemon) Start() error {
	d.logger.WithField("config", d.configPath).Info("starting strix agent")

	// 1. PID file
	if err := d.writePIDFile(); err != nil {
		return err
	}

	// 2. Resolve the configured peer lists
	peers, err := d.cfg.ResolvePeers(d.ctx, d.resolver, d.logger)
	if err != nil {
		return fmt.Errorf("resolve peers: %w", err)
	}
	d.peers = peers
	d.peers.Dump(d.logger)

	// 3. Local RLOC discovery on the control interface
	if err := d.discoverRLOCs(); err != nil {
		return err
	}

	// 4. Pick the map-resolver reachable from the local RLOCs
	if err := d.selectResolver(); err != nil {
		return err
	}

	// 5. Control sockets, one per family with a usable RLOC
	if err := d.openSockets(); err != nil {
		return err
	}

	// 6. Metrics endpoint
	if d.cfg.Metrics != nil && d.cfg.Metrics.Enabled {
		d.metricsServer = metrics.NewServer(*d.cfg.Metrics, d.logger)
		d.metricsServer.Start(d.ctx)
	}

	// 7. Reader goroutines feeding the single dispatch loop
	d.dispatcher = control.NewDispatcher(d.handlers(), d.logger)
	for _, conn := range d.conns {
		go d.readLoop(conn)
	}
	go d.dispatchLoop()

	d.logger.Info("strix agent started")
	return nil
}

// discoverRLOCs records the usable IPv4 and IPv6 addresses of the control
// interface. At least one family must yield an address.
func (d *Daemon) discoverRLOCs() error {
	forced, err := core.ParseFamily(d.cfg.DefaultRLOCFamily)
	if err != nil {
		return fmt.Errorf("default_rloc_family: %w", err)
	}

	if a, err := iface.RLOCByName(d.enumerator, d.cfg.ControlIface, core.FamilyIPv4, forced, d.logger); err == nil {
		d.localV4 = a
		d.logger.WithField("rloc", a.String()).Info("ipv4 control rloc")
	}
	if a, err := iface.RLOCByName(d.enumerator, d.cfg.ControlIface, core.FamilyIPv6, forced, d.logger); err == nil {
		d.localV6 = a
		d.logger.WithField("rloc", a.String()).Info("ipv6 control rloc")
	}

	if !d.localV4.IsIP() && !d.localV6.IsIP() {
		return fmt.Errorf("interface %s: %w", d.cfg.ControlIface, core.ErrNoInterfaceAddress)
	}
	return nil
}

func (d *Daemon) selectResolver() error {
	if d.peers.MapResolvers.Len() == 0 {
		d.logger.Warn("no map-resolvers configured")
		return nil
	}
	mr, err := core.SelectMapResolver(d.peers.MapResolvers, d.localV4.IsIP(), d.localV6.IsIP())
	if err != nil {
		return fmt.Errorf("select map-resolver: %w", err)
	}
	endpoint, err := mr.AddrPort(uint16(d.cfg.ControlPort))
	if err != nil {
		return fmt.Errorf("map-resolver endpoint: %w", err)
	}
	d.logger.WithField("resolver", endpoint.String()).Info("selected map-resolver")
	return nil
}

func (d *Daemon) openSockets() error {
	families := []struct {
		family core.Family
		rloc   core.Address
	}{
		{core.FamilyIPv4, d.localV4},
		{core.FamilyIPv6, d.localV6},
	}
	for _, f := range families {
		if !f.rloc.IsIP() {
			continue
		}
		conn, err := control.Listen(d.ctx, f.family, core.Address{}, d.cfg.ControlPort, d.logger)
		if err != nil {
			for _, open := range d.conns {
				open.Close()
			}
			d.conns = nil
			return fmt.Errorf("open %s control socket: %w", f.family, err)
		}
		d.conns = append(d.conns, conn)
	}
	return nil
}

// readLoop pulls datagrams off one socket and queues them for the dispatch
// loop. It exits when the context is cancelled or the socket closes.
func (d *Daemon) readLoop(conn *control.Conn) {
	buf := make([]byte, control.MaxPacketLen)
	for {
		if d.ctx.Err() != nil {
			return
		}
		in, err := conn.ReadMessage(buf, d.cfg.PollInterval)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || d.ctx.Err() != nil {
				return
			}
			d.logger.WithError(err).Warn("control socket read failed")
			continue
		}
		if in == nil {
			continue
		}
		// The next read reuses buf, so the queued message needs its own copy.
		in.Data = append([]byte(nil), in.Data...)
		select {
		case d.inbox <- in:
		case <-d.ctx.Done():
			return
		}
	}
}

// dispatchLoop is the only goroutine that runs message handlers and timer
// work, so handlers never need locks. A handler error is logged and the
// loop moves on.
func (d *Daemon) dispatchLoop() {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.ctx.Done():
			return
		case in := <-d.inbox:
			if err := d.dispatcher.Dispatch(d.ctx, in); err != nil {
				d.logger.WithError(err).Warn("control message processing failed")
			}
		case <-ticker.C:
			d.periodic()
		}
	}
}

// periodic runs the timer work between dispatch cycles.
func (d *Daemon) periodic() {
	if d.logger.IsTraceEnabled() {
		d.logger.Tracef("event loop idle, %d messages queued", len(d.inbox))
	}
}

// Run blocks until a shutdown signal arrives. SIGHUP triggers a
// configuration reload instead of stopping.
func (d *Daemon) Run() error {
	d.sigChan = make(chan os.Signal, 1)
	signal.Notify(d.sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	for {
		select {
		case sig := <-d.sigChan:
			switch sig {
			case syscall.SIGHUP:
				if err := d.Reload(); err != nil {
					d.logger.WithError(err).Error("configuration reload failed")
				}
			default:
				d.logger.WithField("signal", sig.String()).Info("received shutdown signal")
				d.Stop()
				return nil
			}
		case <-d.ctx.Done():
			d.Stop()
			return nil
		}
	}
}

// Reload re-reads the configuration file. Only the log level applies to a
// running daemon, other changes are reported and need a restart.
func (d *Daemon) Reload() error {
	d.logger.WithField("config", d.configPath).Info("reloading configuration")

	next, err := config.Load(d.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if next.Log != nil && (d.cfg.Log == nil || next.Log.Level != d.cfg.Log.Level) {
		if err := log.SetLevel(next.Log.Level); err != nil {
			d.logger.WithError(err).Warn("cannot apply new log level")
		} else {
			d.logger.WithField("level", next.Log.Level).Info("log level updated")
			d.cfg.Log = next.Log
		}
	}

	var restart []string
	if next.ControlIface != d.cfg.ControlIface {
		restart = append(restart, "control_iface")
	}
	if next.ControlPort != d.cfg.ControlPort {
		restart = append(restart, "control_port")
	}
	if next.DefaultRLOCFamily != d.cfg.DefaultRLOCFamily {
		restart = append(restart, "default_rloc_family")
	}
	if next.PollInterval != d.cfg.PollInterval {
		restart = append(restart, "poll_interval")
	}
	if len(restart) > 0 {
		d.logger.Warnf("changes to %s need a restart to apply", strings.Join(restart, ", "))
	}
	return nil
}

// Stop tears the components down in reverse start order. Safe to call more
// than once.
func (d *Daemon) Stop() {
	d.logger.Info("stopping strix agent")

	for _, conn := range d.conns {
		if err := conn.Close(); err != nil {
			d.logger.WithError(err).Warn("closing control socket")
		}
	}
	d.conns = nil

	if d.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.metricsServer.Stop(shutdownCtx); err != nil {
			d.logger.WithError(err).Warn("stopping metrics server")
		}
		cancel()
		d.metricsServer = nil
	}

	d.cancel()

	if d.sigChan != nil {
		signal.Stop(d.sigChan)
		d.sigChan = nil
	}
	if d.peers != nil {
		d.peers.MapResolvers.Clear()
	}
	if err := d.removePIDFile(); err != nil {
		d.logger.WithError(err).Warn("removing pid file")
	}

	d.logger.Info("strix agent stopped")
}

func (d *Daemon) writePIDFile() error {
	if d.pidFile == "" {
		return nil
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(d.pidFile, []byte(pid), 0o644); err != nil {
		return fmt.Errorf("write pid file %s: %w", d.pidFile, err)
	}
	d.logger.WithField("pid", pid).Debugf("wrote pid file %s", d.pidFile)
	return nil
}

func (d *Daemon) removePIDFile() error {
	if d.pidFile == "" {
		return nil
	}
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

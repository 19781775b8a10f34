package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/metrics"
)

// Conn is one control socket, bound to the control port of a single family.
// Reads report the local destination address of each datagram so handlers
// know which RLOC was addressed.
type Conn struct {
	family core.Family
	pc     net.PacketConn
	p4     *ipv4.PacketConn
	p6     *ipv6.PacketConn
	logger log.Logger
}

// Listen opens the control socket for one family. An unspecified bind
// address listens on all addresses of that family.
func Listen(ctx context.Context, family core.Family, bind core.Address, port int, logger log.Logger) (*Conn, error) {
	var network, host string
	switch family {
	case core.FamilyIPv4:
		network, host = "udp4", "0.0.0.0"
	case core.FamilyIPv6:
		network, host = "udp6", "::"
	default:
		return nil, fmt.Errorf("control socket: %w", core.ErrUnknownFamily)
	}
	if bind.IsIP() {
		host = bind.String()
	}

	lc := net.ListenConfig{Control: controlSocket}
	pc, err := lc.ListenPacket(ctx, network, net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("control socket: %w", err)
	}

	c := &Conn{family: family, pc: pc, logger: logger}
	switch family {
	case core.FamilyIPv4:
		c.p4 = ipv4.NewPacketConn(pc)
		if err := c.p4.SetControlMessage(ipv4.FlagDst, true); err != nil {
			logger.WithError(err).Warn("cannot report datagram destinations on ipv4 control socket")
		}
	case core.FamilyIPv6:
		c.p6 = ipv6.NewPacketConn(pc)
		if err := c.p6.SetControlMessage(ipv6.FlagDst, true); err != nil {
			logger.WithError(err).Warn("cannot report datagram destinations on ipv6 control socket")
		}
	}
	metrics.ControlListeners.Inc()
	logger.WithField("addr", pc.LocalAddr().String()).Info("control socket listening")
	return c, nil
}

// ReadMessage waits up to wait for one datagram. A quiet interval returns
// (nil, nil) so the caller can run its timers between reads.
func (c *Conn) ReadMessage(buf []byte, wait time.Duration) (*Inbound, error) {
	if err := c.pc.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return nil, fmt.Errorf("control socket deadline: %w", err)
	}

	var (
		n   int
		src net.Addr
		dst netip.Addr
		err error
	)
	if c.p4 != nil {
		var cm *ipv4.ControlMessage
		n, cm, src, err = c.p4.ReadFrom(buf)
		if cm != nil {
			dst, _ = netip.AddrFromSlice(cm.Dst)
		}
	} else {
		var cm *ipv6.ControlMessage
		n, cm, src, err = c.p6.ReadFrom(buf)
		if cm != nil {
			dst, _ = netip.AddrFromSlice(cm.Dst)
		}
	}
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, nil
		}
		metrics.ReadErrorsTotal.WithLabelValues(c.family.String()).Inc()
		return nil, fmt.Errorf("control socket read: %w", err)
	}

	udpSrc, ok := src.(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("control socket source %T: %w", src, core.ErrUnknownFamily)
	}
	metrics.ControlBytesTotal.WithLabelValues(c.family.String()).Add(float64(n))

	in := &Inbound{Data: buf[:n], Source: udpSrc.AddrPort()}
	if dst.IsValid() {
		in.LocalRLOC = core.AddrFrom(dst)
	}
	return in, nil
}

func (c *Conn) Family() core.Family { return c.family }

func (c *Conn) LocalAddr() net.Addr { return c.pc.LocalAddr() }

func (c *Conn) Close() error {
	metrics.ControlListeners.Dec()
	return c.pc.Close()
}

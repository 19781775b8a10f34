package control

import (
	"context"
	"fmt"
	"net/netip"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/metrics"
)

// Inbound is one control datagram as read off a socket.
type Inbound struct {
	Data []byte
	// LocalRLOC is the local address the datagram arrived on, unspecified
	// when the socket could not report it.
	LocalRLOC core.Address
	Source    netip.AddrPort
}

// Handlers binds message types to their processors. A nil handler drops the
// type after a debug note. Encapsulated control messages are routed to the
// MapRequest handler, which unwraps them itself.
type Handlers struct {
	MapRequest  func(ctx context.Context, data []byte, localRLOC core.Address, sourcePort uint16) error
	MapReply    func(ctx context.Context, data []byte) error
	MapNotify   func(ctx context.Context, data []byte) error
	MapReferral func(ctx context.Context, data []byte) error
	InfoNAT     func(ctx context.Context, data []byte, localRLOC core.Address) error
}

// Dispatcher routes inbound control messages by their type nibble.
type Dispatcher struct {
	handlers Handlers
	logger   log.Logger
}

func NewDispatcher(handlers Handlers, logger log.Logger) *Dispatcher {
	return &Dispatcher{handlers: handlers, logger: logger}
}

// Dispatch processes one inbound message. Unknown types and types without a
// handler are dropped without error, a failing handler surfaces its error to
// the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, in *Inbound) error {
	if len(in.Data) == 0 {
		return fmt.Errorf("control message: %w", core.ErrPacketTooShort)
	}
	d.logger.Trace("received a control message")
	if d.logger.IsTraceEnabled() {
		d.logger.Tracef("control datagram from %s: % x", in.Source, in.Data)
	}

	t := TypeOf(in.Data)
	metrics.ControlMessagesTotal.WithLabelValues(t.String()).Inc()

	var err error
	switch t {
	case TypeMapRequest:
		d.logger.Debug("received a map-request message")
		err = d.callMapRequest(ctx, in)
	case TypeMapReply:
		d.logger.Debug("received a map-reply message")
		err = d.call(ctx, t, d.handlers.MapReply, in.Data)
	case TypeMapRegister:
		// Sent by us, never processed.
	case TypeMapNotify:
		d.logger.Debug("received a map-notify message")
		err = d.call(ctx, t, d.handlers.MapNotify, in.Data)
	case TypeMapReferral:
		d.logger.Debug("received a map-referral message")
		err = d.call(ctx, t, d.handlers.MapReferral, in.Data)
	case TypeInfoNAT:
		d.logger.Debug("received an info-nat message")
		err = d.callInfoNAT(ctx, in)
	case TypeEncap:
		d.logger.Debug("received an encapsulated control message")
		err = d.callMapRequest(ctx, in)
	default:
		d.logger.Debugf("unidentified control message type %d received", t)
	}

	if err != nil {
		metrics.DispatchErrorsTotal.WithLabelValues(t.String()).Inc()
		return fmt.Errorf("%s handler: %w", t, err)
	}
	d.logger.Trace("completed processing of control message")
	return nil
}

func (d *Dispatcher) call(ctx context.Context, t MessageType, h func(context.Context, []byte) error, data []byte) error {
	if h == nil {
		d.logger.Debugf("no handler wired for %s message", t)
		return nil
	}
	return h(ctx, data)
}

func (d *Dispatcher) callMapRequest(ctx context.Context, in *Inbound) error {
	if d.handlers.MapRequest == nil {
		d.logger.Debugf("no handler wired for %s message", TypeMapRequest)
		return nil
	}
	return d.handlers.MapRequest(ctx, in.Data, in.LocalRLOC, in.Source.Port())
}

func (d *Dispatcher) callInfoNAT(ctx context.Context, in *Inbound) error {
	if d.handlers.InfoNAT == nil {
		d.logger.Debugf("no handler wired for %s message", TypeInfoNAT)
		return nil
	}
	return d.handlers.InfoNAT(ctx, in.Data, in.LocalRLOC)
}

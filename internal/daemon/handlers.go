package daemon

import (
	"context"
	"fmt"

	"firestige.xyz/strix/internal/control"
	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/wire"
)

// A map-request starts with 4 bytes of type, flags and counts, then 8 bytes
// of nonce, then the source-EID address.
const mapRequestEIDOffset = 12

// handlers wires the built-in message processors. They unwrap and record
// what arrived; generating replies is the job of the components behind the
// dispatch loop.
func (d *Daemon) handlers() control.Handlers {
	return control.Handlers{
		MapRequest:  d.handleMapRequest,
		MapReply:    d.handleMapReply,
		MapNotify:   d.handleMapNotify,
		MapReferral: d.handleMapReferral,
		InfoNAT:     d.handleInfoNAT,
	}
}

func (d *Daemon) handleMapRequest(ctx context.Context, data []byte, rloc core.Address, srcPort uint16) error {
	if control.TypeOf(data) == control.TypeEncap {
		encap, err := control.SplitEncap(data)
		if err != nil {
			return err
		}
		if len(encap.Payload) == 0 {
			return fmt.Errorf("encapsulated payload: %w", core.ErrPacketTooShort)
		}
		d.logger.WithFields(map[string]interface{}{
			"inner_src":  encap.Src.String(),
			"inner_dst":  encap.Dst.String(),
			"inner_type": control.TypeOf(encap.Payload).String(),
		}).Debug("unwrapped encapsulated control message")
		data = encap.Payload
		srcPort = encap.SrcPort
	}

	eid, err := requestSourceEID(data)
	if err != nil {
		return err
	}
	d.logger.WithFields(map[string]interface{}{
		"source_eid": eid.String(),
		"rloc":       rloc.String(),
		"src_port":   srcPort,
	}).Debug("map-request recorded")
	return nil
}

// requestSourceEID pulls the source-EID address out of a map-request body.
// An unspecified AFI is legal and yields an unspecified address.
func requestSourceEID(data []byte) (core.Address, error) {
	if control.TypeOf(data) != control.TypeMapRequest {
		return core.Address{}, fmt.Errorf("map-request body carries %s", control.TypeOf(data))
	}
	if len(data) < mapRequestEIDOffset+2 {
		return core.Address{}, fmt.Errorf("map-request: %w", core.ErrPacketTooShort)
	}
	eid, _, err := wire.DecodeAddress(data[mapRequestEIDOffset:])
	if err != nil {
		return core.Address{}, fmt.Errorf("map-request source-eid: %w", err)
	}
	return eid, nil
}

func (d *Daemon) handleMapReply(ctx context.Context, data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("map-reply: %w", core.ErrPacketTooShort)
	}
	d.logger.WithField("records", int(data[3])).Debug("map-reply recorded")
	return nil
}

func (d *Daemon) handleMapNotify(ctx context.Context, data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("map-notify: %w", core.ErrPacketTooShort)
	}
	d.logger.WithField("records", int(data[3])).Debug("map-notify recorded")
	return nil
}

func (d *Daemon) handleMapReferral(ctx context.Context, data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("map-referral: %w", core.ErrPacketTooShort)
	}
	d.logger.WithField("records", int(data[3])).Debug("map-referral recorded")
	return nil
}

func (d *Daemon) handleInfoNAT(ctx context.Context, data []byte, rloc core.Address) error {
	if len(data) < 4 {
		return fmt.Errorf("info-nat: %w", core.ErrPacketTooShort)
	}
	d.logger.WithFields(map[string]interface{}{
		"rloc":  rloc.String(),
		"bytes": len(data),
	}).Debug("info-nat recorded")
	return nil
}

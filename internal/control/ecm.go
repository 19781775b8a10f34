package control

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/strix/internal/core"
)

// An encapsulated control message prepends a fixed header to a full inner
// IP/UDP packet whose payload is the real control message.
const (
	ecmHeaderLen = 4
	udpHeaderLen = 8
)

var ErrNotEncap = errors.New("strix: not an encapsulated control message")

// Encap is the result of unwrapping an encapsulated control message: the
// inner control message plus the addressing of the inner headers.
type Encap struct {
	Payload []byte
	Src     core.Address
	Dst     core.Address
	SrcPort uint16
	DstPort uint16
}

// SplitEncap strips the encapsulation header and the inner IP and UDP
// headers off b. The returned payload aliases b.
func SplitEncap(b []byte) (*Encap, error) {
	if len(b) < ecmHeaderLen+1 {
		return nil, fmt.Errorf("encapsulated control message: %w", core.ErrPacketTooShort)
	}
	if TypeOf(b) != TypeEncap {
		return nil, ErrNotEncap
	}
	inner := b[ecmHeaderLen:]

	var (
		udp          layers.UDP
		srcIP, dstIP []byte
	)
	switch version := inner[0] >> 4; version {
	case 4:
		if len(inner) < core.FamilyIPv4.IPHeaderLen()+udpHeaderLen {
			return nil, fmt.Errorf("inner ipv4 packet: %w", core.ErrPacketTooShort)
		}
		var ip4 layers.IPv4
		if err := ip4.DecodeFromBytes(inner, gopacket.NilDecodeFeedback); err != nil {
			return nil, fmt.Errorf("inner ipv4 header: %w", err)
		}
		if ip4.Protocol != layers.IPProtocolUDP {
			return nil, fmt.Errorf("inner protocol %s, want udp", ip4.Protocol)
		}
		if err := udp.DecodeFromBytes(ip4.Payload, gopacket.NilDecodeFeedback); err != nil {
			return nil, fmt.Errorf("inner udp header: %w", err)
		}
		srcIP, dstIP = ip4.SrcIP, ip4.DstIP
	case 6:
		if len(inner) < core.FamilyIPv6.IPHeaderLen()+udpHeaderLen {
			return nil, fmt.Errorf("inner ipv6 packet: %w", core.ErrPacketTooShort)
		}
		var ip6 layers.IPv6
		if err := ip6.DecodeFromBytes(inner, gopacket.NilDecodeFeedback); err != nil {
			return nil, fmt.Errorf("inner ipv6 header: %w", err)
		}
		if ip6.NextHeader != layers.IPProtocolUDP {
			return nil, fmt.Errorf("inner protocol %s, want udp", ip6.NextHeader)
		}
		if err := udp.DecodeFromBytes(ip6.Payload, gopacket.NilDecodeFeedback); err != nil {
			return nil, fmt.Errorf("inner udp header: %w", err)
		}
		srcIP, dstIP = ip6.SrcIP, ip6.DstIP
	default:
		return nil, fmt.Errorf("inner ip version %d: %w", version, core.ErrUnknownFamily)
	}

	src, ok := netip.AddrFromSlice(srcIP)
	if !ok {
		return nil, fmt.Errorf("inner source: %w", core.ErrInvalidAddress)
	}
	dst, ok := netip.AddrFromSlice(dstIP)
	if !ok {
		return nil, fmt.Errorf("inner destination: %w", core.ErrInvalidAddress)
	}
	return &Encap{
		Payload: udp.Payload,
		Src:     core.AddrFrom(src),
		Dst:     core.AddrFrom(dst),
		SrcPort: uint16(udp.SrcPort),
		DstPort: uint16(udp.DstPort),
	}, nil
}

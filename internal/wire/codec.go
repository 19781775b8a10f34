// Package wire implements the AFI-tagged address encoding that prefixes
// every address inside a control message: a 2-byte family tag in network
// byte order followed by a fixed-size payload.
package wire

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"firestige.xyz/strix/internal/core"
)

// afiLen is the size of the family tag in front of the payload.
const afiLen = 2

// EncodedLen returns the wire size of an address of family f: the family
// tag plus the payload. LCAF payloads are variable and not covered.
func EncodedLen(f core.Family) int {
	return afiLen + f.ByteLen()
}

// DecodeAddress reads one AFI-tagged address from the front of b. It
// returns the address and the number of bytes consumed. An LCAF tag is
// reported as ErrLCAFAddress so the caller can hand the buffer to the LCAF
// decoder; an unknown tag is ErrUnknownFamily.
func DecodeAddress(b []byte) (core.Address, int, error) {
	if len(b) < afiLen {
		return core.Address{}, 0, fmt.Errorf("%w: need %d bytes for afi tag", core.ErrPacketTooShort, afiLen)
	}
	afi := core.Family(binary.BigEndian.Uint16(b[0:2]))

	switch afi {
	case core.FamilyUnspecified:
		return core.Address{}, afiLen, nil

	case core.FamilyIPv4:
		if len(b) < afiLen+4 {
			return core.Address{}, 0, fmt.Errorf("%w: ipv4 payload", core.ErrPacketTooShort)
		}
		var p [4]byte
		copy(p[:], b[afiLen:afiLen+4])
		return core.AddrFrom(netip.AddrFrom4(p)), afiLen + 4, nil

	case core.FamilyIPv6:
		if len(b) < afiLen+16 {
			return core.Address{}, 0, fmt.Errorf("%w: ipv6 payload", core.ErrPacketTooShort)
		}
		var p [16]byte
		copy(p[:], b[afiLen:afiLen+16])
		return core.AddrFrom(netip.AddrFrom16(p)), afiLen + 16, nil

	case core.FamilyLCAF:
		return core.Address{}, 0, core.ErrLCAFAddress
	}
	return core.Address{}, 0, fmt.Errorf("%w: afi %d", core.ErrUnknownFamily, uint16(afi))
}

// EncodeAddress writes a to the front of b and returns the number of bytes
// written. convert flips the IPv4 payload word for peers that read it as a
// host-order integer; IPv6 payloads are byte arrays and copied verbatim.
func EncodeAddress(b []byte, a core.Address, convert bool) (int, error) {
	need := EncodedLen(a.Family())
	if len(b) < need {
		return 0, fmt.Errorf("%w: need %d bytes for %s address", core.ErrPacketTooShort, need, a.Family())
	}

	switch a.Family() {
	case core.FamilyUnspecified:
		binary.BigEndian.PutUint16(b[0:2], uint16(core.FamilyUnspecified))
		return afiLen, nil

	case core.FamilyIPv4:
		binary.BigEndian.PutUint16(b[0:2], uint16(core.FamilyIPv4))
		p := a.IP().As4()
		if convert {
			p[0], p[1], p[2], p[3] = p[3], p[2], p[1], p[0]
		}
		copy(b[afiLen:], p[:])
		return afiLen + 4, nil

	case core.FamilyIPv6:
		binary.BigEndian.PutUint16(b[0:2], uint16(core.FamilyIPv6))
		p := a.IP().As16()
		copy(b[afiLen:], p[:])
		return afiLen + 16, nil

	case core.FamilyLCAF:
		return 0, core.ErrLCAFAddress
	}
	return 0, fmt.Errorf("%w: afi %d", core.ErrUnknownFamily, uint16(a.Family()))
}

// AppendAddress appends the encoding of a to dst, growing it as needed.
func AppendAddress(dst []byte, a core.Address, convert bool) ([]byte, error) {
	off := len(dst)
	dst = append(dst, make([]byte, EncodedLen(a.Family()))...)
	n, err := EncodeAddress(dst[off:], a, convert)
	if err != nil {
		return dst[:off], err
	}
	return dst[:off+n], nil
}

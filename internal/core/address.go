package core

import (
	"bytes"
	"fmt"
	"net"
	"net/netip"
)

// Address is a tagged address value: unspecified, IPv4, IPv6 or an opaque
// LCAF payload whose decoding is left to the message codecs. The zero value
// is the unspecified address. Addresses are immutable and copied by value.
type Address struct {
	family Family
	ip     netip.Addr
	lcaf   []byte
}

// AddrFrom builds an Address from a netip address. Mapped IPv4-in-IPv6
// addresses are unmapped first so they compare equal to their plain IPv4
// form. An invalid netip address yields the unspecified Address.
func AddrFrom(ip netip.Addr) Address {
	ip = ip.Unmap()
	f := FamilyOf(ip)
	if f == FamilyUnspecified {
		return Address{}
	}
	return Address{family: f, ip: ip}
}

// LCAFAddr wraps a raw LCAF payload without decoding it.
func LCAFAddr(raw []byte) Address {
	return Address{family: FamilyLCAF, lcaf: bytes.Clone(raw)}
}

// ParseAddr parses a numeric address literal. Zoned IPv6 literals are
// rejected since control messages cannot carry a zone.
func ParseAddr(s string) (Address, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil || ip.Zone() != "" {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return AddrFrom(ip), nil
}

// FromNetAddr extracts the address of a socket-layer endpoint.
func FromNetAddr(addr net.Addr) (Address, error) {
	var ip net.IP
	switch a := addr.(type) {
	case *net.UDPAddr:
		ip = a.IP
	case *net.TCPAddr:
		ip = a.IP
	case *net.IPAddr:
		ip = a.IP
	default:
		return Address{}, fmt.Errorf("%w: %T", ErrUnknownFamily, addr)
	}
	nip, ok := netip.AddrFromSlice(ip)
	if !ok {
		return Address{}, fmt.Errorf("%w: %v", ErrUnknownFamily, addr)
	}
	return AddrFrom(nip), nil
}

// Family returns the address family tag.
func (a Address) Family() Family { return a.family }

// IP returns the underlying netip address. It is the zero netip.Addr unless
// the family is IPv4 or IPv6.
func (a Address) IP() netip.Addr { return a.ip }

// LCAF returns a copy of the raw LCAF payload, nil for other families.
func (a Address) LCAF() []byte { return bytes.Clone(a.lcaf) }

// IsUnspecified reports whether the address is absent (family tag 0).
func (a Address) IsUnspecified() bool { return a.family == FamilyUnspecified }

// IsIP reports whether the address is a concrete IPv4 or IPv6 address.
func (a Address) IsIP() bool {
	return a.family == FamilyIPv4 || a.family == FamilyIPv6
}

// IsLinkLocal reports whether the address is link-local: 169.254.0.0/16 for
// IPv4, fe80::/10 for IPv6.
func (a Address) IsLinkLocal() bool {
	return a.IsIP() && a.ip.IsLinkLocalUnicast()
}

// AddrPort pairs the address with a UDP port, for addressing control peers.
func (a Address) AddrPort(port uint16) (netip.AddrPort, error) {
	if !a.IsIP() {
		return netip.AddrPort{}, fmt.Errorf("%w: %s", ErrUnknownFamily, a.family)
	}
	return netip.AddrPortFrom(a.ip, port), nil
}

// Ordering is the outcome of comparing two addresses.
type Ordering int

const (
	Equal Ordering = iota
	Greater
	Less
	DifferentFamily
)

func (o Ordering) String() string {
	switch o {
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	case Less:
		return "less"
	case DifferentFamily:
		return "different-family"
	}
	return fmt.Sprintf("ordering-%d", int(o))
}

// Compare orders two addresses by raw payload bytes, not numeric value.
// Addresses of different families never order against each other, and
// unspecified or LCAF addresses compare DifferentFamily even to themselves.
func (a Address) Compare(b Address) Ordering {
	if a.family != b.family {
		return DifferentFamily
	}
	var cmp int
	switch a.family {
	case FamilyIPv4:
		x, y := a.ip.As4(), b.ip.As4()
		cmp = bytes.Compare(x[:], y[:])
	case FamilyIPv6:
		x, y := a.ip.As16(), b.ip.As16()
		cmp = bytes.Compare(x[:], y[:])
	default:
		return DifferentFamily
	}
	switch {
	case cmp == 0:
		return Equal
	case cmp > 0:
		return Greater
	}
	return Less
}

// Equal reports whether Compare yields Equal. Note that an unspecified
// address is not Equal to another unspecified address.
func (a Address) Equal(b Address) bool {
	return a.Compare(b) == Equal
}

// String renders the canonical textual form. The unspecified address has no
// numeric form and renders as "unspecified".
func (a Address) String() string {
	switch a.family {
	case FamilyIPv4, FamilyIPv6:
		return a.ip.String()
	case FamilyUnspecified:
		return "unspecified"
	case FamilyLCAF:
		return "lcaf"
	}
	return fmt.Sprintf("afi-%d", uint16(a.family))
}

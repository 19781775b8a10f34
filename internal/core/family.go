package core

import (
	"fmt"
	"net/netip"
	"strings"
)

// Family is an address family identifier (AFI) as carried on the wire in
// front of every address: a 16-bit tag in network byte order.
type Family uint16

const (
	FamilyUnspecified Family = 0
	FamilyIPv4        Family = 1
	FamilyIPv6        Family = 2
	FamilyLCAF        Family = 16387
)

// ByteLen returns the wire payload size of an address of this family.
// LCAF payloads are variable length; here it reports 0.
func (f Family) ByteLen() int {
	switch f {
	case FamilyIPv4:
		return 4
	case FamilyIPv6:
		return 16
	}
	return 0
}

// Bits returns the prefix width of the family: 32 for IPv4, 128 for IPv6,
// 0 for anything else.
func (f Family) Bits() int {
	return f.ByteLen() * 8
}

// IPHeaderLen returns the fixed IP header length of the family, used when
// sizing encapsulated packets. Zero for non-IP families.
func (f Family) IPHeaderLen() int {
	switch f {
	case FamilyIPv4:
		return 20
	case FamilyIPv6:
		return 40
	}
	return 0
}

func (f Family) String() string {
	switch f {
	case FamilyUnspecified:
		return "unspecified"
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	case FamilyLCAF:
		return "lcaf"
	}
	return fmt.Sprintf("afi-%d", uint16(f))
}

// FamilyOf reports the family of a netip address. Mapped IPv4-in-IPv6
// addresses count as IPv6; unmap first if that is not wanted.
func FamilyOf(ip netip.Addr) Family {
	switch {
	case !ip.IsValid():
		return FamilyUnspecified
	case ip.Is4():
		return FamilyIPv4
	}
	return FamilyIPv6
}

// ParseFamily maps a configuration value to a Family. The empty string and
// "any" mean no preference and map to FamilyUnspecified.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return FamilyUnspecified, nil
	case "ipv4", "4":
		return FamilyIPv4, nil
	case "ipv6", "6":
		return FamilyIPv6, nil
	}
	return FamilyUnspecified, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

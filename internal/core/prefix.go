package core

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Prefix pairs an address with a mask length. Bits must not exceed the
// family's width; the constructors validate, arithmetic assumes it holds.
type Prefix struct {
	Addr Address
	Bits int
}

// ParsePrefix parses "address/length" notation. The length must be between
// 1 and the family width, matching what the configuration accepts; the
// all-length-zero prefix is representable but not parseable.
func ParsePrefix(s string) (Prefix, error) {
	addrText, bitsText, ok := strings.Cut(s, "/")
	if !ok {
		return Prefix{}, fmt.Errorf("%w: %q not of the form prefix/length", ErrInvalidPrefix, s)
	}
	addr, err := ParseAddr(addrText)
	if err != nil {
		return Prefix{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, s)
	}
	bits, err := strconv.Atoi(bitsText)
	if err != nil {
		return Prefix{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, s)
	}
	if bits < 1 || bits > addr.Family().Bits() {
		return Prefix{}, fmt.Errorf("%w: /%d for %s", ErrPrefixLength, bits, addr.Family())
	}
	return Prefix{Addr: addr, Bits: bits}, nil
}

func (p Prefix) String() string {
	return fmt.Sprintf("%s/%d", p.Addr, p.Bits)
}

// NetworkAddress zeroes every bit of a beyond bits, yielding the network
// address of the enclosing prefix. bits 0 yields the all-zero address of
// the family.
func NetworkAddress(a Address, bits int) (Address, error) {
	if !a.IsIP() {
		return Address{}, fmt.Errorf("%w: %s", ErrUnknownFamily, a.Family())
	}
	if bits < 0 || bits > a.Family().Bits() {
		return Address{}, fmt.Errorf("%w: /%d for %s", ErrPrefixLength, bits, a.Family())
	}
	masked := netip.PrefixFrom(a.IP(), bits).Masked()
	return AddrFrom(masked.Addr()), nil
}

// Contains reports whether p encloses inner: same family, p no narrower
// than inner, and identical network addresses at p's length. A prefix
// contains itself. Callers must pass the broader prefix as the receiver; a
// swapped call yields false, never an error.
func (p Prefix) Contains(inner Prefix) bool {
	if p.Addr.Family() != inner.Addr.Family() {
		return false
	}
	if p.Bits > inner.Bits {
		return false
	}
	outerNet, err := NetworkAddress(p.Addr, p.Bits)
	if err != nil {
		return false
	}
	innerNet, err := NetworkAddress(inner.Addr, p.Bits)
	if err != nil {
		return false
	}
	return outerNet.Equal(innerNet)
}

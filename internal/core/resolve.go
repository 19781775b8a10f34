package core

import (
	"context"
	"fmt"
	"net"
	"net/netip"
)

// LookupFunc resolves a host name to IP addresses. The network argument is
// "ip", "ip4" or "ip6" as understood by net.Resolver.
type LookupFunc func(ctx context.Context, network, host string) ([]netip.Addr, error)

// Resolver turns configured host strings into addresses. Strings that
// qualify as FQDNs go through name resolution, everything else through the
// literal parser. The zero value uses the system resolver.
type Resolver struct {
	// Lookup overrides the name lookup, primarily for tests.
	Lookup LookupFunc
}

// Resolve maps host to one Address per usable lookup result. preferred
// narrows resolution to one family; FamilyUnspecified accepts both. The
// second return value counts lookup results that were dropped because they
// cannot serve as control-plane addresses (zoned or otherwise unusable);
// callers are expected to log it.
func (r *Resolver) Resolve(ctx context.Context, host string, preferred Family) ([]Address, int, error) {
	if !IsFQDN(host) {
		a, err := ParseAddr(host)
		if err != nil {
			return nil, 0, err
		}
		if preferred != FamilyUnspecified && a.Family() != preferred {
			return nil, 0, fmt.Errorf("%w: %s is not %s", ErrNoUsableAddress, host, preferred)
		}
		return []Address{a}, 0, nil
	}

	network := "ip"
	switch preferred {
	case FamilyIPv4:
		network = "ip4"
	case FamilyIPv6:
		network = "ip6"
	}

	lookup := r.Lookup
	if lookup == nil {
		lookup = net.DefaultResolver.LookupNetIP
	}
	ips, err := lookup(ctx, network, host)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrResolveFailed, host, err)
	}

	var (
		addrs   []Address
		skipped int
	)
	for _, ip := range ips {
		if ip.Zone() != "" {
			skipped++
			continue
		}
		a := AddrFrom(ip)
		if !a.IsIP() {
			skipped++
			continue
		}
		addrs = append(addrs, a)
	}
	if len(addrs) == 0 {
		return nil, skipped, fmt.Errorf("%w: %s", ErrNoUsableAddress, host)
	}
	return addrs, skipped, nil
}

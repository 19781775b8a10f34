//go:build linux

package iface

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"firestige.xyz/strix/internal/core"
)

// netlinkEnumerator reads interfaces and addresses from rtnetlink, which
// reports the address scope directly.
type netlinkEnumerator struct{}

// System returns the platform enumerator.
func System() Enumerator { return netlinkEnumerator{} }

func (netlinkEnumerator) Addresses() ([]IfAddr, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("netlink links: %w", err)
	}
	var out []IfAddr
	for _, link := range links {
		attrs := link.Attrs()
		addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
		if err != nil {
			return nil, fmt.Errorf("netlink addresses of %s: %w", attrs.Name, err)
		}
		for _, a := range addrs {
			ip, ok := netip.AddrFromSlice(a.IP)
			if !ok {
				continue
			}
			out = append(out, IfAddr{
				Iface:  attrs.Name,
				Addr:   core.AddrFrom(ip),
				Up:     attrs.Flags&net.FlagUp != 0,
				Scoped: a.Scope == unix.RT_SCOPE_LINK,
			})
		}
	}
	return out, nil
}

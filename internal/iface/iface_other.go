//go:build !linux

package iface

import (
	"fmt"
	"net"
	"net/netip"

	"firestige.xyz/strix/internal/core"
)

type stdEnumerator struct{}

// System returns the platform enumerator.
func System() Enumerator { return stdEnumerator{} }

func (stdEnumerator) Addresses() ([]IfAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("interfaces: %w", err)
	}
	var out []IfAddr
	for _, ifc := range ifaces {
		addrs, err := ifc.Addrs()
		if err != nil {
			return nil, fmt.Errorf("addresses of %s: %w", ifc.Name, err)
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip, ok := netip.AddrFromSlice(ipNet.IP)
			if !ok {
				continue
			}
			addr := core.AddrFrom(ip)
			out = append(out, IfAddr{
				Iface: ifc.Name,
				Addr:  addr,
				Up:    ifc.Flags&net.FlagUp != 0,
				// The net package drops the zone, treat link-local v6
				// as scoped.
				Scoped: addr.Family() == core.FamilyIPv6 && addr.IsLinkLocal(),
			})
		}
	}
	return out, nil
}

// Package iface discovers RLOC addresses on network interfaces.
package iface

import (
	"fmt"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
)

// IfAddr is one address assigned to an interface. Scoped marks addresses
// that only have meaning next to a zone, such as fe80:: ones.
type IfAddr struct {
	Iface  string
	Addr   core.Address
	Up     bool
	Scoped bool
}

// Enumerator lists the addresses of all interfaces. The platform
// implementation is returned by System, tests supply their own.
type Enumerator interface {
	Addresses() ([]IfAddr, error)
}

// AddressByName returns the first usable address of the given family on the
// named interface. Down interfaces, link-local and scoped addresses are
// skipped.
func AddressByName(e Enumerator, name string, family core.Family, logger log.Logger) (core.Address, error) {
	addrs, err := e.Addresses()
	if err != nil {
		return core.Address{}, fmt.Errorf("interface addresses: %w", err)
	}
	for _, ia := range addrs {
		if ia.Iface != name || !ia.Up || ia.Addr.Family() != family {
			continue
		}
		if ia.Addr.IsLinkLocal() {
			logger.Debugf("discarded link-local address %s on interface %s", ia.Addr, name)
			continue
		}
		if ia.Scoped {
			logger.Debugf("discarded scoped address %s on interface %s", ia.Addr, name)
			continue
		}
		return ia.Addr, nil
	}
	logger.Debugf("no %s rloc configured for interface %s", family, name)
	return core.Address{}, fmt.Errorf("interface %s: %w", name, core.ErrNoInterfaceAddress)
}

// RLOCByName is AddressByName honoring a forced default family. When forced
// names another family the lookup is skipped entirely. FamilyUnspecified
// means no forcing.
func RLOCByName(e Enumerator, name string, family, forced core.Family, logger log.Logger) (core.Address, error) {
	if forced != core.FamilyUnspecified && forced != family {
		logger.Infof("default rloc family %s set, skipped %s address on interface %s", forced, family, name)
		return core.Address{}, fmt.Errorf("interface %s: %w", name, core.ErrNoInterfaceAddress)
	}
	return AddressByName(e, name, family, logger)
}

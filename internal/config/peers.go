package config

import (
	"context"
	"fmt"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/metrics"
)

// MapServerAddr is a resolved map-server entry.
type MapServerAddr struct {
	Addr       core.Address
	KeyType    KeyType
	Key        []byte
	ProxyReply bool
}

// ProxyETRAddr is a resolved proxy-ETR locator.
type ProxyETRAddr struct {
	Addr     core.Address
	Priority int
	Weight   int
}

// StaticMapAddr is a parsed static map-cache entry.
type StaticMapAddr struct {
	EID      core.Prefix
	RLOC     core.Address
	Priority int
	Weight   int
}

// Peers is the configured control-plane neighborhood in resolved form.
type Peers struct {
	MapResolvers *core.AddressList
	MapServers   []MapServerAddr
	ProxyETRs    []ProxyETRAddr
	StaticMap    []StaticMapAddr
}

// ResolvePeers resolves every configured peer name. Hostnames with some
// unusable results keep their usable ones, a peer with none fails loading.
func (cfg *Config) ResolvePeers(ctx context.Context, resolver *core.Resolver, logger log.Logger) (*Peers, error) {
	preferred, err := core.ParseFamily(cfg.DefaultRLOCFamily)
	if err != nil {
		return nil, fmt.Errorf("default_rloc_family: %w", err)
	}

	peers := &Peers{MapResolvers: &core.AddressList{}}

	for _, host := range cfg.MapResolvers {
		addrs, skipped, err := resolver.Resolve(ctx, host, preferred)
		if err != nil {
			return nil, fmt.Errorf("map-resolver %s: %w", host, err)
		}
		noteSkips(logger, host, skipped)
		for _, a := range addrs {
			if err := peers.MapResolvers.Prepend(a); err != nil {
				return nil, fmt.Errorf("map-resolver %s: %w", host, err)
			}
		}
	}

	for _, ms := range cfg.MapServers {
		addrs, skipped, err := resolver.Resolve(ctx, ms.Address, preferred)
		if err != nil {
			return nil, fmt.Errorf("map-server %s: %w", ms.Address, err)
		}
		noteSkips(logger, ms.Address, skipped)
		kt, err := ParseKeyType(ms.KeyType)
		if err != nil {
			return nil, fmt.Errorf("map-server %s: %w", ms.Address, err)
		}
		var key []byte
		if kt != KeyNone {
			if key, err = DecodeKey(kt, ms.Key); err != nil {
				return nil, fmt.Errorf("map-server %s: %w", ms.Address, err)
			}
		}
		for _, a := range addrs {
			peers.MapServers = append(peers.MapServers, MapServerAddr{
				Addr:       a,
				KeyType:    kt,
				Key:        key,
				ProxyReply: ms.ProxyReply,
			})
		}
	}

	for _, pe := range cfg.ProxyETRs {
		addrs, skipped, err := resolver.Resolve(ctx, pe.Address, preferred)
		if err != nil {
			return nil, fmt.Errorf("proxy-etr %s: %w", pe.Address, err)
		}
		noteSkips(logger, pe.Address, skipped)
		for _, a := range addrs {
			peers.ProxyETRs = append(peers.ProxyETRs, ProxyETRAddr{
				Addr:     a,
				Priority: pe.Priority,
				Weight:   pe.Weight,
			})
		}
	}

	for _, sm := range cfg.StaticMapCache {
		eid, err := core.ParsePrefix(sm.EIDPrefix)
		if err != nil {
			return nil, fmt.Errorf("static map-cache %s: %w", sm.EIDPrefix, err)
		}
		rloc, err := core.ParseAddr(sm.RLOC)
		if err != nil {
			return nil, fmt.Errorf("static map-cache %s: %w", sm.EIDPrefix, err)
		}
		peers.StaticMap = append(peers.StaticMap, StaticMapAddr{
			EID:      eid,
			RLOC:     rloc,
			Priority: sm.Priority,
			Weight:   sm.Weight,
		})
	}
	return peers, nil
}

func noteSkips(logger log.Logger, host string, skipped int) {
	if skipped == 0 {
		return
	}
	metrics.ResolverSkipsTotal.Add(float64(skipped))
	logger.Warnf("skipped %d unusable addresses of %s", skipped, host)
}

// DumpServers logs one address list as a table under the given heading.
func DumpServers(list *core.AddressList, name string, logger log.Logger) {
	if !logger.IsDebugEnabled() {
		return
	}
	logger.Debugf("************* %13s ***************", name)
	logger.Debug("|               Locator (RLOC)            |")
	for _, a := range list.Addrs() {
		logger.Debugf("| %39s |", a)
	}
}

// Dump logs the resolved server lists the way the daemon has always printed
// them on startup.
func (p *Peers) Dump(logger log.Logger) {
	if !logger.IsDebugEnabled() {
		return
	}
	DumpServers(p.MapResolvers, "Map-Resolvers", logger)

	if len(p.MapServers) > 0 {
		logger.Debug("******************* Map-Servers list ********************************")
		logger.Debug("|               Locator (RLOC)            |       Key Type          |")
		for _, ms := range p.MapServers {
			logger.Debugf("| %39s |%s", ms.Addr, keyTypeCell(ms.KeyType))
		}
	}

	if len(p.ProxyETRs) > 0 {
		logger.Debug("************************* Proxy ETRs List ****************************")
		logger.Debug("|               Locator (RLOC)            | Status | Priority/Weight |")
		for _, pe := range p.ProxyETRs {
			logger.Debugf("| %39s | %6s | %15s |", pe.Addr, "Up", fmt.Sprintf("%d/%d", pe.Priority, pe.Weight))
		}
	}
}

func keyTypeCell(k KeyType) string {
	switch k {
	case KeyNone:
		return "          NONE           |"
	case KeyHMACSHA1:
		return "     HMAC-SHA-1-96       |"
	}
	return "    HMAC-SHA-256-128     |"
}

package config

import (
	"fmt"

	"firestige.xyz/strix/internal/core"
)

// Validate checks everything that must hold before the daemon starts:
// addresses and prefixes parse, keys match their key type, locator
// priorities and weights stay inside their protocol ranges.
func (cfg *Config) Validate() error {
	if cfg.ControlPort <= 0 || cfg.ControlPort > 65535 {
		return fmt.Errorf("%w: control_port %d out of range", core.ErrConfigInvalid, cfg.ControlPort)
	}
	if _, err := core.ParseFamily(cfg.DefaultRLOCFamily); err != nil {
		return fmt.Errorf("%w: default_rloc_family: %v", core.ErrConfigInvalid, err)
	}
	for i, host := range cfg.MapResolvers {
		if host == "" {
			return fmt.Errorf("%w: map_resolvers[%d]: empty address", core.ErrConfigInvalid, i)
		}
	}
	for i, ms := range cfg.MapServers {
		if ms.Address == "" {
			return fmt.Errorf("%w: map_servers[%d]: empty address", core.ErrConfigInvalid, i)
		}
		kt, err := ParseKeyType(ms.KeyType)
		if err != nil {
			return fmt.Errorf("%w: map_servers[%d]: %v", core.ErrConfigInvalid, i, err)
		}
		if kt != KeyNone {
			if _, err := DecodeKey(kt, ms.Key); err != nil {
				return fmt.Errorf("%w: map_servers[%d]: %v", core.ErrConfigInvalid, i, err)
			}
		}
	}
	for i, pe := range cfg.ProxyETRs {
		if pe.Address == "" {
			return fmt.Errorf("%w: proxy_etrs[%d]: empty address", core.ErrConfigInvalid, i)
		}
		if err := checkLocator(pe.Priority, pe.Weight); err != nil {
			return fmt.Errorf("%w: proxy_etrs[%d]: %v", core.ErrConfigInvalid, i, err)
		}
	}
	for i, sm := range cfg.StaticMapCache {
		if _, err := core.ParsePrefix(sm.EIDPrefix); err != nil {
			return fmt.Errorf("%w: static_map_cache[%d]: %v", core.ErrConfigInvalid, i, err)
		}
		if _, err := core.ParseAddr(sm.RLOC); err != nil {
			return fmt.Errorf("%w: static_map_cache[%d]: %v", core.ErrConfigInvalid, i, err)
		}
		if err := checkLocator(sm.Priority, sm.Weight); err != nil {
			return fmt.Errorf("%w: static_map_cache[%d]: %v", core.ErrConfigInvalid, i, err)
		}
	}
	return nil
}

// Locator priority is 0..255 with 255 meaning unusable, weight 0..100.
func checkLocator(priority, weight int) error {
	if priority < 0 || priority > 255 {
		return fmt.Errorf("priority %d out of range 0..255", priority)
	}
	if weight < 0 || weight > 100 {
		return fmt.Errorf("weight %d out of range 0..100", weight)
	}
	return nil
}

// Package config loads and validates the daemon configuration.
package config

import (
	"time"

	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/metrics"
)

// Config is the top-level daemon configuration.
type Config struct {
	// ControlIface is the interface whose addresses serve as local RLOCs.
	ControlIface string `mapstructure:"control_iface" yaml:"control_iface"`
	ControlPort  int    `mapstructure:"control_port" yaml:"control_port"`
	// DefaultRLOCFamily forces a single RLOC family. Empty or "any" uses
	// whatever the control interface offers.
	DefaultRLOCFamily string `mapstructure:"default_rloc_family" yaml:"default_rloc_family,omitempty"`
	// PollInterval bounds each socket read so periodic work can run
	// between datagrams.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	MapResolvers   []string         `mapstructure:"map_resolvers" yaml:"map_resolvers,omitempty"`
	MapServers     []MapServer      `mapstructure:"map_servers" yaml:"map_servers,omitempty"`
	ProxyETRs      []ProxyETR       `mapstructure:"proxy_etrs" yaml:"proxy_etrs,omitempty"`
	StaticMapCache []StaticMapEntry `mapstructure:"static_map_cache" yaml:"static_map_cache,omitempty"`

	Log     *log.Config     `mapstructure:"log" yaml:"log,omitempty"`
	Metrics *metrics.Config `mapstructure:"metrics" yaml:"metrics,omitempty"`
}

// MapServer is one map-server the daemon registers with. Key is hex-encoded
// authentication material matching the key type's digest length.
type MapServer struct {
	Address    string `mapstructure:"address" yaml:"address"`
	KeyType    int    `mapstructure:"key_type" yaml:"key_type"`
	Key        string `mapstructure:"key" yaml:"key,omitempty"`
	ProxyReply bool   `mapstructure:"proxy_reply" yaml:"proxy_reply,omitempty"`
}

// ProxyETR is one proxy-ETR covering non-LISP destinations.
type ProxyETR struct {
	Address  string `mapstructure:"address" yaml:"address"`
	Priority int    `mapstructure:"priority" yaml:"priority"`
	Weight   int    `mapstructure:"weight" yaml:"weight"`
}

// StaticMapEntry pins an EID prefix to an RLOC ahead of any map-reply.
type StaticMapEntry struct {
	EIDPrefix string `mapstructure:"eid_prefix" yaml:"eid_prefix"`
	RLOC      string `mapstructure:"rloc" yaml:"rloc"`
	Priority  int    `mapstructure:"priority" yaml:"priority"`
	Weight    int    `mapstructure:"weight" yaml:"weight"`
}

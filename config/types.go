package config

import "github.com/kostaleonard/leocoin/store"

// NodeConfig represents a node's configuration
type NodeConfig struct {
	// ListenAddr is where the consensus server accepts chain exchanges.
	ListenAddr string `yaml:"listen_addr"`
	// AdvertiseAddr is the address registered with the bootstrap server.
	AdvertiseAddr string `yaml:"advertise_addr"`
	BootstrapAddr string `yaml:"bootstrap_addr"`
	APIAddr       string `yaml:"api_addr"`
	// Peers are contacted in addition to those learned from bootstrap.
	Peers       []string `yaml:"peers"`
	PubKey      string   `yaml:"pubkey"`
	PrivKeyPath string   `yaml:"privkey_path"`
	ChainFile   string   `yaml:"chain_file"`
	Mine        bool     `yaml:"mine"`
}

// ConfigFile is the top-level structure for node.yml
type ConfigFile struct {
	Node  NodeConfig        `yaml:"node"`
	Store store.StoreConfig `yaml:"store"`
}

// ConsensusConfig is the [consensus] section of config.ini.
type ConsensusConfig struct {
	ExchangeIntervalSeconds int    `ini:"exchange_interval_seconds"`
	DialTimeoutMs           int    `ini:"dial_timeout_ms"`
	IOTimeoutMs             int    `ini:"io_timeout_ms"`
	PollTimeoutMs           int    `ini:"poll_timeout_ms"`
	MaxMessageBytes         uint64 `ini:"max_message_bytes"`
	RunOnce                 bool   `ini:"run_once"`
	// RateLimitPerMinute caps inbound connections per host; 0 disables it.
	RateLimitPerMinute int `ini:"rate_limit_per_minute"`
}

// MiningConfig is the [mining] section of config.ini.
type MiningConfig struct {
	Difficulty uint64 `ini:"difficulty"`
	Reward     uint64 `ini:"reward"`
}

// DiscoveryConfig is the [discovery] section of config.ini.
type DiscoveryConfig struct {
	IntervalSeconds  int `ini:"interval_seconds"`
	KeepaliveSeconds int `ini:"keepalive_seconds"`
}

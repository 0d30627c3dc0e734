package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/ratelimit"
	"github.com/kostaleonard/leocoin/store"
	"github.com/kostaleonard/leocoin/transaction"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// LoadNodeConfig reads node.yml and fills unset fields with defaults.
func LoadNodeConfig(path string) (*ConfigFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfgFile.applyDefaults()
	if err := cfgFile.Store.Validate(); err != nil {
		return nil, fmt.Errorf("store config: %w", err)
	}
	logx.Info("CONFIG", "loaded node config from ", path, ": listen=", cfgFile.Node.ListenAddr, " peers=", len(cfgFile.Node.Peers))
	return &cfgFile, nil
}

// DefaultConfigFile is used when no node.yml is given.
func DefaultConfigFile() *ConfigFile {
	c := &ConfigFile{}
	c.applyDefaults()
	return c
}

func (c *ConfigFile) applyDefaults() {
	if c.Node.ListenAddr == "" {
		c.Node.ListenAddr = DefaultListenAddr
	}
	if c.Node.ChainFile == "" {
		c.Node.ChainFile = blockchain.DefaultFilename
	}
	if c.Store.Type == "" {
		c.Store.Type = store.LevelDBStoreType
	}
	if c.Store.Directory == "" {
		c.Store.Directory = DefaultStoreDir
	}
}

func loadSection(path, name string, v interface{}) error {
	if path == "" {
		return nil
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return err
	}
	return cfg.Section(name).MapTo(v)
}

// LoadConsensusConfig reads [consensus] from an .ini file. An empty path
// yields the defaults.
func LoadConsensusConfig(path string) (*ConsensusConfig, error) {
	c := &ConsensusConfig{}
	if err := loadSection(path, "consensus", c); err != nil {
		return nil, err
	}
	if c.ExchangeIntervalSeconds <= 0 {
		c.ExchangeIntervalSeconds = DefaultExchangeIntervalSeconds
	}
	if c.DialTimeoutMs <= 0 {
		c.DialTimeoutMs = DefaultDialTimeoutMs
	}
	if c.IOTimeoutMs <= 0 {
		c.IOTimeoutMs = DefaultIOTimeoutMs
	}
	if c.PollTimeoutMs <= 0 {
		c.PollTimeoutMs = DefaultPollTimeoutMs
	}
	if c.MaxMessageBytes == 0 {
		c.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if c.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("rate_limit_per_minute cannot be negative")
	}
	return c, nil
}

// NewLimiter builds the per-host limiter described by c, or nil when rate
// limiting is disabled.
func (c *ConsensusConfig) NewLimiter() *ratelimit.Limiter {
	if c.RateLimitPerMinute <= 0 {
		return nil
	}
	return ratelimit.New(ratelimit.Config{MaxRequests: c.RateLimitPerMinute, WindowSize: time.Minute})
}

// LoadMiningConfig reads [mining] from an .ini file.
func LoadMiningConfig(path string) (*MiningConfig, error) {
	c := &MiningConfig{Difficulty: DefaultDifficulty}
	if err := loadSection(path, "mining", c); err != nil {
		return nil, err
	}
	if c.Reward == 0 {
		c.Reward = DefaultReward
	}
	if c.Reward > math.MaxUint32 {
		return nil, fmt.Errorf("mining reward %d out of range", c.Reward)
	}
	return c, nil
}

// LoadDiscoveryConfig reads [discovery] from an .ini file.
func LoadDiscoveryConfig(path string) (*DiscoveryConfig, error) {
	c := &DiscoveryConfig{}
	if err := loadSection(path, "discovery", c); err != nil {
		return nil, err
	}
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = DefaultDiscoveryIntervalSeconds
	}
	if c.KeepaliveSeconds <= 0 {
		c.KeepaliveSeconds = DefaultKeepaliveSeconds
	}
	return c, nil
}

// LoadEd25519PrivKey loads an Ed25519 private key from a file (expects hex
// encoding). Encrypted key files are unlocked with LEOCOIN_KEY_PASSPHRASE.
func LoadEd25519PrivKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if isEncryptedKey(text) {
		passphrase := os.Getenv(EnvKeyPassphrase)
		if passphrase == "" {
			return nil, fmt.Errorf("%s is encrypted: set %s", path, EnvKeyPassphrase)
		}
		return decryptPrivKey(text, []byte(passphrase))
	}
	return parsePrivKey(text)
}

func parsePrivKey(text string) (ed25519.PrivateKey, error) {
	key, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("private key is not hex: %w", err)
	}
	switch len(key) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(key), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(key), nil
	default:
		return nil, fmt.Errorf("private key has %d bytes, want %d or %d", len(key), ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}

// SaveEd25519PrivKey writes key as hex with owner-only permissions.
func SaveEd25519PrivKey(path string, key ed25519.PrivateKey) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600)
}

// LoadPrivKey resolves the node's private key: the configured file first,
// then the LEOCOIN_PRIVATE_KEY environment variable. It returns nil without
// error when neither is set.
func LoadPrivKey(node NodeConfig) (ed25519.PrivateKey, error) {
	if node.PrivKeyPath != "" {
		return LoadEd25519PrivKey(node.PrivKeyPath)
	}
	if text := os.Getenv(EnvPrivateKey); text != "" {
		return parsePrivKey(text)
	}
	return nil, nil
}

// ResolvePublicKey returns the key mining rewards are paid to: the
// configured pubkey, then LEOCOIN_PUBLIC_KEY, then the key derived from priv.
func ResolvePublicKey(node NodeConfig, priv ed25519.PrivateKey) (transaction.PublicKey, error) {
	text := node.PubKey
	if text == "" {
		text = os.Getenv(EnvPublicKey)
	}
	if text != "" {
		return transaction.ParsePublicKey(text)
	}
	if priv != nil {
		var k transaction.PublicKey
		copy(k[:], priv.Public().(ed25519.PublicKey))
		return k, nil
	}
	return transaction.PublicKey{}, fmt.Errorf("no public key: set node.pubkey, %s or a private key", EnvPublicKey)
}

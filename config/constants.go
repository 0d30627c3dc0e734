package config

const (
	DefaultListenAddr    = "[::]:8333"
	DefaultBootstrapAddr = "[::1]:8334"
	DefaultAPIAddr       = "127.0.0.1:8080"
	DefaultStoreDir      = "data/chain"

	DefaultExchangeIntervalSeconds = 20
	DefaultDialTimeoutMs           = 5000
	DefaultIOTimeoutMs             = 10000
	DefaultPollTimeoutMs           = 100
	DefaultMaxMessageBytes         = 32 * 1024 * 1024

	DefaultDifficulty = 3
	DefaultReward     = 1

	DefaultDiscoveryIntervalSeconds = 20
	DefaultKeepaliveSeconds         = 60

	EnvPrivateKey = "LEOCOIN_PRIVATE_KEY"
	EnvPublicKey  = "LEOCOIN_PUBLIC_KEY"
	// EnvKeyPassphrase unlocks a key file written by SaveEncryptedEd25519PrivKey.
	EnvKeyPassphrase = "LEOCOIN_KEY_PASSPHRASE"
)

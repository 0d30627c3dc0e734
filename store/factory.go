package store

import (
	"fmt"

	"github.com/kostaleonard/leocoin/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltStoreType uses the bbolt implementation
	BoltStoreType StoreType = "bolt"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path
	Directory string `json:"directory" yaml:"directory"`

	// Keep is how many archived chain versions to retain; 0 keeps all.
	Keep int `json:"keep" yaml:"keep"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}
	if sc.Directory == "" {
		return fmt.Errorf("directory cannot be empty")
	}
	if sc.Keep < 0 {
		return fmt.Errorf("keep cannot be negative")
	}
	switch sc.Type {
	case LevelDBStoreType, BoltStoreType:
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// CreateProvider creates a database provider based on the configuration
func CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)
	case BoltStoreType:
		return db.NewBoltProvider(config.Directory)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// CreateChainArchive opens the provider described by config and wraps it.
func CreateChainArchive(config *StoreConfig) (*ChainArchive, error) {
	provider, err := CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return NewChainArchive(provider, config.Keep), nil
}

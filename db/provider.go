package db

// DatabaseProvider is the key-value backend the chain archive writes to.
// Get returns (nil, nil) for a missing key.
type DatabaseProvider interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	Close() error

	// Batch returns a new batch for atomic operations
	Batch() DatabaseBatch

	// IteratePrefix visits keys with the given prefix in key order until
	// callback returns false.
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error
}

// DatabaseBatch collects writes that are applied together by Write.
type DatabaseBatch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Write() error
	Reset()
}

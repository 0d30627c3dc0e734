package store

// Declare database key prefix for objects
const (
	PrefixChain         = "chain:"
	PrefixChainMeta     = "chain_meta:"
	ChainMetaKeyLatest  = "latest"
	ChainMetaKeyTipHash = "tip_hash"
)

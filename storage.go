package wdb

// storage is a key-value backend for snapshots (Bolt or in-memory).
type storage interface {
	// BeginTx starts a new transaction. Only one writable transaction may be
	// open at a time; BeginTx blocks until the previous one finishes.
	BeginTx(writable bool) (storageTx, error)
	// Close closes the storage.
	Close() error
}

// storageTx represents a storage transaction.
type storageTx interface {
	// Writable returns true if this is a writable transaction.
	Writable() bool

	// Bucket returns nil if the bucket doesn't exist.
	Bucket(name string) storageBucket

	// CreateBucket creates a bucket if it doesn't exist.
	CreateBucket(name string) (storageBucket, error)

	// Commit commits the transaction.
	Commit() error

	// Rollback aborts the transaction. It should be safe to call multiple times,
	// including after Commit.
	Rollback() error
}

// storageBucket is a sorted key-value collection.
type storageBucket interface {
	// Get retrieves a value by key. Returns nil if not found. The returned
	// slice is only valid until the transaction ends.
	Get(key []byte) []byte

	Put(key, value []byte) error

	Delete(key []byte) error

	// ForEach calls fn for every pair in key order, stopping at the first error.
	ForEach(fn func(k, v []byte) error) error

	KeyCount() int
}

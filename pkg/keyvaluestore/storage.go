package keyvaluestore

import (
	"io"
)

// Storage is the capability contract the engine drives. Implementations need
// not be safe for concurrent use; the engine serializes every call.
type Storage interface {
	io.Closer

	// Write stores value under key and drops any expiry previously set on it.
	Write(key []byte, value []byte) error
	// Expire associates expiry with an existing key and returns 1, or 0 if the
	// key does not exist.
	Expire(key []byte, expiry Expiry) (int, error)
	// Read returns ErrNotFound for absent and expired keys.
	Read(key []byte) ([]byte, error)
	Remove(key []byte) (int, error)
	Contains(key []byte) (bool, error)
}

// Sweeper is implemented by storages that can reclaim expired entries ahead
// of access. Sweeping must not change what readers observe.
type Sweeper interface {
	Sweep() (int, error)
}

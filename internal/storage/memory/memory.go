package memory

import (
	"time"

	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

type entry struct {
	value  []byte
	expiry keyvaluestore.Expiry
}

type memoryStorage struct {
	data map[string]*entry
	now  func() time.Time
}

type Option func(s *memoryStorage)

// WithClock overrides the clock expiries are compared against.
func WithClock(now func() time.Time) Option {
	return func(s *memoryStorage) {
		s.now = now
	}
}

// New returns an empty in-memory storage. It is not safe for concurrent use
// on its own; callers serialize access.
func New(options ...Option) keyvaluestore.Storage {
	result := &memoryStorage{
		data: make(map[string]*entry),
		now:  time.Now,
	}

	for _, option := range options {
		option(result)
	}

	return result
}

func (s *memoryStorage) Write(key []byte, value []byte) error {
	if s.data == nil {
		return keyvaluestore.ErrClosed
	}

	s.data[string(key)] = &entry{value: append([]byte{}, value...)}
	return nil
}

func (s *memoryStorage) Expire(key []byte, expiry keyvaluestore.Expiry) (int, error) {
	if s.data == nil {
		return 0, keyvaluestore.ErrClosed
	}

	e := s.lookup(key)
	if e == nil {
		return 0, nil
	}

	e.expiry = expiry
	return 1, nil
}

func (s *memoryStorage) Read(key []byte) ([]byte, error) {
	if s.data == nil {
		return nil, keyvaluestore.ErrClosed
	}

	e := s.lookup(key)
	if e == nil {
		return nil, keyvaluestore.ErrNotFound
	}

	return e.value, nil
}

func (s *memoryStorage) Remove(key []byte) (int, error) {
	if s.data == nil {
		return 0, keyvaluestore.ErrClosed
	}

	if s.lookup(key) == nil {
		return 0, nil
	}

	delete(s.data, string(key))
	return 1, nil
}

func (s *memoryStorage) Contains(key []byte) (bool, error) {
	if s.data == nil {
		return false, keyvaluestore.ErrClosed
	}

	return s.lookup(key) != nil, nil
}

// Sweep purges every expired entry and returns how many were removed.
func (s *memoryStorage) Sweep() (int, error) {
	if s.data == nil {
		return 0, keyvaluestore.ErrClosed
	}

	now := s.now()
	removed := 0

	for key, e := range s.data {
		if e.expiry.Elapsed(now) {
			delete(s.data, key)
			removed++
		}
	}

	return removed, nil
}

func (s *memoryStorage) Close() error {
	s.data = nil
	return nil
}

// lookup returns the live entry for key, purging it first if it has expired.
func (s *memoryStorage) lookup(key []byte) *entry {
	e, ok := s.data[string(key)]
	if !ok {
		return nil
	}

	if e.expiry.Elapsed(s.now()) {
		delete(s.data, string(key))
		return nil
	}

	return e
}

package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cafebazaar/inmemory-keyvalue/internal/storage/memory"
	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

const (
	KEY   = "key"
	VALUE = "hello"
)

type MemoryStorageTestSuite struct {
	suite.Suite

	now     time.Time
	storage keyvaluestore.Storage
}

func TestMemoryStorageTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryStorageTestSuite))
}

func (s *MemoryStorageTestSuite) SetupTest() {
	s.now = time.Date(2020, 4, 1, 12, 0, 0, 0, time.UTC)
	s.storage = memory.New(memory.WithClock(func() time.Time { return s.now }))
}

func (s *MemoryStorageTestSuite) TestReadShouldReturnNotFoundIfKeyDoesNotExist() {
	_, err := s.storage.Read([]byte(KEY))
	s.Equal(keyvaluestore.ErrNotFound, err)
}

func (s *MemoryStorageTestSuite) TestReadShouldReturnWrittenValue() {
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))
	result, err := s.storage.Read([]byte(KEY))
	s.Nil(err)
	s.Equal(VALUE, string(result))
}

func (s *MemoryStorageTestSuite) TestWriteShouldOverwriteExistingValue() {
	s.Nil(s.storage.Write([]byte(KEY), []byte("_")))
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))
	result, err := s.storage.Read([]byte(KEY))
	s.Nil(err)
	s.Equal(VALUE, string(result))
}

func (s *MemoryStorageTestSuite) TestWriteShouldCopyValue() {
	value := []byte(VALUE)
	s.Nil(s.storage.Write([]byte(KEY), value))
	value[0] = 'X'

	result, err := s.storage.Read([]byte(KEY))
	s.Nil(err)
	s.Equal(VALUE, string(result))
}

func (s *MemoryStorageTestSuite) TestWriteShouldClearPreviousExpiry() {
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))
	s.expireIn(time.Second)
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))

	s.now = s.now.Add(time.Hour)
	s.True(s.contains())
}

func (s *MemoryStorageTestSuite) TestKeysShouldBeComparedAsExactBytes() {
	s.Nil(s.storage.Write([]byte("a\x00b"), []byte(VALUE)))

	_, err := s.storage.Read([]byte("a"))
	s.Equal(keyvaluestore.ErrNotFound, err)

	result, err := s.storage.Read([]byte("a\x00b"))
	s.Nil(err)
	s.Equal(VALUE, string(result))
}

func (s *MemoryStorageTestSuite) TestExpireShouldReturnZeroIfKeyDoesNotExist() {
	count, err := s.storage.Expire([]byte(KEY), s.expiryIn(time.Second))
	s.Nil(err)
	s.Equal(0, count)
}

func (s *MemoryStorageTestSuite) TestExpireShouldHideKeyOnceElapsed() {
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))
	s.Equal(1, s.expireIn(time.Second))

	s.now = s.now.Add(999 * time.Millisecond)
	s.True(s.contains())

	s.now = s.now.Add(time.Millisecond)
	s.False(s.contains())
	_, err := s.storage.Read([]byte(KEY))
	s.Equal(keyvaluestore.ErrNotFound, err)
}

func (s *MemoryStorageTestSuite) TestExpireShouldReplacePreviousExpiry() {
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))
	s.Equal(1, s.expireIn(time.Second))
	s.Equal(1, s.expireIn(time.Minute))

	s.now = s.now.Add(30 * time.Second)
	s.True(s.contains())
}

func (s *MemoryStorageTestSuite) TestExpireOnElapsedKeyShouldReturnZero() {
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))
	s.Equal(1, s.expireIn(time.Second))
	s.now = s.now.Add(time.Second)

	s.Equal(0, s.expireIn(time.Minute))
}

func (s *MemoryStorageTestSuite) TestAccessShouldPurgeExpiredEntry() {
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))
	s.Nil(s.storage.Write([]byte("other"), []byte(VALUE)))
	s.expireIn(time.Second)
	_, err := s.storage.Expire([]byte("other"), s.expiryIn(time.Second))
	s.Nil(err)

	s.now = s.now.Add(time.Second)

	_, err = s.storage.Read([]byte(KEY))
	s.Equal(keyvaluestore.ErrNotFound, err)

	removed, err := s.storage.(keyvaluestore.Sweeper).Sweep()
	s.Nil(err)
	s.Equal(1, removed)
}

func (s *MemoryStorageTestSuite) TestRemoveShouldReportDeletions() {
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))

	count, err := s.storage.Remove([]byte(KEY))
	s.Nil(err)
	s.Equal(1, count)

	count, err = s.storage.Remove([]byte(KEY))
	s.Nil(err)
	s.Equal(0, count)
}

func (s *MemoryStorageTestSuite) TestRemoveShouldNotCountExpiredKey() {
	s.Nil(s.storage.Write([]byte(KEY), []byte(VALUE)))
	s.expireIn(time.Second)
	s.now = s.now.Add(time.Second)

	count, err := s.storage.Remove([]byte(KEY))
	s.Nil(err)
	s.Equal(0, count)
}

func (s *MemoryStorageTestSuite) TestSweepShouldRemoveOnlyExpiredEntries() {
	s.Nil(s.storage.Write([]byte("A"), []byte(VALUE)))
	s.Nil(s.storage.Write([]byte("B"), []byte(VALUE)))
	s.Nil(s.storage.Write([]byte("C"), []byte(VALUE)))
	_, err := s.storage.Expire([]byte("A"), s.expiryIn(time.Second))
	s.Nil(err)
	_, err = s.storage.Expire([]byte("B"), s.expiryIn(time.Hour))
	s.Nil(err)

	s.now = s.now.Add(time.Minute)

	removed, err := s.storage.(keyvaluestore.Sweeper).Sweep()
	s.Nil(err)
	s.Equal(1, removed)

	removed, err = s.storage.(keyvaluestore.Sweeper).Sweep()
	s.Nil(err)
	s.Equal(0, removed)

	for _, key := range []string{"B", "C"} {
		ok, err := s.storage.Contains([]byte(key))
		s.Nil(err)
		s.True(ok)
	}
}

func (s *MemoryStorageTestSuite) TestClosedStorageShouldReturnErrClosed() {
	s.Nil(s.storage.Close())

	s.Equal(keyvaluestore.ErrClosed, s.storage.Write([]byte(KEY), []byte(VALUE)))

	_, err := s.storage.Read([]byte(KEY))
	s.Equal(keyvaluestore.ErrClosed, err)

	_, err = s.storage.Contains([]byte(KEY))
	s.Equal(keyvaluestore.ErrClosed, err)

	_, err = s.storage.Remove([]byte(KEY))
	s.Equal(keyvaluestore.ErrClosed, err)

	_, err = s.storage.Expire([]byte(KEY), s.expiryIn(time.Second))
	s.Equal(keyvaluestore.ErrClosed, err)
}

func (s *MemoryStorageTestSuite) expiryIn(duration time.Duration) keyvaluestore.Expiry {
	return keyvaluestore.ExpiryAt(s.now.Add(duration))
}

func (s *MemoryStorageTestSuite) expireIn(duration time.Duration) int {
	count, err := s.storage.Expire([]byte(KEY), s.expiryIn(duration))
	s.Nil(err)
	return count
}

func (s *MemoryStorageTestSuite) contains() bool {
	ok, err := s.storage.Contains([]byte(KEY))
	s.Nil(err)
	return ok
}

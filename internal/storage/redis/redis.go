package redis

import (
	"time"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"

	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

type redisStorage struct {
	client *redis.Client
	now    func() time.Time
}

type Option func(r *redisStorage)

// WithClock overrides the clock used to turn absolute expiries into the
// relative TTLs redis expects.
func WithClock(now func() time.Time) Option {
	return func(r *redisStorage) {
		r.now = now
	}
}

// New returns a storage that keeps its data on a remote redis server.
func New(client *redis.Client, options ...Option) keyvaluestore.Storage {
	result := &redisStorage{
		client: client,
		now:    time.Now,
	}

	for _, option := range options {
		option(result)
	}

	return result
}

func (r *redisStorage) Write(key []byte, value []byte) error {
	if r.client == nil {
		return keyvaluestore.ErrClosed
	}

	return errors.Wrap(r.client.Set(string(key), value, 0).Err(), "redis SET failed")
}

func (r *redisStorage) Expire(key []byte, expiry keyvaluestore.Expiry) (int, error) {
	if r.client == nil {
		return 0, keyvaluestore.ErrClosed
	}

	if expiry.Elapsed(r.now()) {
		return r.Remove(key)
	}

	ok, err := r.client.PExpireAt(string(key), expiry.At()).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis PEXPIREAT failed")
	}

	if !ok {
		return 0, nil
	}

	return 1, nil
}

func (r *redisStorage) Read(key []byte) ([]byte, error) {
	if r.client == nil {
		return nil, keyvaluestore.ErrClosed
	}

	result, err := r.client.Get(string(key)).Bytes()
	if err == redis.Nil {
		return nil, keyvaluestore.ErrNotFound
	}

	return result, errors.Wrap(err, "redis GET failed")
}

func (r *redisStorage) Remove(key []byte) (int, error) {
	if r.client == nil {
		return 0, keyvaluestore.ErrClosed
	}

	result, err := r.client.Del(string(key)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis DEL failed")
	}

	return int(result), nil
}

func (r *redisStorage) Contains(key []byte) (bool, error) {
	if r.client == nil {
		return false, keyvaluestore.ErrClosed
	}

	result, err := r.client.Exists(string(key)).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis EXISTS failed")
	}

	return result > 0, nil
}

func (r *redisStorage) Close() error {
	if r.client != nil {
		err := r.client.Close()
		r.client = nil

		return err
	}

	return nil
}

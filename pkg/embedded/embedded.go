// Package embedded runs the key-value store inside the current process.
//
// A Store can be driven directly with Handle or Do, or exposed on a local
// TCP port with Listen so that ordinary redis clients can talk to it:
//
//	store := embedded.New()
//	defer store.Close()
//
//	if err := store.Listen(0); err != nil {
//		...
//	}
//	client := redis.NewClient(&redis.Options{Addr: store.Addr()})
package embedded

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/cafebazaar/inmemory-keyvalue/internal/core"
	"github.com/cafebazaar/inmemory-keyvalue/internal/engine"
	"github.com/cafebazaar/inmemory-keyvalue/internal/parser"
	"github.com/cafebazaar/inmemory-keyvalue/internal/storage/memory"
	redisTransport "github.com/cafebazaar/inmemory-keyvalue/internal/transport/redis"
	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

type Store struct {
	service keyvaluestore.Service

	mutex  sync.Mutex
	server keyvaluestore.Server
}

type config struct {
	storage       keyvaluestore.Storage
	sweepInterval time.Duration
	now           func() time.Time
}

type Option func(c *config)

// WithStorage replaces the default in-memory storage.
func WithStorage(storage keyvaluestore.Storage) Option {
	return func(c *config) {
		c.storage = storage
	}
}

// WithSweepInterval periodically reclaims expired keys. Visibility of
// expired keys is unaffected.
func WithSweepInterval(interval time.Duration) Option {
	return func(c *config) {
		c.sweepInterval = interval
	}
}

// WithClock sets the clock used both for computing and checking expiries of
// the default in-memory storage.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

func New(options ...Option) *Store {
	c := &config{now: time.Now}
	for _, option := range options {
		option(c)
	}

	if c.storage == nil {
		c.storage = memory.New(memory.WithClock(c.now))
	}

	return &Store{
		service: core.New(
			parser.New(parser.WithClock(c.now)),
			engine.New(c.storage, engine.WithSweepInterval(c.sweepInterval)),
		),
	}
}

// Handle serves one framed request and returns the reply bytes.
func (s *Store) Handle(request []byte) (keyvaluestore.Command, []byte) {
	return s.service.Handle(request)
}

// Do executes one command given as plain arguments, e.g. Do("SET", "k", "v").
func (s *Store) Do(args ...string) []byte {
	raw := make([][]byte, 0, len(args))
	for _, arg := range args {
		raw = append(raw, []byte(arg))
	}

	_, result := s.service.Process(raw)
	return result
}

// Listen serves the store over TCP on 127.0.0.1:port. Port 0 picks a free port.
func (s *Store) Listen(port int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.server != nil {
		return errors.New("store is already listening")
	}

	server := redisTransport.NewWithAddress(s.service, fmt.Sprintf("127.0.0.1:%d", port))
	if err := server.Start(); err != nil {
		return errors.Wrap(err, "failed to start listener")
	}

	s.server = server
	return nil
}

// Addr returns the address Listen bound to, or "" before Listen.
func (s *Store) Addr() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.server == nil {
		return ""
	}

	return s.server.Addr()
}

func (s *Store) Close() error {
	s.mutex.Lock()
	server := s.server
	s.server = nil
	s.mutex.Unlock()

	if server != nil {
		if err := server.Close(); err != nil {
			_ = s.service.Close()
			return err
		}
	}

	return s.service.Close()
}

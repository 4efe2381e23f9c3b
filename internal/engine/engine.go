package engine

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cafebazaar/inmemory-keyvalue/internal/reply"
	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

type keyValueEngine struct {
	storage       keyvaluestore.Storage
	sweepInterval time.Duration
	mutex         sync.Mutex
	closed        chan struct{}
	closeOnce     sync.Once
	wg            sync.WaitGroup
}

type Option func(e *keyValueEngine)

// WithSweepInterval enables periodic reclamation of expired entries when the
// storage implements keyvaluestore.Sweeper. Zero disables it.
func WithSweepInterval(interval time.Duration) Option {
	return func(e *keyValueEngine) {
		e.sweepInterval = interval
	}
}

// New returns an engine that owns storage. Every command holds the engine's
// lock for its whole duration, so storage needs no locking of its own.
func New(storage keyvaluestore.Storage, options ...Option) keyvaluestore.Engine {
	result := &keyValueEngine{
		storage: storage,
		closed:  make(chan struct{}),
	}

	for _, option := range options {
		option(result)
	}

	if sweeper, ok := storage.(keyvaluestore.Sweeper); ok && result.sweepInterval > 0 {
		started := make(chan struct{})
		result.wg.Add(1)
		go result.beginSweep(sweeper, started)
		<-started
	}

	return result
}

func (e *keyValueEngine) Execute(command keyvaluestore.Command) []byte {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.isClosed() {
		return reply.ErrorReply(keyvaluestore.ErrClosed)
	}

	w := reply.NewWriter()
	if err := e.execute(command, w); err != nil {
		w.Reset()
		if writeErr := w.Error(err); writeErr != nil {
			return reply.ErrorReply(writeErr)
		}
	}

	result, err := w.Bytes()
	if err != nil {
		return reply.ErrorReply(err)
	}

	return result
}

func (e *keyValueEngine) execute(command keyvaluestore.Command, w *reply.Writer) error {
	switch command := command.(type) {
	case keyvaluestore.SetCommand:
		return e.set(command.Key, command.Value, command.Expiry, w)

	case keyvaluestore.SetexCommand:
		return e.set(command.Key, command.Value, command.Expiry, w)

	case keyvaluestore.PSetexCommand:
		return e.set(command.Key, command.Value, command.Expiry, w)

	case keyvaluestore.SetnxCommand:
		exists, err := e.storage.Contains(command.Key)
		if err != nil {
			return err
		}

		if exists {
			return w.Int(0)
		}

		if err := e.storage.Write(command.Key, command.Value); err != nil {
			return err
		}
		return w.Int(1)

	case keyvaluestore.MSetCommand:
		if err := e.writeAll(command.Items); err != nil {
			return err
		}
		return w.OK()

	case keyvaluestore.MSetnxCommand:
		for _, item := range command.Items {
			exists, err := e.storage.Contains(item.Key)
			if err != nil {
				return err
			}

			if exists {
				return w.Int(0)
			}
		}

		if err := e.writeAll(command.Items); err != nil {
			return err
		}
		return w.Int(1)

	case keyvaluestore.ExpireCommand:
		return e.expire(command.Key, command.Expiry, w)

	case keyvaluestore.PExpireCommand:
		return e.expire(command.Key, command.Expiry, w)

	case keyvaluestore.GetCommand:
		value, err := e.read(command.Key)
		if err != nil {
			return err
		}
		return w.Bulk(value)

	case keyvaluestore.GetSetCommand:
		value, err := e.read(command.Key)
		if err != nil {
			return err
		}

		if err := e.storage.Write(command.Key, command.Value); err != nil {
			return err
		}
		return w.Bulk(value)

	case keyvaluestore.MGetCommand:
		values := make([][]byte, 0, len(command.Keys))
		for _, key := range command.Keys {
			value, err := e.read(key)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return w.Bulks(values)

	case keyvaluestore.DelCommand:
		count, err := e.storage.Remove(command.Key)
		if err != nil {
			return err
		}
		return w.Int(int64(count))

	case keyvaluestore.IncrCommand:
		return e.incr(command.Key, w)

	case keyvaluestore.ExistsCommand:
		exists, err := e.storage.Contains(command.Key)
		if err != nil {
			return err
		}
		return w.Bool(exists)

	case keyvaluestore.InfoCommand:
		return w.EmptyArray()

	case keyvaluestore.PingCommand:
		return w.Pong()

	case keyvaluestore.QuitCommand:
		return w.OK()

	default:
		return errors.Errorf("unknown command: %T", command)
	}
}

func (e *keyValueEngine) set(key, value []byte, expiry keyvaluestore.Expiry, w *reply.Writer) error {
	if err := e.storage.Write(key, value); err != nil {
		return err
	}

	if !expiry.IsZero() {
		if _, err := e.storage.Expire(key, expiry); err != nil {
			return err
		}
	}

	return w.OK()
}

func (e *keyValueEngine) writeAll(items []keyvaluestore.Item) error {
	for _, item := range items {
		if err := e.storage.Write(item.Key, item.Value); err != nil {
			return err
		}
	}

	return nil
}

func (e *keyValueEngine) expire(key []byte, expiry keyvaluestore.Expiry, w *reply.Writer) error {
	count, err := e.storage.Expire(key, expiry)
	if err != nil {
		return err
	}

	return w.Int(int64(count))
}

// read returns nil without an error for absent keys.
func (e *keyValueEngine) read(key []byte) ([]byte, error) {
	value, err := e.storage.Read(key)
	if err == keyvaluestore.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if value == nil {
		value = []byte{}
	}

	return value, nil
}

func (e *keyValueEngine) incr(key []byte, w *reply.Writer) error {
	value, err := e.read(key)
	if err != nil {
		return err
	}

	var current int64
	if value != nil {
		current, err = strconv.ParseInt(string(value), 10, 64)
		if err != nil {
			return keyvaluestore.ErrWrongType
		}
	}

	if current == math.MaxInt64 {
		return keyvaluestore.ErrOverflow
	}

	current++
	if err := e.storage.Write(key, []byte(strconv.FormatInt(current, 10))); err != nil {
		return err
	}

	return w.Int(current)
}

func (e *keyValueEngine) Close() error {
	e.closeOnce.Do(func() {
		close(e.closed)
	})

	e.wg.Wait()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.storage.Close()
}

func (e *keyValueEngine) beginSweep(sweeper keyvaluestore.Sweeper, started chan struct{}) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	close(started)

	for {
		select {
		case <-e.closed:
			return

		case <-ticker.C:
			e.sweep(sweeper)
		}
	}
}

func (e *keyValueEngine) sweep(sweeper keyvaluestore.Sweeper) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.isClosed() {
		return
	}

	removed, err := sweeper.Sweep()
	if err != nil {
		logrus.WithError(err).Error("unexpected error while sweeping expired keys")
		return
	}

	if removed > 0 {
		logrus.WithField("removed", removed).Debug("swept expired keys")
	}
}

func (e *keyValueEngine) isClosed() bool {
	select {
	case <-e.closed:
		return true

	default:
		return false
	}
}

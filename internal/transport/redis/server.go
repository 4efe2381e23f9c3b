package redis

import (
	"bufio"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cafebazaar/inmemory-keyvalue/internal/protocol"
	"github.com/cafebazaar/inmemory-keyvalue/internal/reply"
	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

type redisServer struct {
	listenAddress string
	core          keyvaluestore.Service
	wg            sync.WaitGroup
	listener      net.Listener
	mutex         sync.Mutex
	closing       bool
	connections   map[net.Conn]struct{}
}

// New returns a server that listens on listenPort on all interfaces.
func New(core keyvaluestore.Service, listenPort int) keyvaluestore.Server {
	return NewWithAddress(core, fmt.Sprintf(":%d", listenPort))
}

func NewWithAddress(core keyvaluestore.Service, listenAddress string) keyvaluestore.Server {
	return &redisServer{
		core:          core,
		listenAddress: listenAddress,
		connections:   make(map[net.Conn]struct{}),
	}
}

func (s *redisServer) Start() error {
	var err error

	s.listener, err = net.Listen("tcp", s.listenAddress)
	if err != nil {
		return err
	}

	started := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		close(started)

		for {
			conn, err := s.listener.Accept()
			if err != nil {
				return
			}

			if !s.track(conn) {
				continue
			}

			s.wg.Add(1)
			go s.handleConnection(conn)
		}
	}()
	<-started

	return nil
}

func (s *redisServer) Addr() string {
	if s.listener == nil {
		return s.listenAddress
	}

	return s.listener.Addr().String()
}

func (s *redisServer) Close() error {
	s.mutex.Lock()
	s.closing = true
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mutex.Unlock()

	if s.listener == nil {
		return nil
	}

	err := s.listener.Close()
	s.wg.Wait()
	return err
}

func (s *redisServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.untrack(conn)
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Debug("unexpected error while closing connection")
		}
	}()

	decoder := protocol.NewDecoder(conn)
	writer := bufio.NewWriter(conn)

	for {
		done, err := s.connectionLoop(decoder, writer)
		if err != nil {
			if err != keyvaluestore.ErrClosed {
				logrus.WithError(err).Info("unexpected error while handling connection")
			}
			return
		}

		if done {
			return
		}
	}
}

// connectionLoop serves one request. It reports done when the connection
// must be closed, either on QUIT or after a request that could not be framed.
func (s *redisServer) connectionLoop(decoder *protocol.Decoder, writer *bufio.Writer) (bool, error) {
	args, last, err := decoder.Decode()
	if err == keyvaluestore.ErrInvalidCommand {
		return false, s.writeError(writer, err)
	}

	if err != nil {
		if _, ok := err.(*protocol.MalformedError); ok {
			logrus.WithError(err).Debug("closing connection after malformed request")
			return true, s.writeError(writer, err)
		}

		return false, keyvaluestore.ErrClosed
	}

	return s.dispatchCommand(args, last, writer)
}

func (s *redisServer) dispatchCommand(args [][]byte, last bool, writer *bufio.Writer) (bool, error) {
	parsed, result := s.core.Process(args)
	if _, err := writer.Write(result); err != nil {
		return false, err
	}

	_, quit := parsed.(keyvaluestore.QuitCommand)

	if quit || last {
		return quit, writer.Flush()
	}

	return false, nil
}

func (s *redisServer) writeError(writer *bufio.Writer, err error) error {
	if _, writeErr := writer.Write(reply.ErrorReply(err)); writeErr != nil {
		return writeErr
	}

	return writer.Flush()
}

// track registers conn for Close. It closes conn and returns false once the
// server is closing.
func (s *redisServer) track(conn net.Conn) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closing {
		_ = conn.Close()
		return false
	}

	s.connections[conn] = struct{}{}
	return true
}

func (s *redisServer) untrack(conn net.Conn) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.connections, conn)
}

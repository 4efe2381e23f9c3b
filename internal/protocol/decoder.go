package protocol

import (
	"io"

	"github.com/pkg/errors"
	redisproto "github.com/secmask/go-redisproto"
	"github.com/sirupsen/logrus"

	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

const (
	DefaultMaxArguments = 1024 * 1024
	DefaultMaxBulkSize  = 512 * 1024 * 1024
)

var (
	ErrMultiBulkLength = errors.New("Protocol error: invalid multibulk length")
	ErrBulkLength      = errors.New("Protocol error: invalid bulk length")
	ErrInlineRequest   = errors.New("Protocol error: invalid inline request")
	ErrInlineTooLong   = errors.New("Protocol error: too big inline request")
)

func init() {
	SetLimits(DefaultMaxArguments, DefaultMaxBulkSize)
}

// SetLimits bounds the number of arguments and the size of a single argument
// accepted in one request. The limits are process wide and must be set before
// any request is decoded.
func SetLimits(maxArguments, maxBulkSize int) {
	redisproto.MaxNumArg = maxArguments
	redisproto.MaxBulkSize = maxBulkSize
}

// MalformedError reports a request that could not be framed. The decoder's
// position in the stream is undefined afterwards.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

type Decoder struct {
	parser *redisproto.Parser
}

func NewDecoder(reader io.Reader) *Decoder {
	return &Decoder{parser: redisproto.NewParser(reader)}
}

// Decode reads the next request and returns its arguments. The arguments
// alias the decoder's buffer and are valid until the next call. last reports
// that no further request is buffered.
//
// A null request yields keyvaluestore.ErrInvalidCommand and leaves the stream
// usable. Framing failures yield a *MalformedError. Any other error comes from
// the underlying reader.
func (d *Decoder) Decode() (args [][]byte, last bool, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logrus.WithField("panic", recovered).Debug("failed to decode inline request")
			args, last, err = nil, true, &MalformedError{Err: ErrInlineRequest}
		}
	}()

	command, err := d.parser.ReadCommand()
	if err != nil {
		return nil, true, classify(err)
	}

	if command == nil {
		return nil, true, keyvaluestore.ErrInvalidCommand
	}

	args = make([][]byte, 0, command.ArgCount())
	for i := 0; i < command.ArgCount(); i++ {
		args = append(args, command.Get(i))
	}

	return args, command.IsLast(), nil
}

func classify(err error) error {
	switch err {
	case redisproto.InvalidNumArg:
		return &MalformedError{Err: ErrMultiBulkLength}
	case redisproto.InvalidBulkSize:
		return &MalformedError{Err: ErrBulkLength}
	case redisproto.LineTooLong:
		return &MalformedError{Err: ErrInlineTooLong}
	}

	if protocolError, ok := err.(*redisproto.ProtocolError); ok {
		return &MalformedError{Err: errors.Errorf("Protocol error: %s", protocolError.Error())}
	}

	return err
}

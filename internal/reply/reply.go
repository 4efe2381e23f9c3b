package reply

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/pkg/errors"
	redisproto "github.com/secmask/go-redisproto"

	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// Writer accumulates RESP replies in memory.
type Writer struct {
	buffer *bytes.Buffer
	sink   *bufio.Writer
	writer *redisproto.Writer
}

func NewWriter() *Writer {
	buffer := &bytes.Buffer{}
	sink := bufio.NewWriter(buffer)

	return &Writer{
		buffer: buffer,
		sink:   sink,
		writer: redisproto.NewWriter(sink),
	}
}

func (w *Writer) OK() error {
	return w.writer.WriteSimpleString("OK")
}

func (w *Writer) Pong() error {
	return w.writer.WriteSimpleString("PONG")
}

func (w *Writer) Int(value int64) error {
	return w.writer.WriteInt(value)
}

func (w *Writer) Bool(value bool) error {
	if value {
		return w.Int(1)
	}

	return w.Int(0)
}

// Bulk writes value as a binary-safe bulk string, or a nil reply when value
// is nil.
func (w *Writer) Bulk(value []byte) error {
	return w.writer.WriteBulk(value)
}

// Bulks writes an array of bulk strings; nil elements become nil replies.
func (w *Writer) Bulks(values [][]byte) error {
	if values == nil {
		values = [][]byte{}
	}

	return w.writer.WriteBulks(values...)
}

func (w *Writer) EmptyArray() error {
	return w.Bulks(nil)
}

// Error writes err as "-WRONGTYPE <message>" for type mismatches and as
// "-ERR <message>" for everything else. Line breaks in the message become
// spaces so the reply stays on one line.
func (w *Writer) Error(err error) error {
	message := lineBreaks.Replace(err.Error())

	if errors.Is(err, keyvaluestore.ErrWrongType) {
		return w.writer.WriteError("WRONGTYPE " + message)
	}

	return w.writer.WriteError("ERR " + message)
}

// Reset drops everything written so far.
func (w *Writer) Reset() {
	w.sink.Reset(w.buffer)
	w.buffer.Reset()
}

func (w *Writer) Bytes() ([]byte, error) {
	if err := w.writer.Flush(); err != nil {
		return nil, err
	}

	return w.buffer.Bytes(), nil
}

// ErrorReply encodes a single error reply.
func ErrorReply(err error) []byte {
	w := NewWriter()
	if writeErr := w.Error(err); writeErr != nil {
		return []byte("-ERR " + writeErr.Error() + "\r\n")
	}

	result, flushErr := w.Bytes()
	if flushErr != nil {
		return []byte("-ERR " + flushErr.Error() + "\r\n")
	}

	return result
}

package keyvaluestore

import (
	"errors"
	"fmt"
)

var (
	ErrClosed          = errors.New("closed")
	ErrNotFound        = errors.New("not found")
	ErrArgNumber       = errors.New("wrong number of arguments")
	ErrInvalidCommand  = errors.New("invalid command")
	ErrMissingArgument = errors.New("missing or malformed bulk string argument")
	ErrInvalidExpiry   = errors.New("invalid expire time")
	ErrSyntax          = errors.New("syntax error")
	ErrWrongType       = errors.New("Operation against a key holding the wrong kind of value")
	ErrOverflow        = errors.New("increment or decrement would overflow")
)

// NotSupportedError is returned for command keywords outside the supported set.
type NotSupportedError struct {
	Name string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("command not supported: %v", e.Name)
}

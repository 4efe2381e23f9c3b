package keyvaluestore

import (
	"io"
)

// Engine executes parsed commands against a shared Storage. Every call to
// Execute is atomic with respect to every other call.
type Engine interface {
	io.Closer

	Execute(command Command) []byte
}

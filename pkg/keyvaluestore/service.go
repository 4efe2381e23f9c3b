package keyvaluestore

import (
	"io"
)

// Service is the request-level entry point: it decodes, parses and executes
// one request and always produces reply bytes. The returned Command is nil
// when parsing failed; callers close the connection once they see a
// QuitCommand.
type Service interface {
	io.Closer

	Handle(request []byte) (Command, []byte)
	Process(args [][]byte) (Command, []byte)
}

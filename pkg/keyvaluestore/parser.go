package keyvaluestore

// Parser turns the decoded arguments of one request into a Command. It
// never touches storage.
type Parser interface {
	Parse(args [][]byte) (Command, error)
}

package keyvaluestore

// Command is one parsed request. The set of implementations is closed; the
// engine switches over all of them.
type Command interface {
	// Name returns the canonical upper-case keyword.
	Name() string

	command()
}

// Item is a single key/value pair of a multi-key write.
type Item struct {
	Key   []byte
	Value []byte
}

// SetCommand writes Value under Key. Expiry is set when the request carried
// an EX or PX option.
type SetCommand struct {
	Key    []byte
	Value  []byte
	Expiry Expiry
}

type SetnxCommand struct {
	Key   []byte
	Value []byte
}

type SetexCommand struct {
	Key    []byte
	Expiry Expiry
	Value  []byte
}

type PSetexCommand struct {
	Key    []byte
	Expiry Expiry
	Value  []byte
}

type MSetCommand struct {
	Items []Item
}

type MSetnxCommand struct {
	Items []Item
}

type ExpireCommand struct {
	Key    []byte
	Expiry Expiry
}

type PExpireCommand struct {
	Key    []byte
	Expiry Expiry
}

type GetCommand struct {
	Key []byte
}

type GetSetCommand struct {
	Key   []byte
	Value []byte
}

type MGetCommand struct {
	Keys [][]byte
}

type DelCommand struct {
	Key []byte
}

type IncrCommand struct {
	Key []byte
}

type ExistsCommand struct {
	Key []byte
}

type InfoCommand struct{}

type PingCommand struct{}

type QuitCommand struct{}

func (SetCommand) Name() string     { return "SET" }
func (SetnxCommand) Name() string   { return "SETNX" }
func (SetexCommand) Name() string   { return "SETEX" }
func (PSetexCommand) Name() string  { return "PSETEX" }
func (MSetCommand) Name() string    { return "MSET" }
func (MSetnxCommand) Name() string  { return "MSETNX" }
func (ExpireCommand) Name() string  { return "EXPIRE" }
func (PExpireCommand) Name() string { return "PEXPIRE" }
func (GetCommand) Name() string     { return "GET" }
func (GetSetCommand) Name() string  { return "GETSET" }
func (MGetCommand) Name() string    { return "MGET" }
func (DelCommand) Name() string     { return "DEL" }
func (IncrCommand) Name() string    { return "INCR" }
func (ExistsCommand) Name() string  { return "EXISTS" }
func (InfoCommand) Name() string    { return "INFO" }
func (PingCommand) Name() string    { return "PING" }
func (QuitCommand) Name() string    { return "QUIT" }

func (SetCommand) command()     {}
func (SetnxCommand) command()   {}
func (SetexCommand) command()   {}
func (PSetexCommand) command()  {}
func (MSetCommand) command()    {}
func (MSetnxCommand) command()  {}
func (ExpireCommand) command()  {}
func (PExpireCommand) command() {}
func (GetCommand) command()     {}
func (GetSetCommand) command()  {}
func (MGetCommand) command()    {}
func (DelCommand) command()     {}
func (IncrCommand) command()    {}
func (ExistsCommand) command()  {}
func (InfoCommand) command()    {}
func (PingCommand) command()    {}
func (QuitCommand) command()    {}

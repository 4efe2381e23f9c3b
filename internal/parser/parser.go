package parser

import (
	"bytes"
	"strconv"
	"time"

	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

type commandParser struct {
	now func() time.Time
}

type Option func(p *commandParser)

// WithClock overrides the clock used to turn relative TTLs into expiries.
func WithClock(now func() time.Time) Option {
	return func(p *commandParser) {
		p.now = now
	}
}

func New(options ...Option) keyvaluestore.Parser {
	result := &commandParser{now: time.Now}

	for _, option := range options {
		option(result)
	}

	return result
}

func (p *commandParser) Parse(args [][]byte) (keyvaluestore.Command, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, keyvaluestore.ErrInvalidCommand
	}

	name := string(bytes.ToUpper(args[0]))

	switch name {
	case "SET":
		return p.parseSet(args)

	case "SETNX":
		key, value, err := keyAndValue(args)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.SetnxCommand{Key: key, Value: value}, nil

	case "SETEX":
		key, expiry, value, err := p.keyExpiryAndValue(args, time.Second)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.SetexCommand{Key: key, Expiry: expiry, Value: value}, nil

	case "PSETEX":
		key, expiry, value, err := p.keyExpiryAndValue(args, time.Millisecond)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.PSetexCommand{Key: key, Expiry: expiry, Value: value}, nil

	case "MSET":
		items, err := pairs(args)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.MSetCommand{Items: items}, nil

	case "MSETNX":
		items, err := pairs(args)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.MSetnxCommand{Items: items}, nil

	case "EXPIRE":
		key, expiry, err := p.keyAndExpiry(args, time.Second)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.ExpireCommand{Key: key, Expiry: expiry}, nil

	case "PEXPIRE":
		key, expiry, err := p.keyAndExpiry(args, time.Millisecond)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.PExpireCommand{Key: key, Expiry: expiry}, nil

	case "GET":
		key, err := argument(args, 1)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.GetCommand{Key: key}, nil

	case "GETSET":
		key, value, err := keyAndValue(args)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.GetSetCommand{Key: key, Value: value}, nil

	case "MGET":
		if len(args) < 2 {
			return nil, keyvaluestore.ErrArgNumber
		}

		keys := make([][]byte, 0, len(args)-1)
		for i := 1; i < len(args); i++ {
			key, err := argument(args, i)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		return keyvaluestore.MGetCommand{Keys: keys}, nil

	case "DEL":
		key, err := argument(args, 1)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.DelCommand{Key: key}, nil

	case "INCR":
		key, err := argument(args, 1)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.IncrCommand{Key: key}, nil

	case "EXISTS":
		key, err := argument(args, 1)
		if err != nil {
			return nil, err
		}
		return keyvaluestore.ExistsCommand{Key: key}, nil

	case "INFO":
		return keyvaluestore.InfoCommand{}, nil

	case "PING":
		return keyvaluestore.PingCommand{}, nil

	case "QUIT":
		return keyvaluestore.QuitCommand{}, nil

	default:
		return nil, &keyvaluestore.NotSupportedError{Name: string(args[0])}
	}
}

// parseSet accepts SET key value [EX seconds | PX milliseconds].
func (p *commandParser) parseSet(args [][]byte) (keyvaluestore.Command, error) {
	key, value, err := keyAndValue(args)
	if err != nil {
		return nil, err
	}

	result := keyvaluestore.SetCommand{Key: key, Value: value}
	if len(args) == 3 {
		return result, nil
	}

	if len(args) != 5 {
		return nil, keyvaluestore.ErrSyntax
	}

	var unit time.Duration
	switch string(bytes.ToUpper(args[3])) {
	case "EX":
		unit = time.Second

	case "PX":
		unit = time.Millisecond

	default:
		return nil, keyvaluestore.ErrSyntax
	}

	result.Expiry, err = p.expiry(args, 4, unit)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (p *commandParser) keyAndExpiry(args [][]byte,
	unit time.Duration) ([]byte, keyvaluestore.Expiry, error) {

	key, err := argument(args, 1)
	if err != nil {
		return nil, keyvaluestore.Expiry{}, err
	}

	expiry, err := p.expiry(args, 2, unit)
	if err != nil {
		return nil, keyvaluestore.Expiry{}, err
	}

	return key, expiry, nil
}

func (p *commandParser) keyExpiryAndValue(args [][]byte,
	unit time.Duration) ([]byte, keyvaluestore.Expiry, []byte, error) {

	key, expiry, err := p.keyAndExpiry(args, unit)
	if err != nil {
		return nil, keyvaluestore.Expiry{}, nil, err
	}

	value, err := argument(args, 3)
	if err != nil {
		return nil, keyvaluestore.Expiry{}, nil, err
	}

	return key, expiry, value, nil
}

func (p *commandParser) expiry(args [][]byte, index int, unit time.Duration) (keyvaluestore.Expiry, error) {
	raw, err := argument(args, index)
	if err != nil {
		return keyvaluestore.Expiry{}, err
	}

	amount, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return keyvaluestore.Expiry{}, keyvaluestore.ErrInvalidExpiry
	}

	return keyvaluestore.NewExpiry(p.now(), amount, unit)
}

func keyAndValue(args [][]byte) ([]byte, []byte, error) {
	key, err := argument(args, 1)
	if err != nil {
		return nil, nil, err
	}

	value, err := argument(args, 2)
	if err != nil {
		return nil, nil, err
	}

	return key, value, nil
}

// pairs splits everything after the command name into ordered key/value items.
func pairs(args [][]byte) ([]keyvaluestore.Item, error) {
	rest := args[1:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, keyvaluestore.ErrArgNumber
	}

	items := make([]keyvaluestore.Item, 0, len(rest)/2)
	for i := 1; i < len(args); i += 2 {
		key, err := argument(args, i)
		if err != nil {
			return nil, err
		}

		value, err := argument(args, i+1)
		if err != nil {
			return nil, err
		}

		items = append(items, keyvaluestore.Item{Key: key, Value: value})
	}

	return items, nil
}

// argument copies args[index] out of the decoder's buffer, which is reused
// for the next request.
func argument(args [][]byte, index int) ([]byte, error) {
	if index >= len(args) || args[index] == nil {
		return nil, keyvaluestore.ErrMissingArgument
	}

	return append([]byte{}, args[index]...), nil
}

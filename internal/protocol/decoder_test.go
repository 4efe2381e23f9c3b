package protocol_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/cafebazaar/inmemory-keyvalue/internal/protocol"
	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

type DecoderTestSuite struct {
	suite.Suite
}

func TestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(DecoderTestSuite))
}

func (s *DecoderTestSuite) TestShouldDecodeMultiBulkRequest() {
	args, last, err := s.decode("*2\r\n$3\r\nGET\r\n$3\r\nkey\r\n")
	s.Nil(err)
	s.True(last)
	s.Equal([][]byte{[]byte("GET"), []byte("key")}, args)
}

func (s *DecoderTestSuite) TestShouldReportBufferedRequests() {
	decoder := protocol.NewDecoder(strings.NewReader("*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n"))

	_, last, err := decoder.Decode()
	s.Nil(err)
	s.False(last)

	_, last, err = decoder.Decode()
	s.Nil(err)
	s.True(last)
}

func (s *DecoderTestSuite) TestNullArrayShouldBeInvalidCommand() {
	decoder := protocol.NewDecoder(strings.NewReader("*-1\r\n\r\n*1\r\n$4\r\nPING\r\n"))

	args, _, err := decoder.Decode()
	s.Nil(args)
	s.Equal(keyvaluestore.ErrInvalidCommand, err)

	args, _, err = decoder.Decode()
	s.Nil(err)
	s.Equal([][]byte{[]byte("PING")}, args)
}

func (s *DecoderTestSuite) TestBareNewlineShouldBeMalformed() {
	_, _, err := s.decode("\n")
	s.malformed(err, protocol.ErrInlineRequest)
}

func (s *DecoderTestSuite) TestInlineRequestShouldBeSplitOnSpaces() {
	args, _, err := s.decode("GET key\r\n")
	s.Nil(err)
	s.Equal([][]byte{[]byte("GET"), []byte("key")}, args)
}

func (s *DecoderTestSuite) TestManyArgumentsShouldBeAccepted() {
	var request bytes.Buffer
	request.WriteString("*26\r\n$4\r\nMGET\r\n")
	for i := 0; i < 25; i++ {
		request.WriteString("$1\r\nk\r\n")
	}

	args, _, err := s.decode(request.String())
	s.Nil(err)
	s.Len(args, 26)
}

func (s *DecoderTestSuite) TestLargeBulkShouldBeAccepted() {
	value := strings.Repeat("v", 100*1024)

	args, _, err := s.decode("*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$102400\r\n" + value + "\r\n")
	s.Nil(err)
	s.Equal(value, string(args[2]))
}

func (s *DecoderTestSuite) TestNegativeArgumentCountShouldBeMalformed() {
	_, _, err := s.decode("*-2\r\n")
	s.malformed(err, protocol.ErrMultiBulkLength)
}

func (s *DecoderTestSuite) TestNegativeBulkLengthShouldBeMalformed() {
	_, _, err := s.decode("*1\r\n$-5\r\n")
	s.malformed(err, protocol.ErrBulkLength)
}

func (s *DecoderTestSuite) TestMissingTypeCharShouldBeMalformed() {
	_, _, err := s.decode("*2\r\n$3\r\nGET\r\n:1\r\n")

	var malformed *protocol.MalformedError
	s.True(errors.As(err, &malformed))
	s.Equal("Protocol error: Expect TypeChar", err.Error())
}

func (s *DecoderTestSuite) TestTruncatedRequestShouldReturnReaderError() {
	_, _, err := s.decode("*2\r\n$3\r\nGET\r\n")

	var malformed *protocol.MalformedError
	s.False(errors.As(err, &malformed))
	s.True(err == io.EOF || err == io.ErrUnexpectedEOF)
}

func (s *DecoderTestSuite) decode(request string) ([][]byte, bool, error) {
	return protocol.NewDecoder(strings.NewReader(request)).Decode()
}

func (s *DecoderTestSuite) malformed(err error, cause error) {
	var malformed *protocol.MalformedError
	s.Require().True(errors.As(err, &malformed))
	s.Equal(cause, malformed.Err)
	s.True(errors.Is(err, cause))
}

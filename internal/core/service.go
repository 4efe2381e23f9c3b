package core

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cafebazaar/inmemory-keyvalue/internal/protocol"
	"github.com/cafebazaar/inmemory-keyvalue/internal/reply"
	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

const metricsPrefix = "keyvaluestore"

type coreService struct {
	parser    keyvaluestore.Parser
	engine    keyvaluestore.Engine
	metricSet *metrics.Set
}

type Option func(s *coreService)

// WithMetricSet records command metrics on set instead of the global
// VictoriaMetrics registry.
func WithMetricSet(set *metrics.Set) Option {
	return func(s *coreService) {
		s.metricSet = set
	}
}

func New(parser keyvaluestore.Parser,
	engine keyvaluestore.Engine,
	options ...Option) keyvaluestore.Service {

	result := &coreService{
		parser: parser,
		engine: engine,
	}

	for _, option := range options {
		option(result)
	}

	return result
}

// Handle serves the first request framed in request. Trailing zero padding
// is ignored.
func (s *coreService) Handle(request []byte) (keyvaluestore.Command, []byte) {
	decoder := protocol.NewDecoder(bytes.NewReader(bytes.TrimRight(request, "\x00")))

	args, _, err := decoder.Decode()
	if err != nil {
		var malformed *protocol.MalformedError
		if errors.As(err, &malformed) {
			s.counter("decode_errors_total").Inc()
			logrus.WithError(err).Debug("failed to decode request")
			return nil, reply.ErrorReply(err)
		}

		return nil, s.parseFailure(keyvaluestore.ErrInvalidCommand)
	}

	return s.Process(args)
}

func (s *coreService) Process(args [][]byte) (keyvaluestore.Command, []byte) {
	command, err := s.parser.Parse(args)
	if err != nil {
		return nil, s.parseFailure(err)
	}

	startTime := time.Now()
	result := s.engine.Execute(command)

	name := strings.ToLower(command.Name())
	s.counter(fmt.Sprintf(`commands_total{command=%q}`, name)).Inc()
	s.histogram(fmt.Sprintf(`command_duration_seconds{command=%q}`, name)).UpdateDuration(startTime)

	if len(result) > 0 && result[0] == '-' {
		s.counter(fmt.Sprintf(`command_errors_total{command=%q}`, name)).Inc()
		logrus.WithField("command", command.Name()).
			WithField("reply", strings.TrimSpace(string(result))).
			Debug("command failed")
	}

	return command, result
}

func (s *coreService) Close() error {
	return s.engine.Close()
}

func (s *coreService) parseFailure(err error) []byte {
	s.counter("parse_errors_total").Inc()
	logrus.WithError(err).Debug("failed to parse command")

	return reply.ErrorReply(err)
}

func (s *coreService) counter(name string) *metrics.Counter {
	name = metricsPrefix + "_" + name
	if s.metricSet != nil {
		return s.metricSet.GetOrCreateCounter(name)
	}

	return metrics.GetOrCreateCounter(name)
}

func (s *coreService) histogram(name string) *metrics.Histogram {
	name = metricsPrefix + "_" + name
	if s.metricSet != nil {
		return s.metricSet.GetOrCreateHistogram(name)
	}

	return metrics.GetOrCreateHistogram(name)
}

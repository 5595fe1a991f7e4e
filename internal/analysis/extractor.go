package analysis

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Minimum record counts before an extractor will produce a snapshot.
// Finance needs a longer series because its metrics are built on daily
// returns.
const (
	MinPatentRecords  = 10
	MinSocialRecords  = 10
	MinNewsRecords    = 10
	MinFinanceRecords = 20
)

// Option configures an extractor.
type Option func(*settings)

type settings struct {
	now func() time.Time
	log *logrus.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		now: time.Now,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock fixes the extractor's notion of "now". Recency metrics such
// as papers-in-the-last-two-years depend on it; tests pin it for
// reproducible snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithLogger routes extractor progress logs to the given logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *settings) { s.log = log }
}

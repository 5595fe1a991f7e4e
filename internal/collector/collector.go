package collector

import (
	"time"

	"github.com/techscope/hypecycle/pkg/types"
)

// Stats summarises one collection run for a technology and stream.
type Stats struct {
	TechnologyID int64        `json:"technology_id"`
	Stream       types.Stream `json:"stream"`
	TotalFound   int          `json:"total_found"` // Upstream match count, when reported
	Fetched      int          `json:"fetched"`     // Records received from the API
	Saved        int          `json:"saved"`       // Records written to the store
	Pages        int          `json:"pages"`       // Pages or batches processed
}

type settings struct {
	baseURL string
	now     func() time.Time
}

// Option configures a collector.
type Option func(*settings)

// WithBaseURL overrides the upstream base URL. Used in tests to point a
// collector at a local server.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithClock overrides the time source used for lookback windows.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func applyOptions(defaultBaseURL string, opts []Option) settings {
	s := settings{baseURL: defaultBaseURL, now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

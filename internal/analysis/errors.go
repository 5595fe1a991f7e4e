package analysis

import (
	"errors"
	"fmt"

	"github.com/techscope/hypecycle/pkg/types"
)

// ErrNoRecords is returned when an extractor is invoked with an empty
// record set.
var ErrNoRecords = errors.New("no records to analyze")

// InsufficientDataError is returned by an extractor when the record count
// is below the stream-specific minimum. It is always recoverable by the
// caller: collect more data, or report the shortfall.
type InsufficientDataError struct {
	Stream   types.Stream
	Found    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient %s records for analysis: found %d, need at least %d",
		e.Stream, e.Found, e.Required)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ide *InsufficientDataError
	return errors.As(err, &ide)
}

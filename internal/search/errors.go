package search

import (
	"errors"
	"strings"

	"github.com/five82/pricewatch/internal/pricewatch"
)

// ErrSuperseded is reported by a Request whose result arrived after a newer
// request was issued. Its outcome was discarded and never reached State.
var ErrSuperseded = errors.New("request superseded by a newer one")

const (
	// FallbackStartSearch is shown when starting a search fails without a
	// backend message.
	FallbackStartSearch = "failed to start search"

	// FallbackFetchProducts is shown when fetching products fails without a
	// backend message.
	FallbackFetchProducts = "failed to fetch products"
)

// Failure is the error a Request reports after its failure was applied to
// State. Message is exactly what State.Error shows.
type Failure struct {
	Intent  Intent
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Intent.String() + ": " + f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NormalizeError reduces err to a display string: the backend's message when
// the response carried one, otherwise fallback. The backend message is the
// error body's "message" field or, failing that, a string FastAPI "detail"
// field (see pricewatch.APIError). Raw transport errors are never returned.
func NormalizeError(err error, fallback string) string {
	var apiErr *pricewatch.APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
	}
	return fallback
}

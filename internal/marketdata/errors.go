package marketdata

import (
	"context"
	"errors"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// Sentinel errors for the provider error taxonomy. Provider code wraps
// these with %w so callers classify with errors.Is.
var (
	// ErrNotFound: the symbol does not exist upstream. Never retried.
	ErrNotFound = errors.New("symbol not found")
	// ErrRateLimited: the provider throttled the request. Retried and
	// fed back into the adaptive limiter.
	ErrRateLimited = errors.New("rate limited")
	// ErrPermanent: a response the client cannot use regardless of
	// retries, such as a malformed body or an auth failure.
	ErrPermanent = errors.New("permanent provider error")
)

// Classify maps a fetch error to its status. Anything not explicitly
// classified counts as transient: an unknown failure mode gets the
// benefit of a retry rather than being dropped.
func Classify(err error) contracts.FetchStatus {
	switch {
	case err == nil:
		return contracts.FetchOK
	case errors.Is(err, ErrNotFound):
		return contracts.FetchNotFound
	case errors.Is(err, ErrRateLimited):
		return contracts.FetchRateLimited
	case errors.Is(err, ErrPermanent):
		return contracts.FetchPermanentError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return contracts.FetchTransientError
	default:
		return contracts.FetchTransientError
	}
}

package model

import "fmt"

// FetchErrorKind classifies why a single URL could not be crawled.
type FetchErrorKind string

// Fetch error kinds. Per-URL failures are recorded against the run and
// never abort the crawl.
const (
	// KindInvalidURL marks a malformed seed or discovered link.
	KindInvalidURL FetchErrorKind = "invalid_url"

	// KindFetchTimeout marks a fetch that exceeded its per-fetch timeout.
	KindFetchTimeout FetchErrorKind = "fetch_timeout"

	// KindFetchFailed marks a network or protocol failure, including
	// non-success HTTP status codes.
	KindFetchFailed FetchErrorKind = "fetch_failed"
)

// FetchError is a classified failure for one URL.
// It wraps the underlying cause so callers can still use errors.Is/As
// against transport errors while branching on Kind for crawl policy.
type FetchError struct {
	// URL is the address the failure was recorded against.
	URL string `json:"url"`

	// Kind classifies the failure.
	Kind FetchErrorKind `json:"kind"`

	// Err is the underlying cause. Excluded from JSON; Message carries
	// the serializable form.
	Err error `json:"-"`

	// Message is the human-readable cause, kept for serialization.
	Message string `json:"message,omitempty"`
}

// NewFetchError creates a FetchError for the given URL and kind.
func NewFetchError(url string, kind FetchErrorKind, err error) *FetchError {
	fe := &FetchError{URL: url, Kind: kind, Err: err}
	if err != nil {
		fe.Message = err.Error()
	}
	return fe
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.URL, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.URL)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}

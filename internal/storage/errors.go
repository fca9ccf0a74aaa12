package storage

import "errors"

// ErrMalformedURL is returned when a URL cannot be parsed into segments.
// It is a reporting error, not a storage failure: callers may warn and
// carry on.
var ErrMalformedURL = errors.New("malformed URL")

// ErrNoMatch is returned by BestMatch when a pattern resolves to zero
// candidates. It is an expected outcome, distinct from storage failures.
var ErrNoMatch = errors.New("no matching URL in history")

package fetch

import "fmt"

// NetworkError covers timeouts, connection failures and non-2xx statuses.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError covers malformed or unexpected response shapes.
type ParseError struct {
	Metric string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.Metric, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

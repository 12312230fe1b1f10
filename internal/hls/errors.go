package hls

import "fmt"

// FetchError reports a failed retrieval: a transport error or an HTTP
// status outside 2xx. Fetch errors are transient; callers retry them.
type FetchError struct {
	URL    string
	Status int // 0 if the request never completed
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed playlist on an otherwise successful
// response. Kept distinct from FetchError because a malformed playlist is
// unlikely to self-heal quickly, so callers may back off differently.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

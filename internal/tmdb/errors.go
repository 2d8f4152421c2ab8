package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the catalog has no record for the request.
	ErrNotFound = errors.New("tmdb: not found")
	// ErrInvalidArgument is returned before any request is issued.
	ErrInvalidArgument = errors.New("tmdb: invalid argument")
)

// NetworkError reports a transport failure or a non-success HTTP status.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tmdb: %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("tmdb: request %s failed: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) match upstream 404 responses.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ParseError reports a response body that is not the expected JSON shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tmdb: malformed response: %v", e.Err)
	}
	return fmt.Sprintf("tmdb: malformed response from %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err came from talking to the catalog, as opposed
// to a caller mistake. Both kinds collapse to the same user-facing message.
func IsUpstream(err error) bool {
	var netErr *NetworkError
	var parseErr *ParseError
	return errors.As(err, &netErr) || errors.As(err, &parseErr)
}

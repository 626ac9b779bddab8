package uploader

import (
	"fmt"
	"net/http"
)

// TransportError means the document never produced a response: the file
// could not be read or the request failed in flight.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the server answered with a body that is not usable JSON.
type ParseError struct {
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid response (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ServerError is a failure reported by the server, either through the error
// field of the payload or through a non-2xx status.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded with HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return e.Message
}

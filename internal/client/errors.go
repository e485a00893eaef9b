package client

import (
	"errors"
	"fmt"
)

var ErrMalformedResponse = errors.New("malformed product api response")

// TransportError reports a round trip that never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s products: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx answer from the product API.
type HTTPStatusError struct {
	Op     string
	Code   int
	Status string
}

func (e *HTTPStatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s products: http status %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s products: http status %d", e.Op, e.Code)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}

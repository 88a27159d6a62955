package fhir

import (
	"errors"
	"fmt"
	"net"
)

// ResponseError is returned when the FHIR server answered with a non-2xx
// status. The raw body is kept so the caller can extract an
// OperationOutcome from it.
type ResponseError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("FHIR server returned status %d for %s", e.StatusCode, e.URL)
}

// TransportError is returned when the exchange failed before an HTTP status
// was obtained: connection refused, DNS failure, or timeout.
type TransportError struct {
	BaseURL string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to FHIR server at %s failed: %v", e.BaseURL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the underlying failure was a timeout rather
// than a connection problem.
func (e *TransportError) IsTimeout() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

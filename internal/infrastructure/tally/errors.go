package tally

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// Cause classifies why a request to Tally failed
type Cause string

const (
	CauseConnectionRefused Cause = "connection_refused"
	CauseTimeout           Cause = "timeout"
	CauseRemoteStatus      Cause = "remote_status"
	CauseEmptyResponse     Cause = "empty_response"
	CauseTransport         Cause = "transport"
)

// ErrEmptyResponse is returned when Tally answers with no body
var ErrEmptyResponse = errors.New("empty response from Tally")

// TransportError is any failure to obtain an export from Tally
type TransportError struct {
	Cause      Cause
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Cause == CauseRemoteStatus {
		return fmt.Sprintf("tally request failed: remote status %d", e.StatusCode)
	}
	return fmt.Sprintf("tally request failed (%s): %v", e.Cause, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Code is the short error code reported to API callers
func (e *TransportError) Code() string {
	switch e.Cause {
	case CauseConnectionRefused:
		return "ECONNREFUSED"
	case CauseTimeout:
		return "ETIMEDOUT"
	case CauseRemoteStatus:
		return fmt.Sprintf("HTTP_%d", e.StatusCode)
	case CauseEmptyResponse:
		return "EMPTY_RESPONSE"
	}
	return "TRANSPORT_ERROR"
}

// Hint is an operator-facing remediation for the cause
func (e *TransportError) Hint(company string) string {
	switch e.Cause {
	case CauseConnectionRefused:
		return fmt.Sprintf("Check that Tally is running, the ODBC/XML server is enabled (F12 > Configure > port 9000) and company %q is open", company)
	case CauseTimeout:
		return "Tally did not answer in time; large companies may need a longer export timeout"
	case CauseRemoteStatus:
		return "Tally rejected the request; check the company name and the report request"
	case CauseEmptyResponse:
		return "Tally returned no data; make sure the company is loaded"
	}
	return "Check network connectivity to the Tally host"
}

// ClassifyError wraps err in a TransportError with its cause
func ClassifyError(err error) *TransportError {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return &TransportError{Cause: causeOf(err), Err: err}
}

func causeOf(err error) Cause {
	if errors.Is(err, ErrEmptyResponse) {
		return CauseEmptyResponse
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return CauseConnectionRefused
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CauseTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CauseTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return CauseTimeout
	}
	return CauseTransport
}

// NewStatusError reports a non-success HTTP status from Tally or the bridge
func NewStatusError(status int) *TransportError {
	return &TransportError{
		Cause:      CauseRemoteStatus,
		StatusCode: status,
		Err:        fmt.Errorf("unexpected status %d", status),
	}
}

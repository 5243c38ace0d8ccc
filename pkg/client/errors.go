package client

import (
	"fmt"
	"net/http"
)

// ErrorClass represents a classification of GitHub responses and failures.
type ErrorClass string

const (
	// ErrorClassRateLimit represents 403 and 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassUnauthorized represents 401 responses.
	ErrorClassUnauthorized ErrorClass = "unauthorized"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassUpstream represents 5xx responses.
	ErrorClassUpstream ErrorClass = "upstream"

	// ErrorClassClient represents other 4xx responses.
	ErrorClassClient ErrorClass = "client"
)

// ClassifyStatus returns the class for a non-success status. It returns ""
// for 2xx and 304.
func ClassifyStatus(status int) ErrorClass {
	switch {
	case status >= 200 && status < 300, status == http.StatusNotModified:
		return ""
	case status == http.StatusForbidden, status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status == http.StatusUnauthorized:
		return ErrorClassUnauthorized
	case status >= 500:
		return ErrorClassUpstream
	default:
		return ErrorClassClient
	}
}

// TransportError is returned when no HTTP response was obtained.
type TransportError struct {
	Op  string
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("github %s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Package errors provides structured errors that map onto HTTP responses.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeRequestTooLarge  Code = "REQUEST_TOO_LARGE"
	CodeNotFound         Code = "NOT_FOUND"

	// Provider errors
	CodeUpstreamRateLimited Code = "UPSTREAM_RATE_LIMITED"
	CodeUpstreamFailure     Code = "UPSTREAM_FAILURE"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"

	// Internal errors
	CodeInternal Code = "INTERNAL"
)

// HTTPStatus maps the code onto the status a handler should answer with.
// Upstream failures carry their own status and are not mapped here.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstreamRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

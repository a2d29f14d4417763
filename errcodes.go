package goPortal

import (
	"errors"
	"net/http"
)

// ErrorCode pairs the stable numeric code for a failure with the HTTP status
// the boundary layer should answer with. Codes are part of the external
// contract and must never be renumbered.
type ErrorCode struct {
	Code       int
	HTTPStatus int
}

var errorCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrUnauthenticated, ErrorCode{Code: 1001, HTTPStatus: http.StatusUnauthorized}},
	{ErrForbidden, ErrorCode{Code: 1002, HTTPStatus: http.StatusForbidden}},
	{ErrInvalidArgument, ErrorCode{Code: 1003, HTTPStatus: http.StatusBadRequest}},
	{ErrUserNotFound, ErrorCode{Code: 1004, HTTPStatus: http.StatusNotFound}},

	{ErrActionTicketInvalid, ErrorCode{Code: 2101, HTTPStatus: http.StatusUnauthorized}},
	{ErrActionTicketExpired, ErrorCode{Code: 2102, HTTPStatus: http.StatusUnauthorized}},
	{ErrActionTicketReplayed, ErrorCode{Code: 2103, HTTPStatus: http.StatusUnauthorized}},

	{ErrSsoTicketInvalid, ErrorCode{Code: 2201, HTTPStatus: http.StatusUnauthorized}},
	{ErrSsoTicketClientMismatch, ErrorCode{Code: 2202, HTTPStatus: http.StatusUnauthorized}},
	{ErrSsoTicketRedirectUriMismatch, ErrorCode{Code: 2203, HTTPStatus: http.StatusUnauthorized}},
	{ErrSsoTicketStateMismatch, ErrorCode{Code: 2204, HTTPStatus: http.StatusUnauthorized}},
	{ErrSsoTicketRateLimited, ErrorCode{Code: 2205, HTTPStatus: http.StatusTooManyRequests}},

	{ErrPtkInvalid, ErrorCode{Code: 2301, HTTPStatus: http.StatusUnauthorized}},
	{ErrPtkExpired, ErrorCode{Code: 2302, HTTPStatus: http.StatusUnauthorized}},
	{ErrPtkScopeMismatch, ErrorCode{Code: 2303, HTTPStatus: http.StatusForbidden}},
	{ErrPtkSessionTooOld, ErrorCode{Code: 2304, HTTPStatus: http.StatusUnauthorized}},

	{ErrDecryptionFailed, ErrorCode{Code: 2401, HTTPStatus: http.StatusUnauthorized}},
	{ErrPasswordPolicy, ErrorCode{Code: 2402, HTTPStatus: http.StatusBadRequest}},

	{ErrServiceTokenInvalid, ErrorCode{Code: 2501, HTTPStatus: http.StatusUnauthorized}},

	{ErrEventInvalid, ErrorCode{Code: 2601, HTTPStatus: http.StatusBadRequest}},
}

// internalErrorCode is the total-mapping default: any error not matched above,
// including every *Unavailable sentinel, reports as an internal fault.
var internalErrorCode = ErrorCode{Code: 5000, HTTPStatus: http.StatusInternalServerError}

// CodeFor maps any error returned by the engine to its stable numeric code
// and HTTP-equivalent status. The mapping is total: unrecognized errors map
// to the internal-error code.
func CodeFor(err error) ErrorCode {
	if err == nil {
		return ErrorCode{Code: 0, HTTPStatus: http.StatusOK}
	}
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return internalErrorCode
}

// Retryable reports whether the caller may retry the failed call with
// backoff. Only store-connectivity failures qualify; every ticket and token
// failure is terminal for the current attempt.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrActionTicketUnavailable),
		errors.Is(err, ErrSsoTicketUnavailable),
		errors.Is(err, ErrPtkUnavailable),
		errors.Is(err, ErrTokenVersionUnavailable),
		errors.Is(err, ErrEventUnavailable):
		return true
	}
	return false
}

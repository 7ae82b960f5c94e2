// Package httputil translates domain errors into HTTP responses. The mapping
// is the single place where error codes become status codes; handlers never
// pick statuses for failures themselves.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "dojoledger/pkg/domain-errors"
)

// statusFor maps domain error codes onto HTTP statuses. Transient ledger
// conditions (unavailable, timeout) surface as 503 with a retry hint so
// clients know the outcome may be indeterminate rather than failed.
func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidArgument:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnavailable, dErrors.CodeTimeout:
		return http.StatusServiceUnavailable
	case dErrors.CodeRejected, dErrors.CodeProtocolViolation,
		dErrors.CodeCredentialUnavailable, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes a JSON error body for err. Internal failures omit the
// description so upstream details never leak to clients; retryable statuses
// carry a Retry-After hint.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	if code == "" {
		code = dErrors.CodeInternal
	}
	status := statusFor(code)

	body := map[string]string{"error": string(code)}
	if status != http.StatusInternalServerError {
		body["error_description"] = dErrors.MessageOf(err)
	}

	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON writes a success payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "vcproof/pkg/domain-errors"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError centralizes domain error translation to HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	status, body := ErrorBody(err)
	WriteJSON(w, status, body)
}

// ErrorBody returns the status and body WriteError would send for err. Batch
// endpoints use it to embed per-item errors.
func ErrorBody(err error) (int, ErrorResponse) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{
			Error:       DomainCodeToHTTPCode(domainErr.Code),
			Description: domainErr.Message,
		}
	}
	// Unknown errors never expose their message.
	return http.StatusInternalServerError, ErrorResponse{Error: DomainCodeToHTTPCode(dErrors.CodeInternal)}
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
//
// Trust failures on the input (malformed credential, bad key, unsupported
// algorithm, bad predicate) are client errors. A bad signature is 401. A
// credential that verifies but does not satisfy the request is 422.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeMalformedCredential, dErrors.CodeInvalidIssuerKey,
		dErrors.CodeUnsupportedAlgorithm, dErrors.CodeInvalidPredicate:
		return http.StatusBadRequest
	case dErrors.CodeSignatureInvalid:
		return http.StatusUnauthorized
	case dErrors.CodePredicateNotSatisfied, dErrors.CodeSubjectMismatch, dErrors.CodeFieldMismatch:
		return http.StatusUnprocessableEntity
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to HTTP error codes (for JSON response).
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeMalformedCredential, dErrors.CodeInvalidIssuerKey, dErrors.CodeUnsupportedAlgorithm,
		dErrors.CodeSignatureInvalid, dErrors.CodeInvalidPredicate, dErrors.CodePredicateNotSatisfied,
		dErrors.CodeSubjectMismatch, dErrors.CodeFieldMismatch:
		// verification codes are part of the public API
		return string(code)
	case dErrors.CodeTimeout:
		return "timeout"
	default:
		return "internal_error"
	}
}

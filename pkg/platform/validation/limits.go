// Package validation holds the size limits enforced at the API boundary and
// small helpers that turn a violation into a validation error.
package validation

import (
	"fmt"

	dErrors "vcproof/pkg/domain-errors"
)

const (
	// MaxBodySize caps a request body at 4 MiB, enough for a full batch of
	// maximum-length credentials.
	MaxBodySize = 4 << 20

	MaxPredicates = 64
	MaxBatchSize  = 32

	// MaxCredentialLength bounds a compact JWT credential.
	MaxCredentialLength = 64 * 1024
	// MaxIssuerKeyLength bounds an issuer key in hex or did:key form.
	MaxIssuerKeyLength   = 256
	MaxFieldNameLength   = 256
	MaxReturnValueLength = 512
)

// MaxLen fails when value is longer than max bytes. Every value is checked
// and the first violation names its field.
func MaxLen(field string, max int, values ...string) error {
	for _, v := range values {
		if len(v) > max {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", field, max))
		}
	}
	return nil
}

// MaxCount fails when a list holds more than max elements.
func MaxCount(field string, n, max int) error {
	if n <= max {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", field, max))
}

// Required fails on an empty value.
func Required(field, value string) error {
	if value != "" {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, field+" is required")
}

// First returns the first non-nil error. Callers list size checks before
// presence checks so oversized input is reported as such.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Package match binds two verified credentials to the same subject and
// attribute value.
package match

import (
	"fmt"

	"vcproof/internal/credential/vc"
	dErrors "vcproof/pkg/domain-errors"
)

// Subject checks that a and b are about the same subject and carry deeply
// equal values for field. It returns the shared subject.
//
// The subject is compared first. An attribute missing on either side is a
// field mismatch.
//
// Errors: CodeSubjectMismatch, CodeFieldMismatch. Neither message includes
// the compared values.
func Subject(a, b vc.View, field string) (string, error) {
	if a.Subject() != b.Subject() {
		return "", dErrors.New(dErrors.CodeSubjectMismatch, "credentials are about different subjects")
	}

	left, ok := a.Attribute(field)
	if !ok {
		return "", dErrors.New(dErrors.CodeFieldMismatch, fmt.Sprintf("first credential has no %q attribute", field))
	}
	right, ok := b.Attribute(field)
	if !ok {
		return "", dErrors.New(dErrors.CodeFieldMismatch, fmt.Sprintf("second credential has no %q attribute", field))
	}
	if !left.Equal(right) {
		return "", dErrors.New(dErrors.CodeFieldMismatch, fmt.Sprintf("credentials disagree on %q", field))
	}
	return a.Subject(), nil
}

// Fields is Subject over several attributes, checked in the given order.
// An empty field list only binds the subject.
func Fields(a, b vc.View, fields []string) (string, error) {
	if a.Subject() != b.Subject() {
		return "", dErrors.New(dErrors.CodeSubjectMismatch, "credentials are about different subjects")
	}
	for _, field := range fields {
		if _, err := Subject(a, b, field); err != nil {
			return "", err
		}
	}
	return a.Subject(), nil
}

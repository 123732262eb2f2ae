// Package validation maps raw pincode input to a verdict and the message shown
// under the input field.
package validation

import (
	"pincheck/internal/pincode/models"
	"pincheck/pkg/domain"
	dErrors "pincheck/pkg/domain-errors"
)

// Validate returns the verdict for raw. It applies the same rules as
// domain.ParsePincode, so a valid verdict always parses. It is pure and safe
// for concurrent use.
func Validate(raw string) models.ValidationResult {
	if _, err := domain.ParsePincode(raw); err != nil {
		return models.ValidationResult{IsValid: false, Message: dErrors.MessageOf(err, domain.MsgDigitsOnly)}
	}
	return models.ValidationResult{IsValid: true}
}

package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"

	dErrors "pincheck/pkg/domain-errors"
)

// PincodeLength is the number of digits in an Indian postal code.
const PincodeLength = 6

// Messages shown next to the pincode field. The wording matches what users of the
// widget have always seen.
const (
	MsgDigitsOnly = "The pincode must comprise only numerical digits"
	MsgSixDigits  = "The pincode must comprise 6 numerical digits."
)

// pincodeRules is evaluated left to right; the first failing tag decides the message.
const pincodeRules = "digits,len=6"

var pincodeValidator = newPincodeValidator()

func newPincodeValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return IsDigits(fl.Field().String())
	})
	return v
}

// Pincode is a 6-digit postal code that has passed validation.
// Obtain one through ParsePincode; lookups only accept this type.
type Pincode string

// ParsePincode validates s and returns it as a Pincode.
// The digits-only rule is checked before the length rule, so "abcde" reports
// MsgDigitsOnly rather than MsgSixDigits.
func ParsePincode(s string) (Pincode, error) {
	if err := pincodeValidator.Var(s, pincodeRules); err != nil {
		return "", dErrors.New(dErrors.CodeValidation, pincodeMessage(err))
	}
	return Pincode(s), nil
}

func pincodeMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 && validationErrs[0].ActualTag() == "len" {
		return MsgSixDigits
	}
	return MsgDigitsOnly
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (p Pincode) String() string { return string(p) }

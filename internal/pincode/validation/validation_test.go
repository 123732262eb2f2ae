package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"pincheck/internal/pincode/models"
	"pincheck/pkg/domain"
)

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) TestDigitsOnly() {
	for _, raw := range []string{"", "abc123", "56000a", "5600 1", "+56000", "5.6001"} {
		s.Run(raw, func() {
			got := Validate(raw)
			s.False(got.IsValid)
			s.Equal(domain.MsgDigitsOnly, got.Message)
		})
	}
}

func (s *ValidationSuite) TestLength() {
	for _, raw := range []string{"1", "12345", "1234567", strings.Repeat("9", 12)} {
		s.Run(raw, func() {
			got := Validate(raw)
			s.False(got.IsValid)
			s.Equal(domain.MsgSixDigits, got.Message)
		})
	}
}

func (s *ValidationSuite) TestValid() {
	got := Validate("560001")
	s.Equal(models.ValidationResult{IsValid: true, Message: ""}, got)
}

func (s *ValidationSuite) TestDigitsRuleTakesPrecedence() {
	s.Run("short non-numeric", func() {
		s.Equal(domain.MsgDigitsOnly, Validate("abcde").Message)
	})
	s.Run("long non-numeric", func() {
		s.Equal(domain.MsgDigitsOnly, Validate("abcdefgh").Message)
	})
}

func (s *ValidationSuite) TestIdempotent() {
	for _, raw := range []string{"", "abc", "12345", "560001"} {
		first := Validate(raw)
		for i := 0; i < 5; i++ {
			s.Equal(first, Validate(raw))
		}
	}
}

func TestValidateAgreesWithParsePincode(t *testing.T) {
	for _, raw := range []string{"", "abc123", "12345", "1234567", "560001", "abcde"} {
		got := Validate(raw)
		_, err := domain.ParsePincode(raw)
		assert.Equal(t, err == nil, got.IsValid, raw)
		if err != nil {
			assert.Equal(t, err.Error(), got.Message, raw)
		}
	}
}

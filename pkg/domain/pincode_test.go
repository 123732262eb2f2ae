package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pincheck/pkg/domain-errors"
)

func TestParsePincode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "empty", input: "", wantMsg: MsgDigitsOnly},
		{name: "letters and digits", input: "abc123", wantMsg: MsgDigitsOnly},
		{name: "letters with wrong length", input: "abcde", wantMsg: MsgDigitsOnly},
		{name: "leading space", input: " 56000", wantMsg: MsgDigitsOnly},
		{name: "decimal point", input: "5600.1", wantMsg: MsgDigitsOnly},
		{name: "devanagari digits", input: "५६०००१", wantMsg: MsgDigitsOnly},
		{name: "too short", input: "12345", wantMsg: MsgSixDigits},
		{name: "too long", input: "1234567", wantMsg: MsgSixDigits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePincode(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}

	t.Run("accepts six digits", func(t *testing.T) {
		pin, err := ParsePincode("560001")
		require.NoError(t, err)
		assert.Equal(t, Pincode("560001"), pin)
		assert.Equal(t, "560001", pin.String())
	})
}

func TestIsDigits(t *testing.T) {
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12a"))
	assert.False(t, IsDigits("١٢٣")) // non-ASCII digits
	assert.True(t, IsDigits("000000"))
}

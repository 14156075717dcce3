package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneValidator(t *testing.T) {
	validator := NewPhoneValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0888123456", "0888123456", "Standard format"},
		{"088 812 3456", "0888123456", "With spaces"},
		{"088-812-3456", "0888123456", "With dashes"},
		{"088.812.3456", "0888123456", "With dots"},
		{"(088) 812 3456", "0888123456", "With parentheses"},
		{"0871234567", "0871234567", "A1 087"},
		{"0891234567", "0891234567", "Yettel 089"},
		{"0981234567", "0981234567", "Yettel 098"},
		{"0991234567", "0991234567", "Vivacom 099"},
		{"+359888123456", "0888123456", "With country code and plus"},
		{"00359888123456", "0888123456", "With international prefix"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty string"},
		{"123", ErrInvalidLength, "Too short"},
		{"08881234567", ErrInvalidLength, "Too long"},
		{"0861234567", ErrInvalidPrefix, "Invalid prefix 086"},
		{"0971234567", ErrInvalidPrefix, "Invalid prefix 097"},
		{"0771234567", ErrInvalidPrefix, "Invalid prefix 077"},
		{"088812345a", ErrInvalidFormat, "Contains letters"},
		{"088-812-345a", ErrInvalidFormat, "Contains letters with dashes"},
		{"088 812 345!", ErrInvalidFormat, "Contains special characters"},
		{"1234567890", ErrInvalidPrefix, "Valid length but invalid prefix"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Error(t, err)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestSanitize(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"0888123456", "0888123456", "Already clean"},
		{"088 812 3456", "0888123456", "With spaces"},
		{"088-812-3456", "0888123456", "With dashes"},
		{"088.812.3456", "0888123456", "With dots"},
		{"(088) 812 3456", "0888123456", "With parentheses"},
		{"+359888123456", "0888123456", "With country code and plus"},
		{"00359888123456", "0888123456", "With international prefix"},
		{"088-812-3456  ", "0888123456", "With trailing spaces"},
		{"  088-812-3456", "0888123456", "With leading spaces"},
		{"088 - 812 - 3456", "0888123456", "Multiple separators"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := validator.Sanitize(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestIsValidPrefix(t *testing.T) {
	validator := NewPhoneValidator()

	assert.True(t, validator.IsValidPrefix("0888123456"))
	assert.True(t, validator.IsValidPrefix("0981234567"))
	assert.False(t, validator.IsValidPrefix("0861234567"))
	assert.False(t, validator.IsValidPrefix("1234567890"))
}

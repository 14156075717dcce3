package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates phone number doesn't start with a valid Bulgarian mobile prefix
	ErrInvalidPrefix = errors.New("phone number must start with 087, 088, 089, 098, or 099")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// validPrefixes contains all valid Bulgarian mobile operator prefixes
var validPrefixes = []string{
	"087", // A1
	"088", // Vivacom
	"089", // Yettel
	"098", // Yettel
	"099", // Vivacom
}

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles phone number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Bulgarian mobile number.
// Accepts format: 0888123456, 088 812 3456, 088-812-3456, or +359888123456.
// Returns sanitized phone number (digits only, national format) and error if invalid.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	if !v.IsValidPrefix(sanitized) {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// Sanitize removes separators and normalizes the +359 country prefix to
// the national 0-leading format
func (v *PhoneValidator) Sanitize(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	if strings.HasPrefix(cleaned, "+359") {
		cleaned = "0" + cleaned[4:]
	} else if strings.HasPrefix(cleaned, "00359") {
		cleaned = "0" + cleaned[5:]
	}

	return cleaned
}

// IsValidPrefix checks if the number starts with a known operator prefix
func (v *PhoneValidator) IsValidPrefix(phone string) bool {
	for _, prefix := range validPrefixes {
		if strings.HasPrefix(phone, prefix) {
			return true
		}
	}
	return false
}

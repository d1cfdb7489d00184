package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidInput is the parent of every request validation error.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPhone is returned when the phone does not have exactly 10 digits.
	ErrInvalidPhone = fmt.Errorf("%w: phone must have exactly 10 digits", ErrInvalidInput)
	// ErrInvalidOrderCode is returned when the order code is not ST- followed by 3 to 9 digits.
	ErrInvalidOrderCode = fmt.Errorf("%w: order code must match ST-XXX", ErrInvalidInput)
	// ErrConfigurationMissing is returned before any I/O when store credentials are absent.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrUpstreamUnavailable is returned when the order store query fails.
	ErrUpstreamUnavailable = errors.New("order store unavailable")
)

var (
	nonDigits        = regexp.MustCompile(`\D`)
	phonePattern     = regexp.MustCompile(`^\d{10}$`)
	orderCodePattern = regexp.MustCompile(`^ST-\d{3,9}$`)
)

// NormalizePhone keeps the last 10 digits of raw. Shorter inputs stay short.
func NormalizePhone(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// NormalizeOrderCode trims and upper-cases raw.
func NormalizeOrderCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateRequest checks already normalized lookup keys.
func ValidateRequest(phone, orderCode string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	if !orderCodePattern.MatchString(orderCode) {
		return ErrInvalidOrderCode
	}
	return nil
}

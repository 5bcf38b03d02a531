// Package card implements the payer-screen card input: the as-you-type
// formatting transforms and the submit-time field validation.
package card

import (
	"strconv"
	"strings"
	"time"
)

// Field keys used in validation results.
const (
	FieldNumber = "card_number"
	FieldExpiry = "expiry"
	FieldCVV    = "cvv"
	FieldName   = "name"
)

// Validation messages.
const (
	msgInvalidNumber = "Invalid card number"
	msgInvalidDate   = "Invalid date"
	msgInvalidMonth  = "Invalid month"
	msgExpired       = "Card expired"
	msgInvalidCVV    = "Invalid CVV"
	msgNameRequired  = "Name required"
)

func stripNonDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FormatNumber groups the digits of a card number in blocks of 4 separated
// by spaces. While fewer than two groups exist the raw input is returned
// unchanged, so early typing is not reformatted.
func FormatNumber(value string) string {
	digits := stripNonDigits(value)
	var parts []string
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		parts = append(parts, digits[i:end])
	}
	if len(parts) > 1 {
		return strings.Join(parts, " ")
	}
	return value
}

// FormatExpiry renders digits as MM/YY once at least two digits are typed.
func FormatExpiry(value string) string {
	digits := stripNonDigits(value)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// FormatCVV strips everything but digits.
func FormatCVV(value string) string {
	return stripNonDigits(value)
}

// Input is one submission of the card form. RequireName mirrors the
// three-field variant of the payer screen, which has no cardholder field.
type Input struct {
	Number      string
	Expiry      string
	CVV         string
	Name        string
	RequireName bool
}

// Validate runs every field check and returns a field→message map.
// An empty map means the submission is valid. Checks are independent:
// one failing field never masks another.
func Validate(in Input, now time.Time) map[string]string {
	errs := make(map[string]string)

	if len(stripNonDigits(in.Number)) < 16 {
		errs[FieldNumber] = msgInvalidNumber
	}

	if msg := validateExpiry(in.Expiry, now); msg != "" {
		errs[FieldExpiry] = msg
	}

	if len(stripNonDigits(in.CVV)) < 3 {
		errs[FieldCVV] = msgInvalidCVV
	}

	if in.RequireName && strings.TrimSpace(in.Name) == "" {
		errs[FieldName] = msgNameRequired
	}

	return errs
}

// validateExpiry expects MM/YY and compares against now using two-digit
// years (year mod 100, as printed on the card face).
func validateExpiry(expiry string, now time.Time) string {
	if len(expiry) != 5 {
		return msgInvalidDate
	}
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return msgInvalidDate
	}
	m, errM := strconv.Atoi(parts[0])
	y, errY := strconv.Atoi(parts[1])
	if errM != nil || errY != nil {
		return msgInvalidDate
	}
	if m < 1 || m > 12 {
		return msgInvalidMonth
	}
	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	if y < currentYear || (y == currentYear && m < currentMonth) {
		return msgExpired
	}
	return ""
}

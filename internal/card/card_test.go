package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Fixed "now" for expiry checks: June 2024, so cards expire before 06/24.
var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4242424242424242", "4242 4242 4242 4242"},
		{"42424242", "4242 4242"},
		{"4242-4242-4242-4242", "4242 4242 4242 4242"},
		// Fewer than two groups: raw input preserved during early typing.
		{"4242", "4242"},
		{"42", "42"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "input %q", tt.in)
	}
}

func TestFormatNumber_Idempotent(t *testing.T) {
	formatted := FormatNumber("4242424242424242")
	assert.Equal(t, formatted, FormatNumber(formatted))
}

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1"},
		{"12", "12/"},
		{"122", "12/2"},
		{"1225", "12/25"},
		{"12/25", "12/25"},
		{"12253", "12/25"}, // extra digits dropped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatExpiry(tt.in), "input %q", tt.in)
	}
}

func TestFormatCVV(t *testing.T) {
	assert.Equal(t, "123", FormatCVV("1a2b3c"))
	assert.Equal(t, "", FormatCVV("abc"))
}

func validInput() Input {
	return Input{
		Number:      "4242 4242 4242 4242",
		Expiry:      "12/30",
		CVV:         "123",
		Name:        "JOHN DOE",
		RequireName: true,
	}
}

func TestValidate_Valid(t *testing.T) {
	errs := Validate(validInput(), testNow)
	assert.Empty(t, errs)
}

func TestValidate_ShortNumber(t *testing.T) {
	in := validInput()
	in.Number = "4242 4242 4242"
	errs := Validate(in, testNow)
	assert.Equal(t, "Invalid card number", errs[FieldNumber])
	assert.Len(t, errs, 1)
}

func TestValidate_Expiry(t *testing.T) {
	tests := []struct {
		expiry string
		want   string
	}{
		{"12/30", ""},
		{"13/25", "Invalid month"},
		{"00/25", "Invalid month"},
		{"01/20", "Card expired"},
		{"05/24", "Card expired"}, // month before testNow in the same year
		{"06/24", ""},             // current month passes
		{"1/25", "Invalid date"},
		{"12-25", "Invalid date"},
		{"", "Invalid date"},
	}
	for _, tt := range tests {
		in := validInput()
		in.Expiry = tt.expiry
		errs := Validate(in, testNow)
		if tt.want == "" {
			assert.NotContains(t, errs, FieldExpiry, "expiry %q", tt.expiry)
		} else {
			assert.Equal(t, tt.want, errs[FieldExpiry], "expiry %q", tt.expiry)
		}
	}
}

func TestValidate_CVVAndName(t *testing.T) {
	in := validInput()
	in.CVV = "12"
	in.Name = "   "
	errs := Validate(in, testNow)
	assert.Equal(t, "Invalid CVV", errs[FieldCVV])
	assert.Equal(t, "Name required", errs[FieldName])
}

func TestValidate_NameOptional(t *testing.T) {
	in := validInput()
	in.Name = ""
	in.RequireName = false
	assert.Empty(t, Validate(in, testNow))
}

func TestValidate_ErrorsAreCumulative(t *testing.T) {
	errs := Validate(Input{RequireName: true}, testNow)
	assert.Len(t, errs, 4)
	assert.Equal(t, "Invalid card number", errs[FieldNumber])
	assert.Equal(t, "Invalid date", errs[FieldExpiry])
	assert.Equal(t, "Invalid CVV", errs[FieldCVV])
	assert.Equal(t, "Name required", errs[FieldName])
}

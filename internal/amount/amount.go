// Package amount implements the merchant keypad: right-to-left cent entry
// where every digit shifts the running total left and backspace drops the
// last digit.
package amount

import (
	"errors"

	"github.com/shopspring/decimal"
)

// maxCents caps keypad input; pushing past it is ignored, matching the
// keypad's fixed display width.
const maxCents = 9_999_999_999

var ErrInvalidKey = errors.New("amount: key must be a digit or backspace")

// Pending is the accumulated cent total. The zero value is a cleared keypad.
type Pending struct {
	cents int64
}

func FromCents(cents int64) Pending {
	if cents < 0 {
		cents = 0
	}
	return Pending{cents: cents}
}

func (p Pending) Cents() int64 { return p.cents }

func (p Pending) IsZero() bool { return p.cents == 0 }

// PushDigit appends a digit key: total = total*10 + digit.
func (p Pending) PushDigit(key byte) (Pending, error) {
	if key < '0' || key > '9' {
		return p, ErrInvalidKey
	}
	next := p.cents*10 + int64(key-'0')
	if next > maxCents {
		return p, nil
	}
	return Pending{cents: next}, nil
}

// Backspace drops the last entered digit.
func (p Pending) Backspace() Pending {
	return Pending{cents: p.cents / 10}
}

// Press applies a named key: "0".."9" or "backspace".
func (p Pending) Press(key string) (Pending, error) {
	if key == "backspace" {
		return p.Backspace(), nil
	}
	if len(key) != 1 {
		return p, ErrInvalidKey
	}
	return p.PushDigit(key[0])
}

// Amount returns the total as a decimal value in major units.
func (p Pending) Amount() decimal.Decimal {
	return decimal.New(p.cents, -2)
}

// Display returns the total formatted to two decimal places, e.g. "1.25".
func (p Pending) Display() string {
	return p.Amount().StringFixed(2)
}

package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, p Pending, keys string) Pending {
	t.Helper()
	for i := 0; i < len(keys); i++ {
		next, err := p.PushDigit(keys[i])
		require.NoError(t, err)
		p = next
	}
	return p
}

func TestPending_DigitSequence(t *testing.T) {
	tests := []struct {
		keys    string
		cents   int64
		display string
	}{
		{"", 0, "0.00"},
		{"0", 0, "0.00"},
		{"125", 125, "1.25"},
		{"500", 500, "5.00"},
		{"007", 7, "0.07"},
		{"123456", 123456, "1234.56"},
	}

	for _, tt := range tests {
		p := press(t, Pending{}, tt.keys)
		assert.Equal(t, tt.cents, p.Cents(), "keys %q", tt.keys)
		assert.Equal(t, tt.display, p.Display(), "keys %q", tt.keys)
	}
}

func TestPending_Backspace(t *testing.T) {
	p := press(t, Pending{}, "125")
	p = p.Backspace()
	assert.Equal(t, int64(12), p.Cents())

	p = p.Backspace()
	p = p.Backspace()
	assert.Equal(t, int64(0), p.Cents())

	// Backspace on an empty keypad stays at zero.
	p = p.Backspace()
	assert.Equal(t, int64(0), p.Cents())
	assert.True(t, p.IsZero())
}

func TestPending_Press(t *testing.T) {
	p, err := Pending{}.Press("5")
	require.NoError(t, err)
	p, err = p.Press("0")
	require.NoError(t, err)
	p, err = p.Press("0")
	require.NoError(t, err)
	assert.Equal(t, "5.00", p.Display())

	p, err = p.Press("backspace")
	require.NoError(t, err)
	assert.Equal(t, int64(50), p.Cents())

	_, err = p.Press("x")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = p.Press("12")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestPending_OverflowIgnored(t *testing.T) {
	p := press(t, Pending{}, "9999999999")
	assert.Equal(t, int64(9_999_999_999), p.Cents())

	// One digit past the cap is a no-op.
	next, err := p.PushDigit('1')
	require.NoError(t, err)
	assert.Equal(t, p.Cents(), next.Cents())
}

func TestFromCents_Negative(t *testing.T) {
	assert.Equal(t, int64(0), FromCents(-5).Cents())
}

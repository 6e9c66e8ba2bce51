package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"12.3", "$12.30"},
		{"1234.5", "$1,234.50"},
		{"-1234567.891", "-$1,234,567.89"},
		{"999.999", "$1,000.00"},
		{"-0.004", "$0.00"},
		{"-42.1", "-$42.10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Format(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("Format(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSum(t *testing.T) {
	amounts := []decimal.Decimal{
		decimal.RequireFromString("10.10"),
		decimal.RequireFromString("-3.05"),
		decimal.RequireFromString("0.20"),
	}

	if got := Sum(amounts); !got.Equal(decimal.RequireFromString("7.25")) {
		t.Errorf("Sum() = %s, want 7.25", got)
	}
	if got := Sum(nil); !got.IsZero() {
		t.Errorf("Sum(nil) = %s, want 0", got)
	}
}

package document

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "Zero Rupees Only"},
		{"7", "Seven Rupees Only"},
		{"15", "Fifteen Rupees Only"},
		{"42", "Forty-Two Rupees Only"},
		{"100", "One Hundred Rupees Only"},
		{"118", "One Hundred Eighteen Rupees Only"},
		{"2454.40", "Two Thousand Four Hundred Fifty-Four Rupees Only"}, // paise truncated
		{"1000", "One Thousand Rupees Only"},
		{"55000", "Fifty-Five Thousand Rupees Only"},
		{"100000", "One Lakh Rupees Only"},
		{"1234567", "Twelve Lakh Thirty-Four Thousand Five Hundred Sixty-Seven Rupees Only"},
		{"10000000", "One Crore Rupees Only"},
		{"25000000", "Two Crore Fifty Lakh Rupees Only"},
		{"123456789012", "Twelve Thousand Three Hundred Forty-Five Crore Sixty-Seven Lakh Eighty-Nine Thousand Twelve Rupees Only"},
	}
	for _, tt := range tests {
		got := AmountInWords(decimal.RequireFromString(tt.amount))
		if got != tt.want {
			t.Errorf("AmountInWords(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

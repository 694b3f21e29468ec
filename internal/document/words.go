// Package document renders the downloadable purchase-order workbook.
package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords renders a rupee amount in the Indian numbering system, e.g.
// 1234567 → "Twelve Lakh Thirty-Four Thousand Five Hundred Sixty-Seven Rupees
// Only". Paise are truncated, matching the printed PO template.
func AmountInWords(amount decimal.Decimal) string {
	rupees := amount.IntPart()
	if rupees < 0 {
		rupees = -rupees
	}
	if rupees == 0 {
		return "Zero Rupees Only"
	}
	return numberWords(rupees) + " Rupees Only"
}

// numberWords spells n in the Indian grouping: three digits of hundreds, then
// two-digit groups for thousand, lakh and crore. Crores recurse, so arbitrary
// magnitudes read as "<words> Crore <words>".
func numberWords(n int64) string {
	var parts []string

	if n >= 1_00_00_000 {
		parts = append(parts, numberWords(n/1_00_00_000), "Crore")
		n %= 1_00_00_000
	}
	if n >= 1_00_000 {
		parts = append(parts, belowHundred(n/1_00_000), "Lakh")
		n %= 1_00_000
	}
	if n >= 1_000 {
		parts = append(parts, belowHundred(n/1_000), "Thousand")
		n %= 1_000
	}
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}

	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + "-" + onesWords[n%10]
}

package core

import (
	"fmt"
	"time"
)

// FiscalYearLabel maps a calendar date to the organization's fiscal-year
// label. The fiscal year runs April 1 – March 31 and the label uses the
// "2K25-2K26" convention: two-digit start and end years with a fixed "2K"
// prefix. Dates in January–March belong to the fiscal year that started the
// previous April.
func FiscalYearLabel(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("2K%02d-2K%02d", start%100, (start+1)%100)
}

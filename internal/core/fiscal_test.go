package core_test

import (
	"testing"
	"time"

	"boq-procurement/internal/core"
)

func TestFiscalYearLabel(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"mid fiscal year", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), "2K25-2K26"},
		{"january belongs to prior start year", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "2K25-2K26"},
		{"last day of fiscal year", time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC), "2K24-2K25"},
		{"first day of fiscal year", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "2K25-2K26"},
		{"december", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "2K24-2K25"},
		{"single-digit year padding", time.Date(2009, 5, 1, 0, 0, 0, 0, time.UTC), "2K09-2K10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.FiscalYearLabel(tt.date); got != tt.want {
				t.Errorf("FiscalYearLabel(%s) = %q, want %q", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

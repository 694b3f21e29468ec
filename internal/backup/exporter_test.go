package backup

import (
	"context"
	"testing"
	"time"

	"boq-procurement/internal/core"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestExportTable_RejectsUnknownTable(t *testing.T) {
	e := NewExporter(nil, t.TempDir())
	if _, err := e.ExportTable(context.Background(), "users"); err == nil {
		t.Error("users table must not be exportable")
	}
	if _, err := e.ExportTable(context.Background(), "pg_catalog.pg_tables"); err == nil {
		t.Error("arbitrary table names must be rejected")
	}
}

func TestAppendPOSummary(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(nil, dir)
	e.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }

	po := &core.FinalizedPO{
		PONumber:    "ZTPL-HR/2K25-2K26-001",
		ProjectName: "Substation Upgrade",
		Subtotal:    decimal.RequireFromString("2080.00"),
		TaxPercent:  decimal.NewFromInt(18),
		TaxAmount:   decimal.RequireFromString("374.40"),
		GrandTotal:  decimal.RequireFromString("2454.40"),
		Lines:       []core.CommittedLine{{BOQRef: "A-1"}},
		AllocatedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	path, err := e.AppendPOSummary(po)
	if err != nil {
		t.Fatalf("first AppendPOSummary failed: %v", err)
	}
	// A second PO on the same day appends to the same file.
	po2 := *po
	po2.PONumber = "ZTPL-HR/2K25-2K26-002"
	path2, err := e.AppendPOSummary(&po2)
	if err != nil {
		t.Fatalf("second AppendPOSummary failed: %v", err)
	}
	if path != path2 {
		t.Errorf("same-day summaries split across files: %s vs %s", path, path2)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open summary file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2 summaries", len(rows))
	}
	if rows[0][0] != "PO_Number" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "ZTPL-HR/2K25-2K26-001" || rows[2][0] != "ZTPL-HR/2K25-2K26-002" {
		t.Errorf("summary rows wrong: %v / %v", rows[1], rows[2])
	}
}

// Package backup exports table contents to dated xlsx snapshots, mirroring
// the operations habit of keeping spreadsheet copies of the procurement data
// alongside the database.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"boq-procurement/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"
)

// exportableTables is the whitelist of tables the exporter will touch. Users
// are deliberately excluded so password hashes never land in a spreadsheet.
var exportableTables = []string{
	"projects",
	"boq_items",
	"locations",
	"po_counters",
	"suppliers",
	"bill_to_companies",
	"ship_to_addresses",
}

// Exporter writes table snapshots into Dir as <table>_<YYYY-MM-DD>.xlsx.
type Exporter struct {
	pool *pgxpool.Pool
	dir  string
	now  func() time.Time
}

// NewExporter constructs an Exporter. The directory is created on first use.
func NewExporter(pool *pgxpool.Pool, dir string) *Exporter {
	return &Exporter{pool: pool, dir: dir, now: time.Now}
}

// ExportTable snapshots one whitelisted table and returns the written path.
func (e *Exporter) ExportTable(ctx context.Context, table string) (string, error) {
	allowed := false
	for _, t := range exportableTables {
		if t == table {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("table %q is not exportable", table)
	}

	rows, err := e.pool.Query(ctx, "SELECT * FROM "+table)
	if err != nil {
		return "", fmt.Errorf("read table %s: %w", table, err)
	}
	defer rows.Close()

	headers := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		headers = append(headers, fd.Name)
	}

	var records [][]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("read row from %s: %w", table, err)
		}
		record := make([]interface{}, len(values))
		for i, v := range values {
			// Numeric, timestamp and similar driver types are flattened
			// to text so the sheet stays readable.
			switch v := v.(type) {
			case nil:
				record[i] = ""
			case string, bool, int32, int64, float64:
				record[i] = v
			case time.Time:
				record[i] = v.Format("2006-01-02 15:04:05")
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate table %s: %w", table, err)
	}

	return e.writeSheet(table, headers, records)
}

// ExportAll snapshots every whitelisted table and returns the written paths.
// It stops at the first failure.
func (e *Exporter) ExportAll(ctx context.Context) ([]string, error) {
	paths := make([]string, 0, len(exportableTables))
	for _, table := range exportableTables {
		path, err := e.ExportTable(ctx, table)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

var poSummaryHeaders = []string{
	"PO_Number", "Date", "Project", "Subtotal", "GST_Percent", "GST_Amount",
	"Grand_Total", "Items_Count", "Created_At",
}

// AppendPOSummary records one finalized PO in the day's purchase_orders
// sheet, creating the file when it is the first PO of the day.
func (e *Exporter) AppendPOSummary(po *core.FinalizedPO) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("purchase_orders_%s.xlsx", e.now().Format("2006-01-02")))

	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		if f, err = excelize.OpenFile(path); err != nil {
			return "", fmt.Errorf("open PO summary file: %w", err)
		}
	} else {
		f = excelize.NewFile()
		if err := f.SetSheetRow(f.GetSheetName(0), "A1", &poSummaryHeaders); err != nil {
			f.Close()
			return "", fmt.Errorf("write PO summary header: %w", err)
		}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rowCount, err := rowsInSheet(f, sheet)
	if err != nil {
		return "", err
	}

	record := []interface{}{
		po.PONumber,
		po.AllocatedAt.Format("2006-01-02"),
		po.ProjectName,
		po.Subtotal.StringFixed(2),
		po.TaxPercent.String(),
		po.TaxAmount.StringFixed(2),
		po.GrandTotal.StringFixed(2),
		len(po.Lines),
		po.AllocatedAt.Format("2006-01-02 15:04:05"),
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowCount+1)
	if err := f.SetSheetRow(sheet, cell, &record); err != nil {
		return "", fmt.Errorf("append PO summary row: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save PO summary file: %w", err)
	}
	return path, nil
}

func (e *Exporter) writeSheet(table string, headers []string, records [][]interface{}) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return "", fmt.Errorf("write header for %s: %w", table, err)
	}
	for i, record := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return "", fmt.Errorf("write row %d for %s: %w", i+1, table, err)
		}
	}

	path := filepath.Join(e.dir, fmt.Sprintf("%s_%s.xlsx", table, e.now().Format("2006-01-02")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save backup for %s: %w", table, err)
	}
	return path, nil
}

func rowsInSheet(f *excelize.File, sheet string) (int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("count sheet rows: %w", err)
	}
	return len(rows), nil
}

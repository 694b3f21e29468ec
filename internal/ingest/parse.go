// Package ingest parses uploaded BOQ spreadsheets (xlsx or CSV) into the
// line-item inputs the project service persists. Header spellings vary across
// the circulating templates, so resolution is alias-driven rather than
// positional.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"boq-procurement/internal/core"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const slotCount = core.DeliverySlotCount

var numericPattern = regexp.MustCompile(`-?[\d.]+`)

// CleanNumeric parses a spreadsheet cell that should hold a number but may
// carry commas, currency marks, stray spaces or nothing at all. Unparseable
// cells become zero, matching how the BOQ templates treat blanks.
func CleanNumeric(value string) decimal.Decimal {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return decimal.Zero
	}
	match := numericPattern.FindString(cleaned)
	if match == "" || match == "-" || match == "." || match == "-." {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseFile dispatches on the uploaded filename's extension. CSV is parsed
// directly; anything else is treated as an Excel workbook.
func ParseFile(filename string, r io.Reader) ([]core.BOQItemInput, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return ParseCSV(r)
	}
	return ParseWorkbook(r)
}

// ParseCSV reads a single-sheet CSV export of the BOQ template.
func ParseCSV(r io.Reader) ([]core.BOQItemInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // template exports pad rows unevenly

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("file has no data rows")
	}
	return parseRows(records[0], records[1:])
}

// ParseWorkbook reads an xlsx upload. The BOQ data sheet is found by its
// "BOQ Ref" header; failing that, by a sheet name mentioning PROJECT or BOQ;
// failing that, the first sheet is used.
func ParseWorkbook(r io.Reader) ([]core.BOQItemInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	target := ""
	var rows [][]string
	for _, sheet := range sheets {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(sheetRows) > 0 && rowHasBOQRef(sheetRows[0]) {
			target, rows = sheet, sheetRows
			break
		}
	}
	if target == "" {
		for _, sheet := range sheets {
			upper := strings.ToUpper(sheet)
			if strings.Contains(upper, "PROJECT") || strings.Contains(upper, "BOQ") {
				target = sheet
				break
			}
		}
	}
	if target == "" {
		target = sheets[0]
	}
	if rows == nil {
		if rows, err = f.GetRows(target); err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", target, err)
		}
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", target)
	}
	return parseRows(rows[0], rows[1:])
}

func rowHasBOQRef(header []string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) == "BOQ Ref" {
			return true
		}
	}
	return false
}

// parseRows converts data rows through the resolved column map. Rows with an
// empty BOQ ref are skipped rather than failing the upload; templates keep
// blank spacer rows between sections.
func parseRows(header []string, rows [][]string) ([]core.BOQItemInput, error) {
	cols, err := mapHeaders(header)
	if err != nil {
		return nil, err
	}

	var items []core.BOQItemInput
	for _, row := range rows {
		cell := func(idx int) string {
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		item := core.BOQItemInput{Make: "N/A", Model: "N/A"}
		for idx, canonical := range cols.scalar {
			switch canonical {
			case colBOQRef:
				item.BOQRef = cell(idx)
			case colDescription:
				item.Description = cell(idx)
			case colMake:
				if v := cell(idx); v != "" {
					item.Make = v
				}
			case colModel:
				if v := cell(idx); v != "" {
					item.Model = v
				}
			case colUnit:
				item.Unit = cell(idx)
			case colBOQQty:
				item.BOQQty = CleanNumeric(cell(idx))
			case colRate:
				item.Rate = CleanNumeric(cell(idx))
			case colAmount:
				item.Amount = CleanNumeric(cell(idx))
			}
		}
		for idx, slot := range cols.slots {
			item.DeliveredQty[slot-1] = CleanNumeric(cell(idx))
		}

		if item.BOQRef == "" {
			continue
		}
		if item.Amount.IsZero() {
			item.Amount = item.BOQQty.Mul(item.Rate)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no BOQ rows found")
	}
	return items, nil
}

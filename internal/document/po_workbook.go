package document

import (
	"fmt"
	"time"

	"boq-procurement/internal/core"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Line is one printed PO row. Description, make, model and unit come from the
// BOQ item; quantity and pricing from the committed allocation.
type Line struct {
	Description string
	Make        string
	Model       string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// PurchaseOrder carries everything the rendered workbook needs.
type PurchaseOrder struct {
	Number    string
	Date      time.Time
	Reference string

	Supplier core.Party
	BillTo   core.Party
	ShipTo   core.Party

	Lines []Line

	Subtotal   decimal.Decimal
	TaxPercent decimal.Decimal
	CGSTAmount decimal.Decimal
	SGSTAmount decimal.Decimal
	GrandTotal decimal.Decimal

	Terms []string

	// Protect locks the workbook structure and sheet with Password so the
	// downloaded order cannot be silently edited.
	Protect  bool
	Password string
}

// DefaultTerms is printed when the caller supplies none.
var DefaultTerms = []string{
	"• Payment: 30 days from invoice date",
	"• Delivery: Subject to stock availability",
	"• Warranty: As per manufacturer terms",
	"• All disputes subject to local jurisdiction",
}

var signatureTitles = []string{"Prepared By", "Authorized By", "Approved By", "Vendor Sign"}

// GenerateWorkbook renders the purchase order as an A4-fitted xlsx and
// returns the file contents.
func GenerateWorkbook(po PurchaseOrder) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Purchase Order"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column widths tuned so eight columns fit A4 portrait.
	widths := []float64{5, 35, 10, 12, 5, 6, 8, 10}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return nil, err
	}

	set := func(row, col int, value interface{}, styleID int) error {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
		if styleID != 0 {
			if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
				return fmt.Errorf("style cell %s: %w", cell, err)
			}
		}
		return nil
	}
	merge := func(row, fromCol, toRow, toCol int) error {
		from, _ := excelize.CoordinatesToCellName(fromCol, row)
		to, _ := excelize.CoordinatesToCellName(toCol, toRow)
		if err := f.MergeCell(sheet, from, to); err != nil {
			return fmt.Errorf("merge %s:%s: %w", from, to, err)
		}
		return nil
	}

	row := 1

	// Party header block: supplier on the left, bill-to on the right.
	if err := set(row, 1, "Supplier:", styles.label); err != nil {
		return nil, err
	}
	_ = set(row, 2, po.Supplier.Name, styles.value)
	_ = set(row, 5, "Bill To:", styles.label)
	_ = merge(row, 6, row, 8)
	_ = set(row, 6, po.BillTo.Name, styles.value)
	row++

	_ = set(row, 1, "ADD:", styles.label)
	_ = merge(row, 2, row+1, 4)
	_ = set(row, 2, po.Supplier.Address, styles.address)
	_ = merge(row, 6, row+1, 8)
	_ = set(row, 6, po.BillTo.Address, styles.address)
	row += 2

	_ = set(row, 1, "GSTIN:", styles.label)
	_ = set(row, 2, po.Supplier.GSTNumber, styles.value)
	_ = set(row, 3, "GST#:", styles.label)
	_ = set(row, 4, po.BillTo.GSTNumber, styles.value)
	_ = set(row, 5, "PO#:", styles.label)
	_ = set(row, 6, po.Number, styles.poNumber)
	_ = set(row, 7, "Date:", styles.label)
	_ = set(row, 8, po.Date.Format("02/01/2006"), styles.value)
	row++

	_ = set(row, 1, "Ref:", styles.label)
	_ = merge(row, 2, row, 3)
	_ = set(row, 2, po.Reference, styles.value)
	_ = set(row, 4, "Contact:", styles.label)
	_ = merge(row, 5, row, 8)
	_ = set(row, 5, fmt.Sprintf("%s - %s", po.Supplier.ContactPerson, po.Supplier.ContactNumber), styles.value)
	row++

	_ = set(row, 1, "Ship To:", styles.label)
	_ = merge(row, 2, row, 8)
	_ = set(row, 2, fmt.Sprintf("%s - %s", po.ShipTo.Name, po.ShipTo.ContactNumber), styles.value)
	row++
	_ = merge(row, 2, row, 8)
	_ = set(row, 2, po.ShipTo.Address, styles.address)
	row += 2

	// Title bar.
	_ = merge(row, 1, row, 8)
	if err := set(row, 1, "PURCHASE ORDER", styles.title); err != nil {
		return nil, err
	}
	row++

	// Item table.
	headers := []string{"S.No", "Description", "Make", "Model", "Unit", "Qty", "Rate", "Amount"}
	for col, h := range headers {
		if err := set(row, col+1, h, styles.tableHeader); err != nil {
			return nil, err
		}
	}
	row++

	dataStart := row
	for i, line := range po.Lines {
		if err := f.SetRowHeight(sheet, row, 35); err != nil {
			return nil, fmt.Errorf("set row height: %w", err)
		}
		rowStyle := styles.cell
		if i%2 == 1 {
			rowStyle = styles.cellShaded
		}
		_ = set(row, 1, i+1, rowStyle)
		_ = set(row, 2, line.Description, rowStyle)
		_ = set(row, 3, line.Make, rowStyle)
		_ = set(row, 4, line.Model, rowStyle)
		_ = set(row, 5, line.Unit, rowStyle)
		_ = set(row, 6, line.Quantity.String(), rowStyle)
		_ = set(row, 7, "₹"+line.UnitPrice.StringFixed(2), rowStyle)
		_ = set(row, 8, "₹"+line.Total.StringFixed(2), rowStyle)
		row++
	}
	row++

	// Totals block.
	halfPercent := po.TaxPercent.Div(decimal.NewFromInt(2))
	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Sub Total", po.Subtotal},
		{fmt.Sprintf("CGST (%s%%)", halfPercent), po.CGSTAmount},
		{fmt.Sprintf("SGST (%s%%)", halfPercent), po.SGSTAmount},
	}
	for _, t := range totals {
		_ = merge(row, 1, row, 7)
		_ = set(row, 1, t.label, styles.totalLabel)
		_ = set(row, 8, "₹"+t.value.StringFixed(2), styles.totalValue)
		row++
	}

	_ = merge(row, 1, row, 2)
	_ = set(row, 1, "TOTAL:", styles.grandLabel)
	_ = merge(row, 3, row, 7)
	_ = set(row, 3, AmountInWords(po.GrandTotal), styles.totalWords)
	if err := set(row, 8, "₹"+po.GrandTotal.StringFixed(2), styles.grandValue); err != nil {
		return nil, err
	}
	row += 2

	// Terms.
	terms := po.Terms
	if len(terms) == 0 {
		terms = DefaultTerms
	}
	_ = merge(row, 1, row, 8)
	_ = set(row, 1, "TERMS & CONDITIONS:", styles.termsHeader)
	row++
	for _, term := range terms {
		_ = merge(row, 1, row, 8)
		_ = set(row, 1, term, styles.terms)
		_ = f.SetRowHeight(sheet, row, 15)
		row++
	}
	row++

	// Signature strip: four two-column blocks.
	for i, title := range signatureTitles {
		col := i*2 + 1
		if col < 8 {
			_ = merge(row, col, row, col+1)
		}
		if err := set(row, col, title, styles.signature); err != nil {
			return nil, err
		}
	}

	if err := setupPage(f, sheet); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: dataStart - 1,
		TopLeftCell: fmt.Sprintf("A%d", dataStart), ActivePane: "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze panes: %w", err)
	}

	if po.Protect {
		if err := f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
			Password:            po.Password,
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		}); err != nil {
			return nil, fmt.Errorf("protect sheet: %w", err)
		}
		if err := f.ProtectWorkbook(&excelize.WorkbookProtectionOptions{
			Password:      po.Password,
			LockStructure: true,
		}); err != nil {
			return nil, fmt.Errorf("protect workbook: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setupPage(f *excelize.File, sheet string) error {
	portrait := "portrait"
	a4 := 9
	fit := 1
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{
		Orientation: &portrait,
		Size:        &a4,
		FitToWidth:  &fit,
		FitToHeight: &fit,
	}); err != nil {
		return fmt.Errorf("page layout: %w", err)
	}

	left, right := 0.3, 0.3
	top, bottom := 0.4, 0.4
	header, footer := 0.2, 0.2
	if err := f.SetPageMargins(sheet, &excelize.PageLayoutMarginsOptions{
		Left: &left, Right: &right, Top: &top, Bottom: &bottom,
		Header: &header, Footer: &footer,
	}); err != nil {
		return fmt.Errorf("page margins: %w", err)
	}
	return nil
}

// styleSet holds the style IDs used across the sheet so each is created once.
type styleSet struct {
	label       int
	value       int
	address     int
	poNumber    int
	title       int
	tableHeader int
	cell        int
	cellShaded  int
	totalLabel  int
	totalValue  int
	totalWords  int
	grandLabel  int
	grandValue  int
	termsHeader int
	terms       int
	signature   int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	s := &styleSet{}
	var err error

	mk := func(style *excelize.Style) int {
		if err != nil {
			return 0
		}
		var id int
		id, err = f.NewStyle(style)
		return id
	}

	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}

	s.label = mk(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 8},
		Fill:   fill("#D9E1F2"),
		Border: thinBorders(),
	})
	s.value = mk(&excelize.Style{
		Font:   &excelize.Font{Size: 8},
		Border: thinBorders(),
	})
	s.address = mk(&excelize.Style{
		Font:      &excelize.Font{Size: 7},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorders(),
	})
	s.poNumber = mk(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 9, Color: "#FF0000"},
		Border: thinBorders(),
	})
	s.title = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "#FFFFFF"},
		Fill:      fill("#4472C4"),
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.tableHeader = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 9, Color: "#FFFFFF"},
		Fill:      fill("#5B9BD5"),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	s.cell = mk(&excelize.Style{
		Font:      &excelize.Font{Size: 8},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	s.cellShaded = mk(&excelize.Style{
		Font:      &excelize.Font{Size: 8},
		Fill:      fill("#F8F9FA"),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	s.totalLabel = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 9},
		Fill:      fill("#E2EFDA"),
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    thinBorders(),
	})
	s.totalValue = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 9},
		Fill:      fill("#E2EFDA"),
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	s.totalWords = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 8},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	s.grandLabel = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      fill("#FFD966"),
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	s.grandValue = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FF0000"},
		Fill:      fill("#FFD966"),
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	s.termsHeader = mk(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 9},
		Fill: fill("#E7E6E6"),
	})
	s.terms = mk(&excelize.Style{
		Font:      &excelize.Font{Size: 7},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	s.signature = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 8},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})

	if err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}
	return s, nil
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
}

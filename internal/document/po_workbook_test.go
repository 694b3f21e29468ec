package document

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"boq-procurement/internal/core"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func samplePO() PurchaseOrder {
	return PurchaseOrder{
		Number:    "ZTPL-HR/2K25-2K26-001",
		Date:      time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Reference: "Quote Q-104",
		Supplier: core.Party{Name: "Acme Cables", Address: "Plot 4, Industrial Area",
			GSTNumber: "06AAACA1111A1Z5", ContactPerson: "R. Sharma", ContactNumber: "9800000000"},
		BillTo: core.Party{Name: "Zenith Technologies", Address: "Tower B, Gurugram",
			GSTNumber: "06AAACZ2222B1Z3"},
		ShipTo: core.Party{Name: "Site Store HR", Address: "Sector 18 site office",
			ContactNumber: "9811111111"},
		Lines: []Line{
			{Description: "Power cable 4c x 16sqmm", Make: "Polycab", Model: "4C16",
				Unit: "Mtr", Quantity: decimal.NewFromInt(40),
				UnitPrice: decimal.RequireFromString("52.00"),
				Total:     decimal.RequireFromString("2080.00")},
		},
		Subtotal:   decimal.RequireFromString("2080.00"),
		TaxPercent: decimal.NewFromInt(18),
		CGSTAmount: decimal.RequireFromString("187.20"),
		SGSTAmount: decimal.RequireFromString("187.20"),
		GrandTotal: decimal.RequireFromString("2454.40"),
	}
}

func TestGenerateWorkbook(t *testing.T) {
	data, err := GenerateWorkbook(samplePO())
	if err != nil {
		t.Fatalf("GenerateWorkbook() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("GenerateWorkbook() returned empty bytes")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Purchase Order" {
		t.Errorf("sheets = %v, want single 'Purchase Order' sheet", sheets)
	}

	rows, err := f.GetRows("Purchase Order")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	flat := ""
	for _, row := range rows {
		flat += strings.Join(row, "|") + "\n"
	}

	for _, want := range []string{
		"ZTPL-HR/2K25-2K26-001",
		"PURCHASE ORDER",
		"Power cable 4c x 16sqmm",
		"CGST (9%)",
		"SGST (9%)",
		"Two Thousand Four Hundred Fifty-Four Rupees Only",
		"₹2454.40",
		"Prepared By",
	} {
		if !strings.Contains(flat, want) {
			t.Errorf("workbook missing %q", want)
		}
	}
}

func TestGenerateWorkbook_DefaultTermsAndProtection(t *testing.T) {
	po := samplePO()
	po.Protect = true
	po.Password = "secret"

	data, err := GenerateWorkbook(po)
	if err != nil {
		t.Fatalf("GenerateWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Purchase Order")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	found := false
	for _, row := range rows {
		for _, cell := range row {
			if strings.Contains(cell, "Payment: 30 days") {
				found = true
			}
		}
	}
	if !found {
		t.Error("default terms not rendered")
	}
}

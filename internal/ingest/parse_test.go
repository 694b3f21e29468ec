package ingest

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234", "1234"},
		{"1,234.50", "1234.5"},
		{" 42 ", "42"},
		{"₹ 1,500", "1500"},
		{"", "0"},
		{"N/A", "0"},
		{"-", "0"},
		{"12.5 Mtr", "12.5"},
	}
	for _, tt := range tests {
		got := CleanNumeric(tt.in)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("CleanNumeric(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMapHeaders(t *testing.T) {
	t.Run("template spellings", func(t *testing.T) {
		headers := []string{
			"BOQ Ref", "Description", "Make", "Model", "Unit",
			"BOQ Qty.", " Rate ", " Amount ",
			"Delivered Qty-1\r\nDC/PO#", "Delivered Qty-2", "Delivered Qty-10",
			"Total delivered Qty", "Balance to Deliver",
		}
		m, err := mapHeaders(headers)
		if err != nil {
			t.Fatalf("mapHeaders failed: %v", err)
		}
		if m.scalar[0] != colBOQRef || m.scalar[5] != colBOQQty || m.scalar[6] != colRate {
			t.Errorf("scalar mapping wrong: %v", m.scalar)
		}
		if m.slots[8] != 1 || m.slots[9] != 2 || m.slots[10] != 10 {
			t.Errorf("slot mapping wrong: %v", m.slots)
		}
	})

	t.Run("lowercase export spellings", func(t *testing.T) {
		headers := []string{"boq_ref", "description", "unit", "boq qty", "rate"}
		if _, err := mapHeaders(headers); err != nil {
			t.Fatalf("mapHeaders failed: %v", err)
		}
	})

	t.Run("missing columns reported together", func(t *testing.T) {
		_, err := mapHeaders([]string{"BOQ Ref", "Unit"})
		if err == nil {
			t.Fatal("expected error")
		}
		for _, want := range []string{"description", "boq_qty", "rate"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not name missing column %s", err, want)
			}
		}
	})

	t.Run("out of range delivery slot ignored", func(t *testing.T) {
		headers := []string{"BOQ Ref", "Description", "Unit", "BOQ Qty.", "Rate", "Delivered Qty-11"}
		m, err := mapHeaders(headers)
		if err != nil {
			t.Fatalf("mapHeaders failed: %v", err)
		}
		if len(m.slots) != 0 {
			t.Errorf("slot 11 should be ignored, got %v", m.slots)
		}
	})
}

func TestParseCSV(t *testing.T) {
	data := `BOQ Ref,Description,Make,Model,Unit,BOQ Qty.,Rate,Amount,"Delivered Qty-1
DC/PO#",Delivered Qty-2
A-1,Power cable,Polycab,4c16,Mtr,"1,000",50.00,"50,000",100,50
A-2,Cable tray,,,Mtr,200,80,,,
,,,,,,,,,
`
	items, err := ParseCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (spacer row skipped)", len(items))
	}

	a1 := items[0]
	if a1.BOQRef != "A-1" || a1.Make != "Polycab" || a1.Unit != "Mtr" {
		t.Errorf("A-1 fields wrong: %+v", a1)
	}
	if !a1.BOQQty.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("A-1 qty = %s, want 1000", a1.BOQQty)
	}
	if !a1.DeliveredQty[0].Equal(decimal.NewFromInt(100)) || !a1.DeliveredQty[1].Equal(decimal.NewFromInt(50)) {
		t.Errorf("A-1 slots wrong: %v", a1.DeliveredQty)
	}

	a2 := items[1]
	if a2.Make != "N/A" || a2.Model != "N/A" {
		t.Errorf("blank make/model should default to N/A, got %q %q", a2.Make, a2.Model)
	}
	// Missing amount is derived from qty × rate.
	if !a2.Amount.Equal(decimal.NewFromInt(16000)) {
		t.Errorf("A-2 amount = %s, want 16000", a2.Amount)
	}
}

func TestParseCSV_MissingColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Foo,Bar\n1,2\n"))
	if err == nil {
		t.Fatal("expected error for unmappable headers")
	}
}

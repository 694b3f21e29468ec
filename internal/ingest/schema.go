package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

// Canonical column names a BOQ sheet maps onto. Delivery slots are handled
// separately by slot number.
const (
	colBOQRef      = "boq_ref"
	colDescription = "description"
	colMake        = "make"
	colModel       = "model"
	colUnit        = "unit"
	colBOQQty      = "boq_qty"
	colRate        = "rate"
	colAmount      = "amount"
	colTotalQty    = "total_delivery_qty"
	colBalance     = "balance_to_deliver"
)

// headerAliases maps the header spellings seen in circulating BOQ templates to
// their canonical column. Matching is done on the trimmed header text; the
// numbered delivery columns are matched by deliveredQtyPattern instead.
var headerAliases = map[string]string{
	"BOQ Ref":            colBOQRef,
	"boq ref":            colBOQRef,
	"boq_ref":            colBOQRef,
	"Description":        colDescription,
	"description":        colDescription,
	"Make":               colMake,
	"make":               colMake,
	"Model":              colModel,
	"model":              colModel,
	"Unit":               colUnit,
	"unit":               colUnit,
	"BOQ Qty.":           colBOQQty,
	"BOQ Qty":            colBOQQty,
	"boq qty":            colBOQQty,
	"boq_qty":            colBOQQty,
	".qty":               colBOQQty,
	"Rate":               colRate,
	"rate":               colRate,
	"Amount":             colAmount,
	"amount":             colAmount,
	"Total delivered Qty": colTotalQty,
	"total_delivery_qty":  colTotalQty,
	"Balance to Deliver":  colBalance,
	"balance_to_deliver":  colBalance,
}

// deliveredQtyPattern matches the numbered delivery columns. The template's
// first delivery column carries a trailing "DC/PO#" annotation on its own
// line, so the match is a search, not a full anchor.
var deliveredQtyPattern = regexp.MustCompile(`Delivered Qty-(\d+)`)

// requiredColumns is the minimum a sheet must carry to be ingestible.
// Everything else gets a default.
var requiredColumns = []string{colBOQRef, colDescription, colUnit, colBOQQty, colRate}

// columnMap resolves a header row: index → canonical column for the scalar
// columns, and index → slot number (1-based) for the delivery columns.
type columnMap struct {
	scalar map[int]string
	slots  map[int]int
}

func (m columnMap) has(canonical string) bool {
	for _, c := range m.scalar {
		if c == canonical {
			return true
		}
	}
	return false
}

// mapHeaders resolves the header row of an uploaded sheet. It fails with the
// full list of missing required columns so the uploader can fix the file in
// one round trip.
func mapHeaders(headers []string) (columnMap, error) {
	m := columnMap{scalar: make(map[int]string), slots: make(map[int]int)}

	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if canonical, ok := headerAliases[h]; ok {
			m.scalar[i] = canonical
			continue
		}
		if match := deliveredQtyPattern.FindStringSubmatch(h); match != nil {
			var slot int
			fmt.Sscanf(match[1], "%d", &slot)
			if slot >= 1 && slot <= slotCount {
				m.slots[i] = slot
			}
			continue
		}
	}

	var missing []string
	for _, required := range requiredColumns {
		if !m.has(required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return columnMap{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return m, nil
}

package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// POLineInput is one requested line of a draft purchase order.
type POLineInput struct {
	BOQRef    string          `json:"boq_ref"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// AllocationRequest is a draft PO submitted for validation and commit.
// SlotIndex names the delivery slot (1–10) every committed line lands in.
// TaxPercent overrides the policy default when non-nil.
type AllocationRequest struct {
	LocationCode string          `json:"location_code"`
	ProjectID    int             `json:"project_id"`
	FiscalDate   time.Time       `json:"fiscal_date"`
	SlotIndex    int             `json:"slot_index"`
	TaxPercent   *decimal.Decimal `json:"tax_percent,omitempty"`
	Lines        []POLineInput   `json:"lines"`
}

// CommittedLine is a PO line after a successful allocation.
type CommittedLine struct {
	BOQRef    string          `json:"boq_ref"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	// NewBalance is the item's balance to deliver after this commit.
	NewBalance decimal.Decimal `json:"new_balance"`
}

// FinalizedPO is the outcome of a fully accepted allocation. It is not
// persisted as its own entity — only the ledger mutations and the counter
// bump survive — but downstream consumers (document rendering, backups)
// read everything they need from it.
type FinalizedPO struct {
	PONumber     string          `json:"po_number"`
	Serial       int64           `json:"serial"`
	FiscalYear   string          `json:"fiscal_year"`
	LocationCode string          `json:"location_code"`
	ProjectID    int             `json:"project_id"`
	ProjectName  string          `json:"project_name"`
	SlotIndex    int             `json:"slot_index"`
	Lines        []CommittedLine `json:"lines"`

	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	// CGST and SGST are the even split of TaxAmount shown on the document.
	CGSTAmount decimal.Decimal `json:"cgst_amount"`
	SGSTAmount decimal.Decimal `json:"sgst_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`

	AllocatedBy int       `json:"allocated_by"`
	AllocatedAt time.Time `json:"allocated_at"`
}

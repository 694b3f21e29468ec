package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliverySlotCount is the number of fixed delivery-event buckets tracked per
// BOQ line. The external spreadsheet template bakes in ten delivery columns,
// so this is a domain constant rather than a tunable.
const DeliverySlotCount = 10

// Role values carried by Actor. Staff can ingest BOQs and raise POs; admins
// additionally manage locations, partners, users and project deletion.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Actor identifies the authenticated user on whose behalf a core operation
// runs. It is passed explicitly into role-sensitive calls instead of being
// read from ambient session state.
type Actor struct {
	UserID int
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Project groups the BOQ line items ingested from one bill-of-quantities
// file. Deleting a project cascades to its items.
type Project struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedBy *int      `json:"created_by,omitempty"` // legacy rows may lack an owner
	CreatedAt time.Time `json:"created_at"`
}

// BOQItem is one line of a project's bill of quantities together with its
// delivery ledger state. Amount is fixed at ingestion time (boq_qty × rate)
// and never re-derived afterwards.
type BOQItem struct {
	ID          int             `json:"id"`
	ProjectID   int             `json:"project_id"`
	BOQRef      string          `json:"boq_ref"`
	Description string          `json:"description"`
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Unit        string          `json:"unit"`
	BOQQty      decimal.Decimal `json:"boq_qty"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`

	// DeliveredQty holds the ten ordered delivery slots. Index 0 is slot 1.
	DeliveredQty   [DeliverySlotCount]decimal.Decimal `json:"delivered_qty"`
	TotalDelivered decimal.Decimal                    `json:"total_delivery_qty"`
	Balance        decimal.Decimal                    `json:"balance_to_deliver"`

	CreatedAt time.Time `json:"created_at"`
}

// BOQItemInput is the ingestion-time shape of a BOQ line, before it is
// assigned to a project. Slot values default to zero when the uploaded file
// carries no delivery history.
type BOQItemInput struct {
	BOQRef       string
	Description  string
	Make         string
	Model        string
	Unit         string
	BOQQty       decimal.Decimal
	Rate         decimal.Decimal
	Amount       decimal.Decimal
	DeliveredQty [DeliverySlotCount]decimal.Decimal
}

// ItemSnapshot is the read-only view of a BOQ item the Allocation Validator
// checks a proposed PO line against.
type ItemSnapshot struct {
	ItemID  int
	BOQRef  string
	BOQQty  decimal.Decimal
	Rate    decimal.Decimal
	Balance decimal.Decimal
}

// Location is a PO-numbering namespace: a short code plus display name.
type Location struct {
	ID        int       `json:"id"`
	Code      string    `json:"location_code"`
	Name      string    `json:"location_name"`
	CreatedAt time.Time `json:"created_at"`
}

// SequenceCounter tracks the last issued PO serial for one location code.
// The serial is monotonic and never resets, not even at fiscal-year
// boundaries; the fiscal label in the PO number is a prefix, not a reset
// point.
type SequenceCounter struct {
	ID           int       `json:"id"`
	LocationCode string    `json:"location_code"`
	LastSerial   int64     `json:"last_serial_number"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Party is a supplier, bill-to company, or ship-to address record used to
// fill the corresponding block of a PO document.
type Party struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	GSTNumber     string    `json:"gst_number"`
	ContactPerson string    `json:"contact_person"`
	ContactNumber string    `json:"contact_number"`
	CreatedAt     time.Time `json:"created_at"`
}

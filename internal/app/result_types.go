package app

import (
	"boq-procurement/internal/core"
)

// Session identifies an authenticated user. The web adapter embeds it into
// the signed auth token.
type Session struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

// Actor returns the core-layer identity for this session.
func (s *Session) Actor() core.Actor {
	return core.Actor{UserID: s.UserID, Role: s.Role}
}

// CreateUserRequest carries a new account registration.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

// ProjectUploadResult reports a completed BOQ ingestion.
type ProjectUploadResult struct {
	Project   core.Project `json:"project"`
	ItemCount int          `json:"item_count"`
}

// DocumentRequest is an allocation plus the party and rendering details the
// printed order needs.
type DocumentRequest struct {
	Allocation core.AllocationRequest `json:"allocation"`

	SupplierID int    `json:"supplier_id"`
	BillToID   int    `json:"bill_to_id"`
	ShipToID   int    `json:"ship_to_id"`
	Reference  string `json:"reference"`

	Terms    []string `json:"terms,omitempty"`
	Protect  bool     `json:"protect"`
	Password string   `json:"password,omitempty"`
}

// DocumentResult is the rendered order plus the committed allocation it
// documents.
type DocumentResult struct {
	PO       *core.FinalizedPO `json:"po"`
	Filename string            `json:"filename"`
	Workbook []byte            `json:"-"`
}

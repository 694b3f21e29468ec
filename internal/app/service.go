package app

import (
	"context"
	"io"
	"time"

	"boq-procurement/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic. Implementations must contain no
// display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns the session identity.
	AuthenticateUser(ctx context.Context, username, password string) (*Session, error)

	// GetUser returns one account by id.
	GetUser(ctx context.Context, userID int) (*core.User, error)

	// CreateUser registers a new account. Admin only.
	CreateUser(ctx context.Context, actor core.Actor, req CreateUserRequest) (*core.User, error)

	// ListUsers returns all accounts. Admin only.
	ListUsers(ctx context.Context, actor core.Actor) ([]core.User, error)

	// SetUserActive enables or disables an account. Admin only.
	SetUserActive(ctx context.Context, actor core.Actor, userID int, active bool) error

	// CreateProjectFromUpload parses an uploaded BOQ file (xlsx or CSV) and
	// creates the project with all its line items in one transaction.
	CreateProjectFromUpload(ctx context.Context, actor core.Actor, projectName, filename string, file io.Reader) (*ProjectUploadResult, error)

	// ListProjects returns all projects, newest first.
	ListProjects(ctx context.Context) ([]core.Project, error)

	// GetProjectItems returns a project's BOQ items with their delivery
	// ledger state.
	GetProjectItems(ctx context.Context, projectID int) ([]core.BOQItem, error)

	// DeleteProject removes a project and its items. Admin only.
	DeleteProject(ctx context.Context, actor core.Actor, projectID int) error

	// CreateLocation registers a PO-numbering location. Admin only.
	CreateLocation(ctx context.Context, actor core.Actor, code, name string) (*core.Location, error)

	// ListLocations returns all locations.
	ListLocations(ctx context.Context) ([]core.Location, error)

	// DeleteLocation removes a location, keeping its serial counter. Admin only.
	DeleteLocation(ctx context.Context, actor core.Actor, locationID int) error

	// PreviewPONumber returns the PO number the next allocation at this
	// location would receive, without consuming a serial.
	PreviewPONumber(ctx context.Context, locationCode string, at time.Time) (string, error)

	// CreateParty adds a supplier, bill-to or ship-to record. Admin only.
	CreateParty(ctx context.Context, actor core.Actor, kind core.PartyKind, p core.Party) (*core.Party, error)

	// ListParties returns all records of one party kind.
	ListParties(ctx context.Context, kind core.PartyKind) ([]core.Party, error)

	// DeleteParty removes a partner record. Admin only.
	DeleteParty(ctx context.Context, actor core.Actor, kind core.PartyKind, id int) error

	// AllocatePO validates and commits a draft purchase order. On guardrail
	// failure it returns *core.ValidationErrors and mutates nothing.
	AllocatePO(ctx context.Context, actor core.Actor, req core.AllocationRequest) (*core.FinalizedPO, error)

	// GeneratePODocument allocates the PO and renders the downloadable xlsx
	// order document in one step.
	GeneratePODocument(ctx context.Context, actor core.Actor, req DocumentRequest) (*DocumentResult, error)

	// BackupAll snapshots every exportable table to spreadsheets. Admin only.
	BackupAll(ctx context.Context, actor core.Actor) ([]string, error)
}

package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"boq-procurement/internal/backup"
	"boq-procurement/internal/core"
	"boq-procurement/internal/document"
	"boq-procurement/internal/ingest"
)

type appService struct {
	users       core.UserService
	projects    core.ProjectService
	locations   core.LocationService
	partners    core.PartnerService
	ledger      core.DeliveryLedgerService
	sequences   core.SequenceService
	allocations core.AllocationService
	exporter    *backup.Exporter
	policy      core.AllocationPolicy
}

// NewAppService wires the core services into the ApplicationService facade.
func NewAppService(
	users core.UserService,
	projects core.ProjectService,
	locations core.LocationService,
	partners core.PartnerService,
	ledger core.DeliveryLedgerService,
	sequences core.SequenceService,
	allocations core.AllocationService,
	exporter *backup.Exporter,
	policy core.AllocationPolicy,
) ApplicationService {
	return &appService{
		users:       users,
		projects:    projects,
		locations:   locations,
		partners:    partners,
		ledger:      ledger,
		sequences:   sequences,
		allocations: allocations,
		exporter:    exporter,
		policy:      policy,
	}
}

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: u.ID, Username: u.Username, Role: u.Role, Name: u.Name}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*core.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *appService) CreateUser(ctx context.Context, actor core.Actor, req CreateUserRequest) (*core.User, error) {
	return s.users.Create(ctx, actor, req.Username, req.Password, req.Role, req.Name)
}

func (s *appService) ListUsers(ctx context.Context, actor core.Actor) ([]core.User, error) {
	if !actor.IsAdmin() {
		return nil, core.ErrForbidden
	}
	return s.users.GetUsers(ctx)
}

func (s *appService) SetUserActive(ctx context.Context, actor core.Actor, userID int, active bool) error {
	return s.users.SetActive(ctx, actor, userID, active)
}

func (s *appService) CreateProjectFromUpload(ctx context.Context, actor core.Actor, projectName, filename string, file io.Reader) (*ProjectUploadResult, error) {
	items, err := ingest.ParseFile(filename, file)
	if err != nil {
		return nil, &core.IntegrityError{Detail: fmt.Sprintf("cannot parse %s: %v", filename, err)}
	}

	p, err := s.projects.CreateWithItems(ctx, actor, projectName, items)
	if err != nil {
		return nil, err
	}

	s.backupTables(ctx, "projects", "boq_items")
	return &ProjectUploadResult{Project: *p, ItemCount: len(items)}, nil
}

func (s *appService) ListProjects(ctx context.Context) ([]core.Project, error) {
	return s.projects.GetProjects(ctx)
}

func (s *appService) GetProjectItems(ctx context.Context, projectID int) ([]core.BOQItem, error) {
	return s.projects.GetItems(ctx, projectID)
}

func (s *appService) DeleteProject(ctx context.Context, actor core.Actor, projectID int) error {
	if err := s.projects.Delete(ctx, actor, projectID); err != nil {
		return err
	}
	s.backupTables(ctx, "projects", "boq_items")
	return nil
}

func (s *appService) CreateLocation(ctx context.Context, actor core.Actor, code, name string) (*core.Location, error) {
	loc, err := s.locations.Create(ctx, actor, code, name)
	if err != nil {
		return nil, err
	}
	s.backupTables(ctx, "locations")
	return loc, nil
}

func (s *appService) ListLocations(ctx context.Context) ([]core.Location, error) {
	return s.locations.GetLocations(ctx)
}

func (s *appService) DeleteLocation(ctx context.Context, actor core.Actor, locationID int) error {
	if err := s.locations.Delete(ctx, actor, locationID); err != nil {
		return err
	}
	s.backupTables(ctx, "locations", "po_counters")
	return nil
}

func (s *appService) PreviewPONumber(ctx context.Context, locationCode string, at time.Time) (string, error) {
	next, err := s.sequences.PeekNext(ctx, locationCode)
	if err != nil {
		return "", err
	}
	return core.FormatPONumber(s.policy.OrgPrefix, locationCode, core.FiscalYearLabel(at), next), nil
}

func (s *appService) CreateParty(ctx context.Context, actor core.Actor, kind core.PartyKind, p core.Party) (*core.Party, error) {
	created, err := s.partners.Create(ctx, actor, kind, p)
	if err != nil {
		return nil, err
	}
	s.backupTables(ctx, partyTable(kind))
	return created, nil
}

func (s *appService) ListParties(ctx context.Context, kind core.PartyKind) ([]core.Party, error) {
	return s.partners.GetParties(ctx, kind)
}

func (s *appService) DeleteParty(ctx context.Context, actor core.Actor, kind core.PartyKind, id int) error {
	if err := s.partners.Delete(ctx, actor, kind, id); err != nil {
		return err
	}
	s.backupTables(ctx, partyTable(kind))
	return nil
}

func (s *appService) AllocatePO(ctx context.Context, actor core.Actor, req core.AllocationRequest) (*core.FinalizedPO, error) {
	po, err := s.allocations.Allocate(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	s.backupTables(ctx, "boq_items")
	if _, err := s.exporter.AppendPOSummary(po); err != nil {
		log.Printf("PO summary backup for %s failed: %v", po.PONumber, err)
	}
	return po, nil
}

func (s *appService) GeneratePODocument(ctx context.Context, actor core.Actor, req DocumentRequest) (*DocumentResult, error) {
	supplier, err := s.partners.GetParty(ctx, core.PartySupplier, req.SupplierID)
	if err != nil {
		return nil, err
	}
	billTo, err := s.partners.GetParty(ctx, core.PartyBillTo, req.BillToID)
	if err != nil {
		return nil, err
	}
	shipTo, err := s.partners.GetParty(ctx, core.PartyShipTo, req.ShipToID)
	if err != nil {
		return nil, err
	}

	po, err := s.AllocatePO(ctx, actor, req.Allocation)
	if err != nil {
		return nil, err
	}

	lines := make([]document.Line, 0, len(po.Lines))
	for _, cl := range po.Lines {
		item, err := s.ledger.GetItem(ctx, po.ProjectID, cl.BOQRef)
		if err != nil {
			return nil, err
		}
		lines = append(lines, document.Line{
			Description: item.Description,
			Make:        item.Make,
			Model:       item.Model,
			Unit:        item.Unit,
			Quantity:    cl.Quantity,
			UnitPrice:   cl.UnitPrice,
			Total:       cl.LineTotal,
		})
	}

	workbook, err := document.GenerateWorkbook(document.PurchaseOrder{
		Number:     po.PONumber,
		Date:       po.AllocatedAt,
		Reference:  req.Reference,
		Supplier:   *supplier,
		BillTo:     *billTo,
		ShipTo:     *shipTo,
		Lines:      lines,
		Subtotal:   po.Subtotal,
		TaxPercent: po.TaxPercent,
		CGSTAmount: po.CGSTAmount,
		SGSTAmount: po.SGSTAmount,
		GrandTotal: po.GrandTotal,
		Terms:      req.Terms,
		Protect:    req.Protect,
		Password:   req.Password,
	})
	if err != nil {
		// The allocation already committed; surface the render failure
		// without pretending the PO does not exist.
		return nil, fmt.Errorf("render PO %s: %w", po.PONumber, err)
	}

	return &DocumentResult{
		PO:       po,
		Filename: fmt.Sprintf("Purchase_Order_%s.xlsx", sanitizeFilename(po.PONumber)),
		Workbook: workbook,
	}, nil
}

func (s *appService) BackupAll(ctx context.Context, actor core.Actor) ([]string, error) {
	if !actor.IsAdmin() {
		return nil, core.ErrForbidden
	}
	return s.exporter.ExportAll(ctx)
}

// backupTables snapshots the named tables after a successful write. Failures
// are logged, never surfaced: the database commit is the source of truth and
// the spreadsheets are a convenience copy.
func (s *appService) backupTables(ctx context.Context, tables ...string) {
	for _, table := range tables {
		if _, err := s.exporter.ExportTable(ctx, table); err != nil {
			log.Printf("backup of %s failed: %v", table, err)
		}
	}
}

func partyTable(kind core.PartyKind) string {
	switch kind {
	case core.PartyBillTo:
		return "bill_to_companies"
	case core.PartyShipTo:
		return "ship_to_addresses"
	default:
		return "suppliers"
	}
}

// sanitizeFilename swaps the path separator out of a PO number so it can name
// a download.
func sanitizeFilename(poNumber string) string {
	out := []rune(poNumber)
	for i, r := range out {
		if r == '/' || r == '\\' {
			out[i] = '_'
		}
	}
	return string(out)
}

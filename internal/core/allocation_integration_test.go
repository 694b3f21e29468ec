package core_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"boq-procurement/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE boq_items, projects, locations, po_counters,
			suppliers, bill_to_companies, ship_to_addresses, users
			RESTART IDENTITY CASCADE;

		INSERT INTO users (id, username, password_hash, role, name) VALUES
		(1, 'admin', 'x', 'admin', 'Test Admin'),
		(2, 'staff', 'x', 'staff', 'Test Staff');
		SELECT setval('users_id_seq', 2);

		INSERT INTO projects (id, name, created_by) VALUES (1, 'Substation Upgrade', 1);
		SELECT setval('projects_id_seq', 1);

		INSERT INTO boq_items (project_id, boq_ref, description, unit, boq_qty, rate, amount, balance_to_deliver) VALUES
		(1, 'A-1', 'Power cable 4c x 16sqmm', 'Mtr', 100, 50.00, 5000.00, 100),
		(1, 'A-2', 'Cable tray 300mm', 'Mtr', 200, 80.00, 16000.00, 200);

		INSERT INTO locations (location_code, location_name) VALUES
		('HR', 'Haryana'), ('MH', 'Maharashtra');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func newAllocationService(pool *pgxpool.Pool) core.AllocationService {
	ledger := core.NewDeliveryLedgerService(pool)
	sequences := core.NewSequenceService(pool)
	return core.NewAllocationService(pool, ledger, sequences, core.DefaultPolicy())
}

var (
	adminActor = core.Actor{UserID: 1, Role: core.RoleAdmin}
	staffActor = core.Actor{UserID: 2, Role: core.RoleStaff}
)

func TestAllocate_CommitsLedgerAndSerial(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newAllocationService(pool)
	ctx := context.Background()

	po, err := svc.Allocate(ctx, adminActor, core.AllocationRequest{
		LocationCode: "HR",
		ProjectID:    1,
		FiscalDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		SlotIndex:    1,
		Lines: []core.POLineInput{
			{BOQRef: "A-1", Quantity: decimal.NewFromInt(40), UnitPrice: decimal.RequireFromString("52.00")},
		},
	})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	if po.PONumber != "ZTPL-HR/2K25-2K26-001" {
		t.Errorf("PO number = %q, want ZTPL-HR/2K25-2K26-001", po.PONumber)
	}
	if po.Serial != 1 {
		t.Errorf("serial = %d, want 1", po.Serial)
	}
	if !po.Subtotal.Equal(decimal.RequireFromString("2080.00")) {
		t.Errorf("subtotal = %s, want 2080.00", po.Subtotal)
	}
	if !po.TaxAmount.Equal(decimal.RequireFromString("374.40")) {
		t.Errorf("tax amount = %s, want 374.40", po.TaxAmount)
	}
	if !po.GrandTotal.Equal(decimal.RequireFromString("2454.40")) {
		t.Errorf("grand total = %s, want 2454.40", po.GrandTotal)
	}
	if len(po.Lines) != 1 || !po.Lines[0].NewBalance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("line new balance = %v, want 60", po.Lines)
	}

	// The ledger must reflect the commit.
	ledger := core.NewDeliveryLedgerService(pool)
	item, err := ledger.GetItem(ctx, 1, "A-1")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if !item.DeliveredQty[0].Equal(decimal.NewFromInt(40)) {
		t.Errorf("slot 1 = %s, want 40", item.DeliveredQty[0])
	}
	if !item.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("balance = %s, want 60", item.Balance)
	}
}

func TestAllocate_RejectionLeavesStateIntact(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newAllocationService(pool)
	ctx := context.Background()
	fiscalDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	// First allocation consumes 60 of the 100 balance.
	_, err := svc.Allocate(ctx, adminActor, core.AllocationRequest{
		LocationCode: "HR", ProjectID: 1, FiscalDate: fiscalDate, SlotIndex: 1,
		Lines: []core.POLineInput{
			{BOQRef: "A-1", Quantity: decimal.NewFromInt(60), UnitPrice: decimal.RequireFromString("50.00")},
		},
	})
	if err != nil {
		t.Fatalf("first Allocate failed: %v", err)
	}

	// Second allocation asks for 50 against the remaining 40.
	_, err = svc.Allocate(ctx, adminActor, core.AllocationRequest{
		LocationCode: "HR", ProjectID: 1, FiscalDate: fiscalDate, SlotIndex: 2,
		Lines: []core.POLineInput{
			{BOQRef: "A-1", Quantity: decimal.NewFromInt(50), UnitPrice: decimal.RequireFromString("50.00")},
		},
	})
	var verr *core.ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verr.Lines) != 1 || len(verr.Lines[0].Violations) != 1 {
		t.Fatalf("unexpected violations: %+v", verr.Lines)
	}
	v := verr.Lines[0].Violations[0]
	if v.Kind != core.ViolationBalanceExceeded {
		t.Errorf("violation kind = %s, want %s", v.Kind, core.ViolationBalanceExceeded)
	}
	if v.Requested != "50.00" || v.Limit != "40.00" {
		t.Errorf("violation values = {%s %s}, want {50.00 40.00}", v.Requested, v.Limit)
	}

	// The first commit must be intact and untouched by the rejection.
	ledger := core.NewDeliveryLedgerService(pool)
	item, err := ledger.GetItem(ctx, 1, "A-1")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if !item.Balance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("balance after rejection = %s, want 40", item.Balance)
	}
	if !item.DeliveredQty[1].IsZero() {
		t.Errorf("slot 2 after rejection = %s, want 0", item.DeliveredQty[1])
	}

	// The rejection must not burn a serial: the next success gets 002.
	po, err := svc.Allocate(ctx, adminActor, core.AllocationRequest{
		LocationCode: "HR", ProjectID: 1, FiscalDate: fiscalDate, SlotIndex: 2,
		Lines: []core.POLineInput{
			{BOQRef: "A-1", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("50.00")},
		},
	})
	if err != nil {
		t.Fatalf("third Allocate failed: %v", err)
	}
	if po.Serial != 2 {
		t.Errorf("serial after rejection = %d, want 2", po.Serial)
	}
}

func TestAllocate_AllOrNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newAllocationService(pool)
	ctx := context.Background()

	// One acceptable line plus one over-balance line: neither may commit.
	_, err := svc.Allocate(ctx, adminActor, core.AllocationRequest{
		LocationCode: "HR", ProjectID: 1,
		FiscalDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), SlotIndex: 1,
		Lines: []core.POLineInput{
			{BOQRef: "A-1", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("50.00")},
			{BOQRef: "A-2", Quantity: decimal.NewFromInt(500), UnitPrice: decimal.RequireFromString("80.00")},
		},
	})
	var verr *core.ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}

	ledger := core.NewDeliveryLedgerService(pool)
	for _, ref := range []string{"A-1", "A-2"} {
		item, err := ledger.GetItem(ctx, 1, ref)
		if err != nil {
			t.Fatalf("GetItem(%s) failed: %v", ref, err)
		}
		if !item.TotalDelivered.IsZero() {
			t.Errorf("item %s mutated by rejected allocation: total = %s", ref, item.TotalDelivered)
		}
	}
}

func TestAllocate_StaffCannotRaiseUnitPrice(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newAllocationService(pool)
	ctx := context.Background()

	// 52.00 is within the admin escalation ceiling but above the BOQ rate,
	// which staff may not exceed.
	_, err := svc.Allocate(ctx, staffActor, core.AllocationRequest{
		LocationCode: "HR", ProjectID: 1,
		FiscalDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), SlotIndex: 1,
		Lines: []core.POLineInput{
			{BOQRef: "A-1", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("52.00")},
		},
	})
	var verr *core.ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if verr.Lines[0].Violations[0].Kind != core.ViolationRateEditForbidden {
		t.Errorf("violation kind = %s, want %s", verr.Lines[0].Violations[0].Kind, core.ViolationRateEditForbidden)
	}

	// The same request from an admin succeeds.
	if _, err := svc.Allocate(ctx, adminActor, core.AllocationRequest{
		LocationCode: "HR", ProjectID: 1,
		FiscalDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), SlotIndex: 1,
		Lines: []core.POLineInput{
			{BOQRef: "A-1", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("52.00")},
		},
	}); err != nil {
		t.Fatalf("admin Allocate failed: %v", err)
	}
}

func TestAllocate_ZeroQuantityLinesSkipped(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newAllocationService(pool)
	ctx := context.Background()

	po, err := svc.Allocate(ctx, adminActor, core.AllocationRequest{
		LocationCode: "HR", ProjectID: 1,
		FiscalDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), SlotIndex: 1,
		Lines: []core.POLineInput{
			{BOQRef: "A-1", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("50.00")},
			{BOQRef: "A-2", Quantity: decimal.Zero, UnitPrice: decimal.RequireFromString("80.00")},
		},
	})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if len(po.Lines) != 1 {
		t.Errorf("committed lines = %d, want 1 (zero-qty line skipped)", len(po.Lines))
	}
}

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AllocationService orchestrates the full PO allocation: validate every line
// against a fresh, locked read of the ledger, and on full acceptance commit
// the serial bump and every slot mutation in one transaction.
type AllocationService interface {
	// Allocate returns the finalized PO on success. On guardrail failure it
	// returns *ValidationErrors listing every offending line, and no ledger
	// state is mutated. Storage failures abort the whole transaction and
	// surface wrapped; the caller may retry.
	Allocate(ctx context.Context, actor Actor, req AllocationRequest) (*FinalizedPO, error)
}

type allocationService struct {
	pool      *pgxpool.Pool
	ledger    DeliveryLedgerService
	sequences SequenceService
	policy    AllocationPolicy
}

// NewAllocationService constructs the PO allocation engine.
func NewAllocationService(pool *pgxpool.Pool, ledger DeliveryLedgerService, sequences SequenceService, policy AllocationPolicy) AllocationService {
	return &allocationService{pool: pool, ledger: ledger, sequences: sequences, policy: policy}
}

func (s *allocationService) Allocate(ctx context.Context, actor Actor, req AllocationRequest) (*FinalizedPO, error) {
	if req.SlotIndex < 1 || req.SlotIndex > DeliverySlotCount {
		return nil, &IntegrityError{Detail: fmt.Sprintf("delivery slot %d out of range 1-%d", req.SlotIndex, DeliverySlotCount)}
	}
	if len(req.Lines) == 0 {
		return nil, &IntegrityError{Detail: "purchase order must have at least one line"}
	}
	seen := make(map[string]bool, len(req.Lines))
	for _, l := range req.Lines {
		if l.Quantity.IsNegative() {
			return nil, &IntegrityError{Detail: fmt.Sprintf("line %q: quantity cannot be negative", l.BOQRef)}
		}
		if seen[l.BOQRef] {
			return nil, &IntegrityError{Detail: fmt.Sprintf("line %q appears more than once", l.BOQRef)}
		}
		seen[l.BOQRef] = true
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin allocation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var projectName string
	if err := tx.QueryRow(ctx, "SELECT name FROM projects WHERE id = $1", req.ProjectID).Scan(&projectName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &IntegrityError{Detail: fmt.Sprintf("project %d not found", req.ProjectID)}
		}
		return nil, fmt.Errorf("resolve project %d: %w", req.ProjectID, err)
	}

	var locationExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM locations WHERE location_code = $1)",
		req.LocationCode,
	).Scan(&locationExists); err != nil {
		return nil, fmt.Errorf("resolve location %s: %w", req.LocationCode, err)
	}
	if !locationExists {
		return nil, &IntegrityError{Detail: fmt.Sprintf("location %q not found", req.LocationCode)}
	}

	// Phase 1: lock and validate every non-zero line. Violations are
	// collected across all lines so the caller sees every problem at once.
	type checkedLine struct {
		input POLineInput
		snap  *ItemSnapshot
	}
	var toCommit []checkedLine
	rejections := &ValidationErrors{}

	for _, line := range req.Lines {
		if line.Quantity.IsZero() {
			continue
		}

		snap, err := s.ledger.SnapshotForUpdateTx(ctx, tx, req.ProjectID, line.BOQRef)
		if err != nil {
			return nil, err
		}

		violations := ValidateLine(*snap, line.Quantity, line.UnitPrice, s.policy)

		// Staff may not price above the BOQ reference rate at all; the
		// 10% escalation headroom is reserved for admins.
		if !actor.IsAdmin() && line.UnitPrice.GreaterThan(snap.Rate) {
			violations = append(violations, Violation{
				Kind:      ViolationRateEditForbidden,
				Requested: line.UnitPrice.StringFixed(2),
				Limit:     snap.Rate.StringFixed(2),
			})
		}

		rejections.Add(line.BOQRef, violations)
		toCommit = append(toCommit, checkedLine{input: line, snap: snap})
	}

	if !rejections.Empty() {
		// The deferred rollback releases the row locks; nothing was written.
		return nil, rejections
	}
	if len(toCommit) == 0 {
		return nil, &IntegrityError{Detail: "purchase order has no non-zero quantity line"}
	}

	// Phase 2: issue the PO number and apply every delivery in this same
	// transaction, so a failure anywhere leaves neither a half-delivered PO
	// nor a burned serial.
	serial, err := s.sequences.NextTx(ctx, tx, req.LocationCode)
	if err != nil {
		return nil, err
	}
	fyLabel := FiscalYearLabel(req.FiscalDate)
	poNumber := FormatPONumber(s.policy.OrgPrefix, req.LocationCode, fyLabel, serial)

	po := &FinalizedPO{
		PONumber:     poNumber,
		Serial:       serial,
		FiscalYear:   fyLabel,
		LocationCode: req.LocationCode,
		ProjectID:    req.ProjectID,
		ProjectName:  projectName,
		SlotIndex:    req.SlotIndex,
		AllocatedBy:  actor.UserID,
		AllocatedAt:  time.Now(),
	}

	subtotal := decimal.Zero
	for _, cl := range toCommit {
		if err := s.ledger.ApplyDeliveryTx(ctx, tx, cl.snap.ItemID, req.SlotIndex, cl.input.Quantity); err != nil {
			return nil, err
		}
		lineTotal := cl.input.Quantity.Mul(cl.input.UnitPrice)
		subtotal = subtotal.Add(lineTotal)
		po.Lines = append(po.Lines, CommittedLine{
			BOQRef:     cl.input.BOQRef,
			Quantity:   cl.input.Quantity,
			UnitPrice:  cl.input.UnitPrice,
			LineTotal:  lineTotal,
			NewBalance: cl.snap.Balance.Sub(cl.input.Quantity),
		})
	}

	taxPercent := s.policy.TaxPercent
	if req.TaxPercent != nil {
		taxPercent = *req.TaxPercent
	}
	hundred := decimal.NewFromInt(100)
	two := decimal.NewFromInt(2)

	po.Subtotal = subtotal
	po.TaxPercent = taxPercent
	po.TaxAmount = subtotal.Mul(taxPercent).Div(hundred)
	po.CGSTAmount = po.TaxAmount.Div(two)
	po.SGSTAmount = po.TaxAmount.Sub(po.CGSTAmount)
	po.GrandTotal = subtotal.Add(po.TaxAmount)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit allocation for %s: %w", poNumber, err)
	}
	return po, nil
}

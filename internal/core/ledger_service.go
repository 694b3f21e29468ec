package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DeliveryLedgerService exposes the per-item delivery ledger: the ten ordered
// delivered-quantity slots, their sum, and the remaining balance against the
// contracted BOQ quantity.
//
// ApplyDeliveryTx performs no validation of its own — the allocation engine
// validates every line first and only then applies deliveries, all inside one
// transaction.
type DeliveryLedgerService interface {
	// Snapshot returns the read-only validation view of one item.
	Snapshot(ctx context.Context, projectID int, boqRef string) (*ItemSnapshot, error)
	// SnapshotForUpdateTx reads the item inside the caller's transaction,
	// taking a row lock so the balance cannot move between validation and
	// the delivery write.
	SnapshotForUpdateTx(ctx context.Context, tx pgx.Tx, projectID int, boqRef string) (*ItemSnapshot, error)
	// ApplyDeliveryTx adds qty to the named slot (1-based) and persists the
	// recomputed total_delivery_qty and balance_to_deliver.
	ApplyDeliveryTx(ctx context.Context, tx pgx.Tx, itemID int, slot int, qty decimal.Decimal) error
	// GetItem returns the full ledger state of one item.
	GetItem(ctx context.Context, projectID int, boqRef string) (*BOQItem, error)
}

type deliveryLedgerService struct {
	pool *pgxpool.Pool
}

// NewDeliveryLedgerService constructs a DeliveryLedgerService backed by the
// boq_items table.
func NewDeliveryLedgerService(pool *pgxpool.Pool) DeliveryLedgerService {
	return &deliveryLedgerService{pool: pool}
}

func (s *deliveryLedgerService) Snapshot(ctx context.Context, projectID int, boqRef string) (*ItemSnapshot, error) {
	snap := &ItemSnapshot{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, boq_ref, boq_qty, rate, balance_to_deliver
		FROM boq_items
		WHERE project_id = $1 AND boq_ref = $2`,
		projectID, boqRef,
	).Scan(&snap.ItemID, &snap.BOQRef, &snap.BOQQty, &snap.Rate, &snap.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &IntegrityError{Detail: fmt.Sprintf("BOQ item %q not found in project %d", boqRef, projectID)}
		}
		return nil, fmt.Errorf("read BOQ item %q: %w", boqRef, err)
	}
	return snap, nil
}

func (s *deliveryLedgerService) SnapshotForUpdateTx(ctx context.Context, tx pgx.Tx, projectID int, boqRef string) (*ItemSnapshot, error) {
	snap := &ItemSnapshot{}
	err := tx.QueryRow(ctx, `
		SELECT id, boq_ref, boq_qty, rate, balance_to_deliver
		FROM boq_items
		WHERE project_id = $1 AND boq_ref = $2
		FOR UPDATE`,
		projectID, boqRef,
	).Scan(&snap.ItemID, &snap.BOQRef, &snap.BOQQty, &snap.Rate, &snap.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &IntegrityError{Detail: fmt.Sprintf("BOQ item %q not found in project %d", boqRef, projectID)}
		}
		return nil, fmt.Errorf("lock BOQ item %q: %w", boqRef, err)
	}
	return snap, nil
}

// ApplyDeliveryTx reads the locked row, adds qty to the requested slot, and
// writes back all ten slots plus the recomputed sum and balance, mirroring how
// the external spreadsheet template derives those two columns.
func (s *deliveryLedgerService) ApplyDeliveryTx(ctx context.Context, tx pgx.Tx, itemID int, slot int, qty decimal.Decimal) error {
	if slot < 1 || slot > DeliverySlotCount {
		return &IntegrityError{Detail: fmt.Sprintf("delivery slot %d out of range 1-%d", slot, DeliverySlotCount)}
	}

	var boqQty decimal.Decimal
	var slots [DeliverySlotCount]decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT boq_qty,
		       delivered_qty_1, delivered_qty_2, delivered_qty_3, delivered_qty_4, delivered_qty_5,
		       delivered_qty_6, delivered_qty_7, delivered_qty_8, delivered_qty_9, delivered_qty_10
		FROM boq_items
		WHERE id = $1
		FOR UPDATE`,
		itemID,
	).Scan(&boqQty,
		&slots[0], &slots[1], &slots[2], &slots[3], &slots[4],
		&slots[5], &slots[6], &slots[7], &slots[8], &slots[9])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &IntegrityError{Detail: fmt.Sprintf("BOQ item %d not found", itemID)}
		}
		return fmt.Errorf("lock BOQ item %d for delivery: %w", itemID, err)
	}

	slots[slot-1] = slots[slot-1].Add(qty)

	total := decimal.Zero
	for _, v := range slots {
		total = total.Add(v)
	}
	balance := boqQty.Sub(total)

	if _, err := tx.Exec(ctx, `
		UPDATE boq_items SET
			delivered_qty_1 = $1, delivered_qty_2 = $2, delivered_qty_3 = $3,
			delivered_qty_4 = $4, delivered_qty_5 = $5, delivered_qty_6 = $6,
			delivered_qty_7 = $7, delivered_qty_8 = $8, delivered_qty_9 = $9,
			delivered_qty_10 = $10, total_delivery_qty = $11, balance_to_deliver = $12
		WHERE id = $13`,
		slots[0], slots[1], slots[2], slots[3], slots[4],
		slots[5], slots[6], slots[7], slots[8], slots[9],
		total, balance, itemID,
	); err != nil {
		return fmt.Errorf("apply delivery to BOQ item %d: %w", itemID, err)
	}
	return nil
}

func (s *deliveryLedgerService) GetItem(ctx context.Context, projectID int, boqRef string) (*BOQItem, error) {
	item := &BOQItem{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, boq_ref, COALESCE(description, ''),
		       COALESCE(make, ''), COALESCE(model, ''), COALESCE(unit, ''),
		       boq_qty, rate, amount,
		       delivered_qty_1, delivered_qty_2, delivered_qty_3, delivered_qty_4, delivered_qty_5,
		       delivered_qty_6, delivered_qty_7, delivered_qty_8, delivered_qty_9, delivered_qty_10,
		       total_delivery_qty, balance_to_deliver, created_at
		FROM boq_items
		WHERE project_id = $1 AND boq_ref = $2`,
		projectID, boqRef,
	).Scan(
		&item.ID, &item.ProjectID, &item.BOQRef, &item.Description, &item.Make, &item.Model, &item.Unit,
		&item.BOQQty, &item.Rate, &item.Amount,
		&item.DeliveredQty[0], &item.DeliveredQty[1], &item.DeliveredQty[2], &item.DeliveredQty[3], &item.DeliveredQty[4],
		&item.DeliveredQty[5], &item.DeliveredQty[6], &item.DeliveredQty[7], &item.DeliveredQty[8], &item.DeliveredQty[9],
		&item.TotalDelivered, &item.Balance, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &IntegrityError{Detail: fmt.Sprintf("BOQ item %q not found in project %d", boqRef, projectID)}
		}
		return nil, fmt.Errorf("get BOQ item %q: %w", boqRef, err)
	}
	return item, nil
}

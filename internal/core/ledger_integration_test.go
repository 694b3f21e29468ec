package core_test

import (
	"context"
	"errors"
	"testing"

	"boq-procurement/internal/core"

	"github.com/shopspring/decimal"
)

func TestApplyDelivery_SlotAccumulation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewDeliveryLedgerService(pool)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx, 1, "A-1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	apply := func(slot int, qty string) {
		t.Helper()
		tx, err := pool.Begin(ctx)
		if err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		defer tx.Rollback(ctx)
		if err := svc.ApplyDeliveryTx(ctx, tx, snap.ItemID, slot, decimal.RequireFromString(qty)); err != nil {
			t.Fatalf("ApplyDeliveryTx(slot %d, qty %s) failed: %v", slot, qty, err)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("commit failed: %v", err)
		}
	}

	apply(3, "12.50")
	apply(3, "7.50") // same slot accumulates
	apply(10, "5.00")

	item, err := svc.GetItem(ctx, 1, "A-1")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if !item.DeliveredQty[2].Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("slot 3 = %s, want 20.00", item.DeliveredQty[2])
	}
	if !item.DeliveredQty[9].Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("slot 10 = %s, want 5.00", item.DeliveredQty[9])
	}
	if !item.TotalDelivered.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("total = %s, want 25.00", item.TotalDelivered)
	}

	// balance_to_deliver must equal boq_qty minus the slot sum.
	if !item.Balance.Equal(item.BOQQty.Sub(item.TotalDelivered)) {
		t.Errorf("balance = %s, want %s", item.Balance, item.BOQQty.Sub(item.TotalDelivered))
	}
}

func TestApplyDelivery_SlotOutOfRange(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewDeliveryLedgerService(pool)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer tx.Rollback(ctx)

	for _, slot := range []int{0, 11, -1} {
		err := svc.ApplyDeliveryTx(ctx, tx, 1, slot, decimal.NewFromInt(1))
		var ierr *core.IntegrityError
		if !errors.As(err, &ierr) {
			t.Errorf("slot %d: expected IntegrityError, got %v", slot, err)
		}
	}
}

func TestApplyDelivery_MissingItem(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewDeliveryLedgerService(pool)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer tx.Rollback(ctx)

	err = svc.ApplyDeliveryTx(ctx, tx, 999999, 1, decimal.NewFromInt(1))
	var ierr *core.IntegrityError
	if !errors.As(err, &ierr) {
		t.Errorf("expected IntegrityError for missing item, got %v", err)
	}
}

func TestSnapshot_MissingRef(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewDeliveryLedgerService(pool)
	_, err := svc.Snapshot(context.Background(), 1, "NOPE")
	var ierr *core.IntegrityError
	if !errors.As(err, &ierr) {
		t.Errorf("expected IntegrityError for unknown BOQ ref, got %v", err)
	}
}

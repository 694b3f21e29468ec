package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceService issues gap-free PO serial numbers per location code. Each
// call returns a strictly greater serial than the previous call for the same
// location; the counter row is created on first use.
type SequenceService interface {
	// Next issues the next serial in its own transaction.
	Next(ctx context.Context, locationCode string) (int64, error)
	// NextTx issues the next serial using an existing transaction. Use when
	// the caller controls the transaction boundary (the allocation engine)
	// so that the serial bump and the ledger writes are fully atomic.
	NextTx(ctx context.Context, tx pgx.Tx, locationCode string) (int64, error)
	// PeekNext returns the serial the next call to Next would issue, without
	// bumping the counter. For display previews only; concurrent allocations
	// may take the previewed number first.
	PeekNext(ctx context.Context, locationCode string) (int64, error)
}

type sequenceService struct {
	pool *pgxpool.Pool
}

// NewSequenceService constructs a SequenceService backed by the po_counters
// table.
func NewSequenceService(pool *pgxpool.Pool) SequenceService {
	return &sequenceService{pool: pool}
}

func (s *sequenceService) Next(ctx context.Context, locationCode string) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	serial, err := nextSerialWithTx(ctx, tx, locationCode)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit serial for %s: %w", locationCode, err)
	}
	return serial, nil
}

func (s *sequenceService) NextTx(ctx context.Context, tx pgx.Tx, locationCode string) (int64, error) {
	return nextSerialWithTx(ctx, tx, locationCode)
}

// nextSerialWithTx performs the atomic read-modify-write: the upsert either
// creates the counter at 1 or increments it, and the row lock it takes
// serializes concurrent callers for the same location. Serials never reset,
// not even across fiscal years.
func nextSerialWithTx(ctx context.Context, tx pgx.Tx, locationCode string) (int64, error) {
	var serial int64
	err := tx.QueryRow(ctx, `
		INSERT INTO po_counters (location_code, last_serial_number)
		VALUES ($1, 1)
		ON CONFLICT (location_code)
		DO UPDATE SET last_serial_number = po_counters.last_serial_number + 1,
		              updated_at = NOW()
		RETURNING last_serial_number
	`, locationCode).Scan(&serial)
	if err != nil {
		return 0, fmt.Errorf("issue serial for location %s: %w", locationCode, err)
	}
	return serial, nil
}

func (s *sequenceService) PeekNext(ctx context.Context, locationCode string) (int64, error) {
	var last int64
	err := s.pool.QueryRow(ctx,
		"SELECT last_serial_number FROM po_counters WHERE location_code = $1",
		locationCode,
	).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 1, nil
		}
		return 0, fmt.Errorf("read counter for location %s: %w", locationCode, err)
	}
	return last + 1, nil
}

// FormatPONumber renders the display form of a PO number, e.g.
// "ZTPL-HR/2K25-2K26-001". The serial is zero-padded to three digits and the
// width grows naturally past 999.
func FormatPONumber(orgPrefix, locationCode, fyLabel string, serial int64) string {
	return fmt.Sprintf("%s-%s/%s-%03d", orgPrefix, locationCode, fyLabel, serial)
}

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PartyKind selects which partner table an operation targets.
type PartyKind string

const (
	PartySupplier PartyKind = "supplier"
	PartyBillTo   PartyKind = "bill_to"
	PartyShipTo   PartyKind = "ship_to"
)

// partyTables maps each kind to its table and name column. The map doubles as
// the whitelist; anything not listed here is rejected before SQL is built.
var partyTables = map[PartyKind]struct {
	table   string
	nameCol string
}{
	PartySupplier: {table: "suppliers", nameCol: "name"},
	PartyBillTo:   {table: "bill_to_companies", nameCol: "company_name"},
	PartyShipTo:   {table: "ship_to_addresses", nameCol: "name"},
}

// PartnerService manages the supplier, bill-to and ship-to records that fill
// the party blocks of a generated PO document.
type PartnerService interface {
	Create(ctx context.Context, actor Actor, kind PartyKind, p Party) (*Party, error)
	GetParties(ctx context.Context, kind PartyKind) ([]Party, error)
	GetParty(ctx context.Context, kind PartyKind, id int) (*Party, error)
	// Delete removes a partner record. Admin only.
	Delete(ctx context.Context, actor Actor, kind PartyKind, id int) error
}

type partnerService struct {
	pool *pgxpool.Pool
}

// NewPartnerService constructs a PartnerService backed by PostgreSQL.
func NewPartnerService(pool *pgxpool.Pool) PartnerService {
	return &partnerService{pool: pool}
}

func (s *partnerService) Create(ctx context.Context, actor Actor, kind PartyKind, p Party) (*Party, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	spec, ok := partyTables[kind]
	if !ok {
		return nil, &IntegrityError{Detail: fmt.Sprintf("unknown party kind %q", kind)}
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, &IntegrityError{Detail: "party name is required"}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, address, gst_number, contact_person, contact_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, %s, address, gst_number, contact_person, contact_number, created_at`,
		spec.table, spec.nameCol, spec.nameCol)

	created := &Party{}
	err := s.pool.QueryRow(ctx, query,
		p.Name, p.Address, p.GSTNumber, p.ContactPerson, p.ContactNumber,
	).Scan(&created.ID, &created.Name, &created.Address, &created.GSTNumber,
		&created.ContactPerson, &created.ContactNumber, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert %s %q: %w", kind, p.Name, err)
	}
	return created, nil
}

func (s *partnerService) GetParties(ctx context.Context, kind PartyKind) ([]Party, error) {
	spec, ok := partyTables[kind]
	if !ok {
		return nil, &IntegrityError{Detail: fmt.Sprintf("unknown party kind %q", kind)}
	}

	query := fmt.Sprintf(`
		SELECT id, %s, COALESCE(address, ''), COALESCE(gst_number, ''),
		       COALESCE(contact_person, ''), COALESCE(contact_number, ''), created_at
		FROM %s ORDER BY %s`,
		spec.nameCol, spec.table, spec.nameCol)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s parties: %w", kind, err)
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.GSTNumber,
			&p.ContactPerson, &p.ContactNumber, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s party: %w", kind, err)
		}
		parties = append(parties, p)
	}
	return parties, nil
}

func (s *partnerService) GetParty(ctx context.Context, kind PartyKind, id int) (*Party, error) {
	spec, ok := partyTables[kind]
	if !ok {
		return nil, &IntegrityError{Detail: fmt.Sprintf("unknown party kind %q", kind)}
	}

	query := fmt.Sprintf(`
		SELECT id, %s, COALESCE(address, ''), COALESCE(gst_number, ''),
		       COALESCE(contact_person, ''), COALESCE(contact_number, ''), created_at
		FROM %s WHERE id = $1`,
		spec.nameCol, spec.table)

	p := &Party{}
	err := s.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Address,
		&p.GSTNumber, &p.ContactPerson, &p.ContactNumber, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &IntegrityError{Detail: fmt.Sprintf("%s %d not found", kind, id)}
		}
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return p, nil
}

func (s *partnerService) Delete(ctx context.Context, actor Actor, kind PartyKind, id int) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	spec, ok := partyTables[kind]
	if !ok {
		return &IntegrityError{Detail: fmt.Sprintf("unknown party kind %q", kind)}
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", spec.table), id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return &IntegrityError{Detail: fmt.Sprintf("%s %d not found", kind, id)}
	}
	return nil
}

package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationService manages the location codes that namespace PO serials.
type LocationService interface {
	// Create registers a new location. The code is upper-cased before
	// storage so "hr" and "HR" name the same counter. Admin only.
	Create(ctx context.Context, actor Actor, code, name string) (*Location, error)
	// GetLocations lists all locations in code order.
	GetLocations(ctx context.Context) ([]Location, error)
	// Delete removes a location. Its PO counter is intentionally left in
	// place so serials continue where they stopped if the code is ever
	// recreated. Admin only.
	Delete(ctx context.Context, actor Actor, locationID int) error
}

type locationService struct {
	pool *pgxpool.Pool
}

// NewLocationService constructs a LocationService backed by PostgreSQL.
func NewLocationService(pool *pgxpool.Pool) LocationService {
	return &locationService{pool: pool}
}

func (s *locationService) Create(ctx context.Context, actor Actor, code, name string) (*Location, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, &IntegrityError{Detail: "location code and name are required"}
	}

	loc := &Location{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO locations (location_code, location_name)
		VALUES ($1, $2)
		RETURNING id, location_code, location_name, created_at`,
		code, name,
	).Scan(&loc.ID, &loc.Code, &loc.Name, &loc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &IntegrityError{Detail: fmt.Sprintf("location code %q already exists", code)}
		}
		return nil, fmt.Errorf("insert location %q: %w", code, err)
	}
	return loc, nil
}

func (s *locationService) GetLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, location_code, location_name, created_at FROM locations ORDER BY location_code")
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.Code, &loc.Name, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

func (s *locationService) Delete(ctx context.Context, actor Actor, locationID int) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM locations WHERE id = $1", locationID)
	if err != nil {
		return fmt.Errorf("delete location %d: %w", locationID, err)
	}
	if tag.RowsAffected() == 0 {
		return &IntegrityError{Detail: fmt.Sprintf("location %d not found", locationID)}
	}
	return nil
}

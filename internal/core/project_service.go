package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProjectService manages projects and the bulk ingestion of their BOQ items.
type ProjectService interface {
	// CreateWithItems inserts a project and all its BOQ lines in one
	// transaction. Every item's total and balance are recomputed from its
	// slots at insert time.
	CreateWithItems(ctx context.Context, actor Actor, name string, items []BOQItemInput) (*Project, error)
	// GetProjects lists all projects, newest first.
	GetProjects(ctx context.Context) ([]Project, error)
	// GetItems returns all BOQ items of a project in boq_ref order.
	GetItems(ctx context.Context, projectID int) ([]BOQItem, error)
	// Delete removes a project and, by cascade, all its BOQ items.
	// Admin only.
	Delete(ctx context.Context, actor Actor, projectID int) error
}

type projectService struct {
	pool *pgxpool.Pool
}

// NewProjectService constructs a ProjectService backed by PostgreSQL.
func NewProjectService(pool *pgxpool.Pool) ProjectService {
	return &projectService{pool: pool}
}

func (s *projectService) CreateWithItems(ctx context.Context, actor Actor, name string, items []BOQItemInput) (*Project, error) {
	if name == "" {
		return nil, &IntegrityError{Detail: "project name is required"}
	}
	if len(items) == 0 {
		return nil, &IntegrityError{Detail: "project must have at least one BOQ item"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p := &Project{}
	if err := tx.QueryRow(ctx, `
		INSERT INTO projects (name, created_by)
		VALUES ($1, $2)
		RETURNING id, name, created_by, created_at`,
		name, actor.UserID,
	).Scan(&p.ID, &p.Name, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert project %q: %w", name, err)
	}

	for i, item := range items {
		total := decimal.Zero
		for _, v := range item.DeliveredQty {
			total = total.Add(v)
		}
		balance := item.BOQQty.Sub(total)

		if _, err := tx.Exec(ctx, `
			INSERT INTO boq_items (
				project_id, boq_ref, description, make, model, unit, boq_qty, rate, amount,
				delivered_qty_1, delivered_qty_2, delivered_qty_3, delivered_qty_4, delivered_qty_5,
				delivered_qty_6, delivered_qty_7, delivered_qty_8, delivered_qty_9, delivered_qty_10,
				total_delivery_qty, balance_to_deliver
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9,
				$10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
				$20, $21
			)`,
			p.ID, item.BOQRef, item.Description, item.Make, item.Model, item.Unit,
			item.BOQQty, item.Rate, item.Amount,
			item.DeliveredQty[0], item.DeliveredQty[1], item.DeliveredQty[2], item.DeliveredQty[3], item.DeliveredQty[4],
			item.DeliveredQty[5], item.DeliveredQty[6], item.DeliveredQty[7], item.DeliveredQty[8], item.DeliveredQty[9],
			total, balance,
		); err != nil {
			if isUniqueViolation(err) {
				return nil, &IntegrityError{Detail: fmt.Sprintf("row %d: duplicate BOQ ref %q in project %q", i+1, item.BOQRef, name)}
			}
			return nil, fmt.Errorf("insert BOQ item %q (row %d): %w", item.BOQRef, i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit project %q: %w", name, err)
	}
	return p, nil
}

func (s *projectService) GetProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, created_by, created_at FROM projects ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *projectService) GetItems(ctx context.Context, projectID int) ([]BOQItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, boq_ref, COALESCE(description, ''),
		       COALESCE(make, ''), COALESCE(model, ''), COALESCE(unit, ''),
		       boq_qty, rate, amount,
		       delivered_qty_1, delivered_qty_2, delivered_qty_3, delivered_qty_4, delivered_qty_5,
		       delivered_qty_6, delivered_qty_7, delivered_qty_8, delivered_qty_9, delivered_qty_10,
		       total_delivery_qty, balance_to_deliver, created_at
		FROM boq_items
		WHERE project_id = $1
		ORDER BY boq_ref`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list BOQ items for project %d: %w", projectID, err)
	}
	defer rows.Close()

	var items []BOQItem
	for rows.Next() {
		var item BOQItem
		if err := rows.Scan(
			&item.ID, &item.ProjectID, &item.BOQRef, &item.Description, &item.Make, &item.Model, &item.Unit,
			&item.BOQQty, &item.Rate, &item.Amount,
			&item.DeliveredQty[0], &item.DeliveredQty[1], &item.DeliveredQty[2], &item.DeliveredQty[3], &item.DeliveredQty[4],
			&item.DeliveredQty[5], &item.DeliveredQty[6], &item.DeliveredQty[7], &item.DeliveredQty[8], &item.DeliveredQty[9],
			&item.TotalDelivered, &item.Balance, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan BOQ item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *projectService) Delete(ctx context.Context, actor Actor, projectID int) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", projectID)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return &IntegrityError{Detail: fmt.Sprintf("project %d not found", projectID)}
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Package allocations provides a PostgreSQL-backed repository for user claims
// against resources. One row exists per (user, resource) pair; the unique
// constraint in the schema enforces that.
package allocations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/resourcekeeper/internal/common"
	"github.com/dmitrijs2005/resourcekeeper/internal/dbx"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
)

// PostgresRepository implements allocation storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the user's claim on the resource, or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, userID string, resourceID string) (*models.Allocation, error) {
	query := `
		SELECT id, user_id, resource_id, amount, created_at, updated_at
		FROM allocations
		WHERE user_id = $1 AND resource_id = $2
	`
	a := &models.Allocation{}
	err := r.db.QueryRowContext(ctx, query, userID, resourceID).
		Scan(&a.ID, &a.UserID, &a.ResourceID, &a.Amount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// ListForResource returns every claim currently on the resource.
func (r *PostgresRepository) ListForResource(ctx context.Context, resourceID string) ([]*models.Allocation, error) {
	query := `
		SELECT id, user_id, resource_id, amount, created_at, updated_at
		FROM allocations
		WHERE resource_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Allocation
	for rows.Next() {
		a := &models.Allocation{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.ResourceID, &a.Amount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListForUser returns the user's claims with their resources embedded.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Allocation, error) {
	query := `
		SELECT a.id, a.user_id, a.resource_id, a.amount, a.created_at, a.updated_at,
		       r.name, r.total_amount, r.created_at, r.updated_at
		FROM allocations a
		JOIN resources r ON r.id = a.resource_id
		WHERE a.user_id = $1
		ORDER BY a.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Allocation
	for rows.Next() {
		a := &models.Allocation{Resource: &models.Resource{}}
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ResourceID, &a.Amount, &a.CreatedAt, &a.UpdatedAt,
			&a.Resource.Name, &a.Resource.TotalAmount, &a.Resource.CreatedAt, &a.Resource.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.Resource.ID = a.ResourceID
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert creates the claim or replaces its amount, keyed on the unique
// (user_id, resource_id) pair. A lost insert race surfaces as common.ErrConflict.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, resourceID string, amount int64) (*models.Allocation, error) {
	query := `
		INSERT INTO allocations (user_id, resource_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, resource_id)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = now()
		RETURNING id, user_id, resource_id, amount, created_at, updated_at
	`
	a := &models.Allocation{}
	err := r.db.QueryRowContext(ctx, query, userID, resourceID, amount).
		Scan(&a.ID, &a.UserID, &a.ResourceID, &a.Amount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) || dbx.IsSerializationFailure(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Delete removes the claim if it exists. Absence is not an error: releasing
// an already-released claim is idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, userID string, resourceID string) error {
	query := `
		DELETE FROM allocations
		WHERE user_id = $1 AND resource_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, resourceID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

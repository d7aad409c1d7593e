// Package resources provides a PostgreSQL-backed repository for resource
// pools and their allocation projections.
package resources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/resourcekeeper/internal/common"
	"github.com/dmitrijs2005/resourcekeeper/internal/dbx"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
)

// PostgresRepository implements resource storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new resource pool.
func (r *PostgresRepository) Create(ctx context.Context, name string, totalAmount int64) (*models.Resource, error) {
	query := `
		INSERT INTO resources (name, total_amount)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	resource := &models.Resource{Name: name, TotalAmount: totalAmount}
	err := r.db.QueryRowContext(ctx, query, name, totalAmount).
		Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return resource, nil
}

// GetForUpdate reads the resource row FOR UPDATE. The caller must run inside
// a transaction; the row lock is released when the transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Resource, error) {
	query := `
		SELECT id, name, total_amount, created_at, updated_at
		FROM resources
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanOne(ctx, query, id)
}

// GetWithAllocations returns the resource and all allocations currently on it.
func (r *PostgresRepository) GetWithAllocations(ctx context.Context, id string) (*models.Resource, error) {
	query := `
		SELECT id, name, total_amount, created_at, updated_at
		FROM resources
		WHERE id = $1
	`
	resource, err := r.scanOne(ctx, query, id)
	if err != nil {
		return nil, err
	}

	allocQuery := `
		SELECT id, user_id, resource_id, amount, created_at, updated_at
		FROM allocations
		WHERE resource_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, allocQuery, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a := &models.Allocation{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.ResourceID, &a.Amount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		resource.Allocations = append(resource.Allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return resource, nil
}

// Update commits a new name and total amount. The capacity check against
// existing allocations is the service's job; this just writes.
func (r *PostgresRepository) Update(ctx context.Context, id string, name string, totalAmount int64) (*models.Resource, error) {
	query := `
		UPDATE resources
		SET name = $2, total_amount = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, total_amount, created_at, updated_at
	`
	resource := &models.Resource{}
	err := r.db.QueryRowContext(ctx, query, id, name, totalAmount).
		Scan(&resource.ID, &resource.Name, &resource.TotalAmount, &resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return resource, nil
}

// Delete removes the resource. Its allocations go with it via the
// ON DELETE CASCADE foreign key. Returns common.ErrorNotFound if absent.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM resources
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ListWithAllocations returns all resources, each with its allocation set.
func (r *PostgresRepository) ListWithAllocations(ctx context.Context) ([]*models.Resource, error) {
	query := `
		SELECT id, name, total_amount, created_at, updated_at
		FROM resources
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Resource
	byID := make(map[string]*models.Resource)
	for rows.Next() {
		resource := &models.Resource{}
		if err := rows.Scan(&resource.ID, &resource.Name, &resource.TotalAmount, &resource.CreatedAt, &resource.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, resource)
		byID[resource.ID] = resource
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	allocQuery := `
		SELECT id, user_id, resource_id, amount, created_at, updated_at
		FROM allocations
		ORDER BY created_at
	`
	allocRows, err := r.db.QueryContext(ctx, allocQuery)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer allocRows.Close()

	for allocRows.Next() {
		a := &models.Allocation{}
		if err := allocRows.Scan(&a.ID, &a.UserID, &a.ResourceID, &a.Amount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if resource, ok := byID[a.ResourceID]; ok {
			resource.Allocations = append(resource.Allocations, a)
		}
	}
	if err := allocRows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, id string) (*models.Resource, error) {
	resource := &models.Resource{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&resource.ID, &resource.Name, &resource.TotalAmount, &resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return resource, nil
}

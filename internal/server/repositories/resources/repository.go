package resources

import (
	"context"

	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, name string, totalAmount int64) (*models.Resource, error)
	// GetForUpdate reads the resource row with an exclusive row lock. Must be
	// called inside a transaction; the lock is held until the transaction ends,
	// serializing all capacity checks against this resource.
	GetForUpdate(ctx context.Context, id string) (*models.Resource, error)
	GetWithAllocations(ctx context.Context, id string) (*models.Resource, error)
	Update(ctx context.Context, id string, name string, totalAmount int64) (*models.Resource, error)
	Delete(ctx context.Context, id string) error
	ListWithAllocations(ctx context.Context) ([]*models.Resource, error)
}

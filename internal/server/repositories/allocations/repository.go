package allocations

import (
	"context"

	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string, resourceID string) (*models.Allocation, error)
	ListForResource(ctx context.Context, resourceID string) ([]*models.Allocation, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Allocation, error)
	// Upsert atomically creates or replaces the claim keyed on
	// (userID, resourceID), setting its amount.
	Upsert(ctx context.Context, userID string, resourceID string, amount int64) (*models.Allocation, error)
	// Delete removes the claim. Deleting an absent claim is a no-op.
	Delete(ctx context.Context, userID string, resourceID string) error
}

package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/resourcekeeper/internal/common"
	"github.com/dmitrijs2005/resourcekeeper/internal/dbx"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/ledger"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/repomanager"
)

// ResourceService manages resource lifecycle: creation, capacity changes and
// deletion, validated against existing allocations.
type ResourceService struct {
	db          dbx.DBTX
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
}

// NewResourceService constructs a ResourceService.
func NewResourceService(db dbx.DBTX, tx dbx.Transactor, m repomanager.RepositoryManager) *ResourceService {
	return &ResourceService{db: db, tx: tx, repomanager: m}
}

func validateResourceInput(name string, totalAmount int64) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", common.ErrInvalidInput)
	}
	if totalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be positive", common.ErrInvalidInput)
	}
	return nil
}

// Create registers a new resource pool. No allocations exist yet, so no
// capacity check is needed.
func (s *ResourceService) Create(ctx context.Context, name string, totalAmount int64) (*models.Resource, error) {
	if err := validateResourceInput(name, totalAmount); err != nil {
		return nil, err
	}
	return s.repomanager.Resources(s.db).Create(ctx, name, totalAmount)
}

// Update changes a resource's name and total capacity. Shrinking below the
// currently allocated total yields a *common.CapacityExceededError reporting
// the allocated amount. The check runs under the same row lock as claim
// changes, so a concurrent claim cannot slip past a shrink.
func (s *ResourceService) Update(ctx context.Context, id string, name string, totalAmount int64) (*models.Resource, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: resource id is required", common.ErrInvalidInput)
	}
	if err := validateResourceInput(name, totalAmount); err != nil {
		return nil, err
	}

	var result *models.Resource
	err := s.tx.WithinTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Resources(tx).GetForUpdate(ctx, id); err != nil {
			return err
		}

		allocs, err := s.repomanager.Allocations(tx).ListForResource(ctx, id)
		if err != nil {
			return err
		}

		allocated := ledger.AllocatedAmount(allocs)
		if totalAmount < allocated {
			return &common.CapacityExceededError{Available: 0, Allocated: allocated}
		}

		result, err = s.repomanager.Resources(tx).Update(ctx, id, name, totalAmount)
		return err
	})
	if err != nil {
		if dbx.IsSerializationFailure(err) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	return result, nil
}

// Delete removes the resource and, by cascade, every allocation on it. The
// bulk removal is permitted only because the resource itself ceases to exist.
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: resource id is required", common.ErrInvalidInput)
	}
	return s.repomanager.Resources(s.db).Delete(ctx, id)
}

// Get returns the resource with its allocations. Snapshot read; may be
// immediately stale, which is acceptable.
func (s *ResourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: resource id is required", common.ErrInvalidInput)
	}
	return s.repomanager.Resources(s.db).GetWithAllocations(ctx, id)
}

// List returns all resources with their allocations.
func (s *ResourceService) List(ctx context.Context) ([]*models.Resource, error) {
	return s.repomanager.Resources(s.db).ListWithAllocations(ctx)
}

// Package services contains server-side business logic. This file implements
// AllocationService, the accounting core that enforces the capacity invariant
// across concurrent claim changes.
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

// AllocationService validates and commits changes to a single user's claim
// against a resource. Every mutating call runs the read-check-write sequence
// in one transaction whose first read locks the resource row, so two
// concurrent claims against the same resource can never both pass the
// capacity check on a stale total.
type AllocationService struct {
	db          dbx.DBTX
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
}

// NewAllocationService constructs an AllocationService. db is the plain read
// handle; tx runs the serialized read-modify-write units.
func NewAllocationService(db dbx.DBTX, tx dbx.Transactor, m repomanager.RepositoryManager) *AllocationService {
	return &AllocationService{db: db, tx: tx, repomanager: m}
}

// Set replaces the user's claim on the resource with amount. An amount of
// zero releases the claim (idempotently); the returned allocation is nil in
// that case. Exceeding the remaining capacity yields a
// *common.CapacityExceededError reporting what is still available.
func (s *AllocationService) Set(ctx context.Context, userID string, resourceID string, amount int64) (*models.Allocation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrInvalidInput)
	}
	if resourceID == "" {
		return nil, fmt.Errorf("%w: resource id is required", common.ErrInvalidInput)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", common.ErrInvalidInput)
	}

	var result *models.Allocation
	err := s.tx.WithinTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// Lock the resource row first. Every capacity check on this resource
		// goes through this lock, so the allocation totals read below cannot
		// change before the write commits.
		resource, err := s.repomanager.Resources(tx).GetForUpdate(ctx, resourceID)
		if err != nil {
			return err
		}

		allocs, err := s.repomanager.Allocations(tx).ListForResource(ctx, resourceID)
		if err != nil {
			return err
		}

		var currentUserAmount int64
		for _, a := range allocs {
			if a.UserID == userID {
				currentUserAmount = a.Amount
			}
		}

		allocated := ledger.AllocatedAmount(allocs)
		available := resource.TotalAmount - (allocated - currentUserAmount)
		if amount > available {
			return &common.CapacityExceededError{Available: available, Allocated: allocated}
		}

		if amount == 0 {
			result = nil
			return s.repomanager.Allocations(tx).Delete(ctx, userID, resourceID)
		}

		result, err = s.repomanager.Allocations(tx).Upsert(ctx, userID, resourceID, amount)
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

// Release removes the user's claim on the resource. Equivalent to
// Set(userID, resourceID, 0); releasing an absent claim succeeds.
func (s *AllocationService) Release(ctx context.Context, userID string, resourceID string) error {
	_, err := s.Set(ctx, userID, resourceID, 0)
	return err
}

// ListForUser returns the user's current claims with their resources
// embedded. Read-only snapshot; no locking.
func (s *AllocationService) ListForUser(ctx context.Context, userID string) ([]*models.Allocation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrInvalidInput)
	}
	return s.repomanager.Allocations(s.db).ListForUser(ctx, userID)
}

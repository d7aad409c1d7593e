// Package ledger computes allocated and remaining totals over a resource's
// allocation set. The functions are pure; amounts are assumed non-negative
// (the accounting service enforces that before anything is persisted).
package ledger

import "github.com/dmitrijs2005/resourcekeeper/internal/server/models"

// AllocatedAmount returns the sum of amounts over the given allocations.
// An empty or nil slice sums to 0.
func AllocatedAmount(allocations []*models.Allocation) int64 {
	var total int64
	for _, a := range allocations {
		total += a.Amount
	}
	return total
}

// RemainingAmount returns the resource's capacity left to claim. The caller
// must pass all allocations currently on the resource for the figure to be
// correct.
func RemainingAmount(resource *models.Resource, allocations []*models.Allocation) int64 {
	return resource.TotalAmount - AllocatedAmount(allocations)
}

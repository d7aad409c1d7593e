package models

import "time"

// Resource is a finite named pool of capacity. The capacity invariant is
// TotalAmount >= sum of its allocations' amounts, at all times.
type Resource struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TotalAmount int64     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Allocations is populated by the *WithAllocations repository reads.
	Allocations []*Allocation `json:"allocations,omitempty"`
}

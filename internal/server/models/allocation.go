package models

import "time"

// Allocation is one user's current claim against one resource. At most one
// row exists per (UserID, ResourceID); a released claim has no row at all.
type Allocation struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ResourceID string    `json:"resource_id"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Resource is populated by the ListForUser repository read.
	Resource *Resource `json:"resource,omitempty"`
}

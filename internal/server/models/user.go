// Package models defines the server-side persistence records.
package models

import "time"

// User is an account that can claim resources. Referenced by allocations via
// its id; authentication details never leave the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

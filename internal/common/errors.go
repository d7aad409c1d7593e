// Package common defines shared constants and sentinel errors used across
// ResourceKeeper components. Callers should use errors.Is to match the
// sentinels and errors.As for typed errors carrying context.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors. Wrap with a reason, e.g.
	// fmt.Errorf("%w: amount must not be negative", common.ErrInvalidInput).
	ErrInvalidInput = errors.New("invalid input")

	// Concurrent-write conflict detected by the storage layer. Transient;
	// the whole operation is safe to retry from scratch.
	ErrConflict = errors.New("conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// CapacityExceededError reports a claim or a capacity shrink that would
// violate a resource's capacity invariant. It carries the numeric context the
// caller needs to offer a corrected value without re-querying.
type CapacityExceededError struct {
	// Available is the remaining capacity the caller may still claim.
	Available int64
	// Allocated is the total currently claimed on the resource.
	Allocated int64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: available=%d allocated=%d", e.Available, e.Allocated)
}

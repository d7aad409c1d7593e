package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/resourcekeeper/internal/common"
)

func newResourceService(t *testing.T) (*ResourceService, *memRepoManager) {
	t.Helper()
	rm := newMemRepoManager()
	return NewResourceService(nil, &memTransactor{}, rm), rm
}

func TestCreateResource(t *testing.T) {
	svc, _ := newResourceService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, "GPU-A", 100)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Name != "GPU-A" || r.TotalAmount != 100 {
		t.Fatalf("unexpected resource: %+v", r)
	}
}

func TestCreateResource_InvalidInput(t *testing.T) {
	svc, _ := newResourceService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		resName     string
		totalAmount int64
	}{
		{"empty name", "", 100},
		{"zero capacity", "GPU-A", 0},
		{"negative capacity", "GPU-A", -5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.resName, tc.totalAmount)
			if !errors.Is(err, common.ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUpdateResource_NotFound(t *testing.T) {
	svc, _ := newResourceService(t)

	_, err := svc.Update(context.Background(), "missing", "Disk", 5)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

// Shrinking a fully claimed pool must fail and report what is claimed.
func TestUpdateResource_CannotShrinkBelowAllocated(t *testing.T) {
	svc, rm := newResourceService(t)
	ctx := context.Background()

	r := rm.store.addResource("Disk", 10)
	alloc := NewAllocationService(nil, &memTransactor{}, rm)
	if _, err := alloc.Set(ctx, "C", r.ID, 10); err != nil {
		t.Fatalf("claim: %v", err)
	}

	_, err := svc.Update(ctx, r.ID, "Disk", 5)
	var capErr *common.CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("want CapacityExceededError, got %v", err)
	}
	if capErr.Allocated != 10 {
		t.Fatalf("allocated = %d, want 10", capErr.Allocated)
	}
}

func TestUpdateResource_GrowAndRename(t *testing.T) {
	svc, rm := newResourceService(t)
	ctx := context.Background()

	r := rm.store.addResource("Disk", 10)
	alloc := NewAllocationService(nil, &memTransactor{}, rm)
	if _, err := alloc.Set(ctx, "C", r.ID, 10); err != nil {
		t.Fatalf("claim: %v", err)
	}

	updated, err := svc.Update(ctx, r.ID, "Disk-2", 20)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Disk-2" || updated.TotalAmount != 20 {
		t.Fatalf("unexpected resource after update: %+v", updated)
	}
}

// Shrinking exactly to the allocated total is allowed.
func TestUpdateResource_ShrinkToAllocatedBoundary(t *testing.T) {
	svc, rm := newResourceService(t)
	ctx := context.Background()

	r := rm.store.addResource("Disk", 10)
	alloc := NewAllocationService(nil, &memTransactor{}, rm)
	if _, err := alloc.Set(ctx, "C", r.ID, 7); err != nil {
		t.Fatalf("claim: %v", err)
	}

	updated, err := svc.Update(ctx, r.ID, "Disk", 7)
	if err != nil {
		t.Fatalf("Update to boundary: %v", err)
	}
	if updated.TotalAmount != 7 {
		t.Fatalf("total = %d, want 7", updated.TotalAmount)
	}
}

func TestDeleteResource(t *testing.T) {
	svc, rm := newResourceService(t)
	ctx := context.Background()

	r := rm.store.addResource("Disk", 10)
	alloc := NewAllocationService(nil, &memTransactor{}, rm)
	if _, err := alloc.Set(ctx, "C", r.ID, 10); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := svc.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rm.store.allocation(r.ID, "C") != nil {
		t.Fatalf("allocations must not survive resource deletion")
	}
	if err := svc.Delete(ctx, r.ID); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("second delete: want ErrorNotFound, got %v", err)
	}
}

func TestGetResource(t *testing.T) {
	svc, rm := newResourceService(t)
	ctx := context.Background()

	r := rm.store.addResource("GPU-A", 100)
	alloc := NewAllocationService(nil, &memTransactor{}, rm)
	if _, err := alloc.Set(ctx, "A", r.ID, 60); err != nil {
		t.Fatalf("claim: %v", err)
	}

	got, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Allocations) != 1 || got.Allocations[0].Amount != 60 {
		t.Fatalf("unexpected allocations: %+v", got.Allocations)
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestListResources(t *testing.T) {
	svc, rm := newResourceService(t)

	rm.store.addResource("GPU-A", 100)
	rm.store.addResource("Disk", 10)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
}

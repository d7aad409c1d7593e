package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/resourcekeeper/internal/common"
	"github.com/dmitrijs2005/resourcekeeper/internal/dbx"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
	allocationsrepo "github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/allocations"
	refreshtokensrepo "github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/refreshtokens"
	resourcesrepo "github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/resources"
	usersrepo "github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/users"
)

// memStore is a shared in-memory backing for the fake repositories.
type memStore struct {
	mu          sync.Mutex
	nextID      int
	resources   map[string]*models.Resource
	allocations map[string]map[string]*models.Allocation // resourceID -> userID
}

func newMemStore() *memStore {
	return &memStore{
		resources:   make(map[string]*models.Resource),
		allocations: make(map[string]map[string]*models.Allocation),
	}
}

func (s *memStore) id() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *memStore) addResource(name string, totalAmount int64) *models.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.Resource{ID: s.id(), Name: name, TotalAmount: totalAmount, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.resources[r.ID] = r
	return r
}

func (s *memStore) allocatedTotal(resourceID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, a := range s.allocations[resourceID] {
		total += a.Amount
	}
	return total
}

func (s *memStore) allocation(resourceID, userID string) *models.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocations[resourceID][userID]
}

// memTransactor serializes units of work the way the row lock does in
// production: one read-check-write at a time.
type memTransactor struct {
	mu sync.Mutex
}

func (t *memTransactor) WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx, nil)
}

type memResourcesRepo struct {
	store *memStore
}

func (r *memResourcesRepo) Create(ctx context.Context, name string, totalAmount int64) (*models.Resource, error) {
	return r.store.addResource(name, totalAmount), nil
}

func (r *memResourcesRepo) GetForUpdate(ctx context.Context, id string) (*models.Resource, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.resources[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *memResourcesRepo) GetWithAllocations(ctx context.Context, id string) (*models.Resource, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.resources[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *res
	for _, a := range r.store.allocations[id] {
		ac := *a
		cp.Allocations = append(cp.Allocations, &ac)
	}
	return &cp, nil
}

func (r *memResourcesRepo) Update(ctx context.Context, id string, name string, totalAmount int64) (*models.Resource, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.resources[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	res.Name = name
	res.TotalAmount = totalAmount
	res.UpdatedAt = time.Now()
	cp := *res
	return &cp, nil
}

func (r *memResourcesRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.resources[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.store.resources, id)
	delete(r.store.allocations, id) // cascade
	return nil
}

func (r *memResourcesRepo) ListWithAllocations(ctx context.Context) ([]*models.Resource, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Resource
	for id, res := range r.store.resources {
		cp := *res
		for _, a := range r.store.allocations[id] {
			ac := *a
			cp.Allocations = append(cp.Allocations, &ac)
		}
		out = append(out, &cp)
	}
	return out, nil
}

type memAllocationsRepo struct {
	store *memStore
}

func (r *memAllocationsRepo) Get(ctx context.Context, userID string, resourceID string) (*models.Allocation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.allocations[resourceID][userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAllocationsRepo) ListForResource(ctx context.Context, resourceID string) ([]*models.Allocation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Allocation
	for _, a := range r.store.allocations[resourceID] {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memAllocationsRepo) ListForUser(ctx context.Context, userID string) ([]*models.Allocation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Allocation
	for resourceID, byUser := range r.store.allocations {
		if a, ok := byUser[userID]; ok {
			cp := *a
			if res, ok := r.store.resources[resourceID]; ok {
				rc := *res
				cp.Resource = &rc
			}
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAllocationsRepo) Upsert(ctx context.Context, userID string, resourceID string, amount int64) (*models.Allocation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byUser := r.store.allocations[resourceID]
	if byUser == nil {
		byUser = make(map[string]*models.Allocation)
		r.store.allocations[resourceID] = byUser
	}
	a, ok := byUser[userID]
	if !ok {
		a = &models.Allocation{ID: r.store.id(), UserID: userID, ResourceID: resourceID, CreatedAt: time.Now()}
		byUser[userID] = a
	}
	a.Amount = amount
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (r *memAllocationsRepo) Delete(ctx context.Context, userID string, resourceID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.allocations[resourceID], userID)
	return nil
}

// memRepoManager vends fake repositories over one shared memStore.
type memRepoManager struct {
	store         *memStore
	users         usersrepo.Repository
	refreshTokens refreshtokensrepo.Repository
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{store: newMemStore()}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Resources(db dbx.DBTX) resourcesrepo.Repository {
	return &memResourcesRepo{store: m.store}
}
func (m *memRepoManager) Allocations(db dbx.DBTX) allocationsrepo.Repository {
	return &memAllocationsRepo{store: m.store}
}
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.users }
func (m *memRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.refreshTokens }

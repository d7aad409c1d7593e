// Package httpapi exposes the accounting services over an authenticated HTTP
// JSON API. It owns routing, auth middleware, and the mapping from the error
// taxonomy to transport status codes; all business rules live in the services.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/resourcekeeper/internal/logging"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/services"
	"github.com/gorilla/mux"
)

// UserService is the authentication surface consumed by the API.
type UserService interface {
	Register(ctx context.Context, email string, password string) (*models.User, error)
	Login(ctx context.Context, email string, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// ResourceService is the resource lifecycle surface consumed by the API.
type ResourceService interface {
	Create(ctx context.Context, name string, totalAmount int64) (*models.Resource, error)
	Update(ctx context.Context, id string, name string, totalAmount int64) (*models.Resource, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context) ([]*models.Resource, error)
}

// AllocationService is the claim accounting surface consumed by the API.
type AllocationService interface {
	Set(ctx context.Context, userID string, resourceID string, amount int64) (*models.Allocation, error)
	Release(ctx context.Context, userID string, resourceID string) error
	ListForUser(ctx context.Context, userID string) ([]*models.Allocation, error)
}

// Server ties the services to a router.
type Server struct {
	address     string
	logger      logging.Logger
	users       UserService
	resources   ResourceService
	allocations AllocationService
	jwtSecret   []byte
	router      *mux.Router
}

// NewServer builds the router and handlers.
func NewServer(address string, l logging.Logger, us UserService, rs ResourceService, as AllocationService, secretKey string) *Server {
	s := &Server{
		address:     address,
		logger:      l.With("module", "httpapi"),
		users:       us,
		resources:   rs,
		allocations: as,
		jwtSecret:   []byte(secretKey),
	}

	r := mux.NewRouter()
	r.Use(s.recoverer)
	r.Use(s.requestLogger)

	r.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.refresh).Methods(http.MethodPost)

	pr := r.PathPrefix("/").Subrouter()
	pr.Use(s.authenticate)

	pr.HandleFunc("/resources", s.listResources).Methods(http.MethodGet)
	pr.HandleFunc("/resources", s.createResource).Methods(http.MethodPost)
	pr.HandleFunc("/resources/{id}", s.getResource).Methods(http.MethodGet)
	pr.HandleFunc("/resources/{id}", s.updateResource).Methods(http.MethodPut)
	pr.HandleFunc("/resources/{id}", s.deleteResource).Methods(http.MethodDelete)

	pr.HandleFunc("/allocations", s.listAllocations).Methods(http.MethodGet)
	pr.HandleFunc("/allocations", s.setAllocation).Methods(http.MethodPost)
	pr.HandleFunc("/allocations", s.releaseAllocation).Methods(http.MethodDelete)

	s.router = r
	return s
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/resourcekeeper/internal/common"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/ledger"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/models"
	"github.com/gorilla/mux"
)

type resourceRequest struct {
	Name        string `json:"name"`
	TotalAmount *int64 `json:"total_amount"`
}

// resourceResponse is a resource with its remaining capacity computed over
// the allocation snapshot that came with it.
type resourceResponse struct {
	*models.Resource
	RemainingAmount int64 `json:"remaining_amount"`
}

func toResourceResponse(r *models.Resource) resourceResponse {
	return resourceResponse{
		Resource:        r,
		RemainingAmount: ledger.RemainingAmount(r, r.Allocations),
	}
}

func (s *Server) listResources(w http.ResponseWriter, r *http.Request) {
	list, err := s.resources.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]resourceResponse, 0, len(list))
	for _, res := range list {
		out = append(out, toResourceResponse(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TotalAmount == nil {
		writeError(w, fmt.Errorf("%w: malformed body", common.ErrInvalidInput))
		return
	}

	resource, err := s.resources.Create(r.Context(), req.Name, *req.TotalAmount)
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "resource created", "resource_id", resource.ID, "total_amount", resource.TotalAmount)
	writeJSON(w, http.StatusCreated, toResourceResponse(resource))
}

func (s *Server) getResource(w http.ResponseWriter, r *http.Request) {
	resource, err := s.resources.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResourceResponse(resource))
}

func (s *Server) updateResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TotalAmount == nil {
		writeError(w, fmt.Errorf("%w: malformed body", common.ErrInvalidInput))
		return
	}

	resource, err := s.resources.Update(r.Context(), mux.Vars(r)["id"], req.Name, *req.TotalAmount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResourceResponse(resource))
}

func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.resources.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "resource deleted", "resource_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "resource deleted"})
}

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/resourcekeeper/internal/common"
)

type allocationRequest struct {
	ResourceID string `json:"resource_id"`
	Amount     *int64 `json:"amount"`
}

func (s *Server) listAllocations(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	list, err := s.allocations.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) setAllocation(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		writeError(w, fmt.Errorf("%w: malformed body", common.ErrInvalidInput))
		return
	}

	allocation, err := s.allocations.Set(r.Context(), userID, req.ResourceID, *req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	// A zero amount removes the allocation, so there is nothing to return.
	if allocation == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"released": true})
		return
	}
	writeJSON(w, http.StatusOK, allocation)
}

func (s *Server) releaseAllocation(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	resourceID := r.URL.Query().Get("resource_id")
	if err := s.allocations.Release(r.Context(), userID, resourceID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"released": true})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/resourcekeeper/internal/common"
)

type errorBody struct {
	Error     string `json:"error"`
	Available *int64 `json:"available,omitempty"`
	Allocated *int64 `json:"allocated,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto transport status codes. Capacity
// errors carry their numeric context so clients can offer a corrected value
// without re-querying.
func writeError(w http.ResponseWriter, err error) {
	var capErr *common.CapacityExceededError
	switch {
	case errors.As(err, &capErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:     "capacity exceeded",
			Available: &capErr.Available,
			Allocated: &capErr.Allocated,
		})
	case errors.Is(err, common.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: "already exists"})
	case errors.Is(err, common.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "conflict, retry the request"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

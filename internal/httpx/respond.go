package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tokokecil/pos-backend/internal/pos"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}

// writeDomainError maps the domain error taxonomy to HTTP status codes with a
// machine-readable kind.
func writeDomainError(w http.ResponseWriter, err error) {
	var nf *pos.ProductNotFoundError
	var short *pos.InsufficientStockError
	switch {
	case errors.Is(err, pos.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "invalid_request"})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: "product_not_found", ProductID: nf.ProductID})
	case errors.As(err, &short):
		writeJSON(w, http.StatusConflict, errorBody{
			Error: err.Error(), Kind: "insufficient_stock",
			ProductID: short.ProductID, Requested: short.Requested, Available: short.Available,
		})
	case errors.Is(err, pos.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Kind: "not_found"})
	case errors.Is(err, pos.ErrRetryExhausted):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "temporarily unavailable, please retry", Kind: "conflict"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

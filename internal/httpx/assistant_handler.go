package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tokokecil/pos-backend/internal/assistant"
	"github.com/tokokecil/pos-backend/internal/pos"
)

// AnswerFunc matches (*assistant.Client).Answer.
type AnswerFunc func(ctx context.Context, query string, history []assistant.Turn, data assistant.BusinessSnapshot) (string, error)

type AssistantHandler struct {
	Store  pos.Store
	Answer AnswerFunc
	Logger *zap.Logger
}

// Data window passed to the model, mirroring what the owner dashboard shows.
const (
	assistantSalesWindow   = 50
	assistantExpenseWindow = 20
)

func (h *AssistantHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireOwner)
		r.Post("/assistant", h.query)
	})
}

func (h *AssistantHandler) query(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query   string           `json:"query"`
		History []assistant.Turn `json:"history,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "query must not be empty", Kind: "invalid_request"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
	defer cancel()

	data, err := h.gather(ctx)
	if err != nil {
		h.Logger.Error("assistant data gathering failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	answer, err := h.Answer(ctx, req.Query, req.History, data)
	if err != nil {
		h.Logger.Error("assistant query failed", zap.Error(err))
		if errors.Is(err, assistant.ErrUpstream) {
			writeJSON(w, http.StatusBadGateway, errorBody{Error: "assistant unavailable"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"response":  answer,
		"timestamp": time.Now().UTC(),
	})
}

func (h *AssistantHandler) gather(ctx context.Context) (assistant.BusinessSnapshot, error) {
	sales, err := h.Store.ListSales(ctx, "", assistantSalesWindow)
	if err != nil {
		return assistant.BusinessSnapshot{}, err
	}
	expenses, err := h.Store.ListExpenses(ctx, assistantExpenseWindow)
	if err != nil {
		return assistant.BusinessSnapshot{}, err
	}
	products, err := h.Store.ListProducts(ctx)
	if err != nil {
		return assistant.BusinessSnapshot{}, err
	}
	return assistant.BusinessSnapshot{Sales: sales, Expenses: expenses, Products: products}, nil
}

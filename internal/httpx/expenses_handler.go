package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tokokecil/pos-backend/internal/pos"
)

type ExpensesHandler struct {
	Store  pos.Store
	Logger *zap.Logger
}

func (h *ExpensesHandler) Register(r chi.Router) {
	r.Post("/expenses", h.create)
	r.Group(func(r chi.Router) {
		r.Use(RequireOwner)
		r.Get("/expenses", h.list)
	})
}

func (h *ExpensesHandler) create(w http.ResponseWriter, r *http.Request) {
	var e pos.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "invalid_request"})
		return
	}
	e.WorkerID = WorkerID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Store.CreateExpense(ctx, e)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.Logger.Info("expense recorded",
		zap.String("expense_id", created.ID),
		zap.String("worker_id", created.WorkerID),
		zap.Int("amount_cents", created.AmountCents),
	)
	writeJSON(w, http.StatusCreated, created)
}

func (h *ExpensesHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	expenses, err := h.Store.ListExpenses(ctx, limit)
	if err != nil {
		h.Logger.Error("list expenses failed", zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

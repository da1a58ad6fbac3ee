package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tokokecil/pos-backend/internal/analytics"
)

type AnalyticsHandler struct {
	Analytics *analytics.Service
	Logger    *zap.Logger
}

func (h *AnalyticsHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireOwner)
		r.Get("/analytics/summary", h.summary)
	})
}

func (h *AnalyticsHandler) summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	out, err := h.Analytics.Summary(ctx, days)
	if err != nil {
		h.Logger.Error("analytics summary failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

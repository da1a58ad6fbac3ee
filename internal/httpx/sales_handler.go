package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/tokokecil/pos-backend/internal/kafka"
	"github.com/tokokecil/pos-backend/internal/pos"
	"github.com/tokokecil/pos-backend/internal/redisx"
)

// Publisher is satisfied by *kafka.Producer; tests substitute a recorder.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type SalesHandler struct {
	Store    pos.Store
	Producer Publisher
	Redis    *redis.Client
	Logger   *zap.Logger
	Service  string
}

type RecordSaleResp struct {
	Success     bool   `json:"success"`
	SaleID      string `json:"sale_id"`
	TotalCents  int    `json:"total_cents"`
	ChangeCents int    `json:"change_cents"`
	Idempotent  bool   `json:"idempotent,omitempty"`
}

func (h *SalesHandler) Register(r chi.Router) {
	r.Post("/sales", h.recordSale)
	r.Get("/sales", h.listSales)
}

func (h *SalesHandler) recordSale(w http.ResponseWriter, r *http.Request) {
	var req pos.SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "invalid_request"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	workerID := WorkerID(r.Context())
	sale, existed, err := h.Store.RecordSale(ctx, workerID, req)
	if err != nil {
		h.Logger.Warn("record sale failed",
			zap.String("worker_id", workerID),
			zap.Error(err),
		)
		writeDomainError(w, err)
		return
	}

	// shortcut for idempotent resubmits (DB stays the source of truth)
	if req.ExternalID != "" && h.Redis != nil {
		idemKey := fmt.Sprintf(redisx.KeyIdemSaleRecord, req.ExternalID)
		_ = h.Redis.Set(ctx, idemKey, sale.ID, redisx.TTLIdempotency).Err()
	}

	if !existed {
		h.publishRecorded(sale, r.Header.Get("X-Request-Id"))
		h.Logger.Info("sale recorded",
			zap.String("sale_id", sale.ID),
			zap.String("worker_id", workerID),
			zap.Int("total_cents", sale.TotalCents),
			zap.Int("change_cents", sale.ChangeCents),
		)
	}

	writeJSON(w, http.StatusCreated, RecordSaleResp{
		Success:     true,
		SaleID:      sale.ID,
		TotalCents:  sale.TotalCents,
		ChangeCents: sale.ChangeCents,
		Idempotent:  existed,
	})
}

// listSales: owners see everything (optionally filtered by ?worker_id=),
// workers only their own.
func (h *SalesHandler) listSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	workerFilter := WorkerID(r.Context())
	if Role(r.Context()) == RoleOwner {
		workerFilter = r.URL.Query().Get("worker_id")
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sales, err := h.Store.ListSales(ctx, workerFilter, limit)
	if err != nil {
		h.Logger.Error("list sales failed", zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (h *SalesHandler) publishRecorded(sale pos.Sale, traceID string) {
	if h.Producer == nil {
		return
	}
	ev := pos.Envelope{
		EventID:       uuid.NewString(),
		EventType:     pos.EventSaleRecorded,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: sale.ID,
		Payload: kafkax.MustMarshal(pos.SaleRecordedPayload{
			SaleID:     sale.ID,
			WorkerID:   sale.WorkerID,
			Lines:      sale.Lines,
			TotalCents: sale.TotalCents,
			Date:       sale.Date,
		}),
	}
	h.Producer.Publish(pos.PartitionKey(sale.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(pos.EventSaleRecorded)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

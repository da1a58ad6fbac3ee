package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tokokecil/pos-backend/internal/pos"
	"github.com/tokokecil/pos-backend/internal/redisx"
)

type ProductsHandler struct {
	Store  pos.Store
	Redis  *redis.Client
	Logger *zap.Logger
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)

	// catalog mutations are owner-only
	r.Group(func(r chi.Router) {
		r.Use(RequireOwner)
		r.Post("/products", h.create)
		r.Put("/products/{id}", h.update)
		r.Delete("/products/{id}", h.delete)
		r.Post("/products/{id}/restock", h.restock)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// short-TTL cache; any catalog mutation drops the key
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyProductCatalog).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	products, err := h.Store.ListProducts(ctx)
	if err != nil {
		h.Logger.Error("list products failed", zap.Error(err))
		writeDomainError(w, err)
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(products); err == nil {
			_ = h.Redis.Set(ctx, redisx.KeyProductCatalog, b, redisx.TTLCatalogCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var p pos.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "invalid_request"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Store.CreateProduct(ctx, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateCatalog(ctx)
	h.Logger.Info("product created", zap.String("product_id", created.ID), zap.String("name", created.Name))
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var p pos.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "invalid_request"})
		return
	}
	p.ID = chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.UpdateProduct(ctx, p); err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateCatalog(ctx)
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteProduct(ctx, id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateCatalog(ctx)
	h.Logger.Info("product deleted", zap.String("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "invalid_request"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Store.Restock(ctx, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateCatalog(ctx)
	h.Logger.Info("product restocked",
		zap.String("product_id", p.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int("stock", p.Stock),
	)
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) invalidateCatalog(ctx context.Context) {
	if h.Redis != nil {
		_ = h.Redis.Del(ctx, redisx.KeyProductCatalog).Err()
	}
}

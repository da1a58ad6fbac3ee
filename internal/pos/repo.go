package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// How many times a conflicting sale transaction is re-run before giving up.
const maxTxAttempts = 3

// RecordSale: fetch -> validate -> commit under one RepeatableRead
// transaction. A concurrent transaction touching any product read here makes
// the commit fail with a serialization error, and the whole sequence is
// re-run against fresh reads; the caller never sees a partially applied sale.
func (r *Repo) RecordSale(ctx context.Context, workerID string, req SaleRequest) (Sale, bool, error) {
	if err := req.Validate(); err != nil {
		return Sale{}, false, err
	}

	// idempotent short-circuit: resubmitting a committed external_id returns
	// the original sale instead of decrementing stock again
	if req.ExternalID != "" {
		sale, err := r.findSaleByExternalID(ctx, req.ExternalID)
		if err == nil {
			return sale, true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, false, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		sale, err := r.recordSaleOnce(ctx, workerID, req)
		if err == nil {
			return sale, false, nil
		}
		if !isSerializationFailure(err) {
			return Sale{}, false, err
		}
		lastErr = err
	}
	return Sale{}, false, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (r *Repo) recordSaleOnce(ctx context.Context, workerID string, req SaleRequest) (Sale, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return Sale{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snapshot, err := readProducts(ctx, tx, req.DistinctProductIDs())
	if err != nil {
		return Sale{}, err
	}

	sale, decs, err := Settle(req, snapshot, workerID, time.Now().UTC())
	if err != nil {
		return Sale{}, err // validation failed, rollback via defer, nothing written
	}
	sale.ID = uuid.NewString()

	for _, d := range decs {
		ct, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			d.ProductID, d.Quantity)
		if err != nil {
			return Sale{}, err
		}
		if ct.RowsAffected() != 1 {
			return Sale{}, &ProductNotFoundError{ProductID: d.ProductID}
		}
	}

	var externalID any
	if sale.ExternalID != "" {
		externalID = sale.ExternalID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO sales(id, external_id, worker_id, total_cents, payment_cents, change_cents, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sale.ID, externalID, sale.WorkerID, sale.TotalCents, sale.PaymentCents, sale.ChangeCents, sale.Date)
	if err != nil {
		return Sale{}, err
	}

	for _, l := range sale.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_items(sale_id, product_id, qty, price_cents)
			VALUES ($1, $2, $3, $4)`,
			sale.ID, l.ProductID, l.Quantity, l.PriceCents,
		)
		if err != nil {
			return Sale{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// readProducts fetches the referenced catalog rows inside the transaction and
// validates them on the way in: a stored row with negative stock or price is
// rejected as corrupt rather than propagated.
func readProducts(ctx context.Context, tx pgx.Tx, ids []string) (map[string]Product, error) {
	args := make([]any, 0, len(ids))
	params := ""
	for i, id := range ids {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	rows, err := tx.Query(ctx, `SELECT id, name, price_cents, stock FROM products WHERE id IN (`+params+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := make(map[string]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock); err != nil {
			return nil, err
		}
		if p.Stock < 0 || p.PriceCents < 0 {
			return nil, fmt.Errorf("%w: product %s has stock=%d price_cents=%d", ErrCorruptRecord, p.ID, p.Stock, p.PriceCents)
		}
		snapshot[p.ID] = p
	}
	return snapshot, rows.Err()
}

func (r *Repo) findSaleByExternalID(ctx context.Context, externalID string) (Sale, error) {
	var s Sale
	err := r.DB.QueryRow(ctx, `
		SELECT id, worker_id, total_cents, payment_cents, change_cents, date
		FROM sales WHERE external_id = $1
	`, externalID).Scan(&s.ID, &s.WorkerID, &s.TotalCents, &s.PaymentCents, &s.ChangeCents, &s.Date)
	if err != nil {
		return Sale{}, err
	}
	s.ExternalID = externalID
	return s, nil
}

// ListSales returns committed sales newest first. Empty workerID lists every
// worker's sales.
func (r *Repo) ListSales(ctx context.Context, workerID string, limit int) ([]Sale, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT id, COALESCE(external_id, ''), worker_id, total_cents, payment_cents, change_cents, date
	      FROM sales`
	args := []any{}
	if workerID != "" {
		q += ` WHERE worker_id = $1`
		args = append(args, workerID)
	}
	q += fmt.Sprintf(` ORDER BY date DESC LIMIT %d`, limit)

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sale
	index := map[string]int{}
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.ExternalID, &s.WorkerID, &s.TotalCents, &s.PaymentCents, &s.ChangeCents, &s.Date); err != nil {
			return nil, err
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	args = make([]any, 0, len(out))
	params := ""
	for i, s := range out {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
		args = append(args, s.ID)
	}
	irows, err := r.DB.Query(ctx, `SELECT sale_id, product_id, qty, price_cents FROM sale_items WHERE sale_id IN (`+params+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var saleID string
		var l SaleLine
		if err := irows.Scan(&saleID, &l.ProductID, &l.Quantity, &l.PriceCents); err != nil {
			return nil, err
		}
		i := index[saleID]
		out[i].Lines = append(out[i].Lines, l)
	}
	return out, irows.Err()
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

package pos

import (
	"fmt"
	"time"
)

// StockDecrement is one write the store must apply when a sale commits.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

func (r SaleRequest) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: items must not be empty", ErrInvalidRequest)
	}
	if r.PaymentCents < 0 {
		return fmt.Errorf("%w: payment must not be negative", ErrInvalidRequest)
	}
	for _, it := range r.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: item missing product id", ErrInvalidRequest)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for product %s", ErrInvalidRequest, it.ProductID)
		}
	}
	return nil
}

// Settle validates a sale request against a catalog snapshot and computes the
// resulting sale plus the stock decrements to apply. It performs no I/O: the
// store adapter calls it on products read inside the same transaction that
// applies the decrements, so either everything in the returned write set
// commits or nothing does.
//
// Prices come from the snapshot, never from the request. ChangeCents may be
// negative: underpayment is caller policy, not checked here.
func Settle(req SaleRequest, snapshot map[string]Product, workerID string, now time.Time) (Sale, []StockDecrement, error) {
	if err := req.Validate(); err != nil {
		return Sale{}, nil, err
	}

	// merge repeated product ids so stock is checked against the combined quantity
	need := make(map[string]int, len(req.Items))
	order := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		if _, ok := need[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		need[it.ProductID] += it.Quantity
	}

	for _, id := range order {
		p, ok := snapshot[id]
		if !ok {
			return Sale{}, nil, &ProductNotFoundError{ProductID: id}
		}
		if need[id] > p.Stock {
			return Sale{}, nil, &InsufficientStockError{
				ProductID: id, Name: p.Name, Requested: need[id], Available: p.Stock,
			}
		}
	}

	lines := make([]SaleLine, 0, len(req.Items))
	total := 0
	for _, it := range req.Items {
		p := snapshot[it.ProductID]
		lines = append(lines, SaleLine{ProductID: it.ProductID, Quantity: it.Quantity, PriceCents: p.PriceCents})
		total += p.PriceCents * it.Quantity
	}

	decs := make([]StockDecrement, 0, len(order))
	for _, id := range order {
		decs = append(decs, StockDecrement{ProductID: id, Quantity: need[id]})
	}

	sale := Sale{
		ExternalID:   req.ExternalID,
		WorkerID:     workerID,
		Lines:        lines,
		TotalCents:   total,
		PaymentCents: req.PaymentCents,
		ChangeCents:  req.PaymentCents - total,
		Date:         now,
	}
	return sale, decs, nil
}

// DistinctProductIDs returns the product ids referenced by the request, in
// first-seen order, for the fetch phase.
func (r SaleRequest) DistinctProductIDs() []string {
	seen := make(map[string]bool, len(r.Items))
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			out = append(out, it.ProductID)
		}
	}
	return out
}

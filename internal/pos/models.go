package pos

import "time"

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	Category   string    `json:"category"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SaleLine is one item on a committed sale. PriceCents is the catalog price
// at the moment the sale was recorded, never a client-supplied value.
type SaleLine struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int    `json:"price_cents"`
}

// Sale is immutable once committed; no update or delete operations exist.
type Sale struct {
	ID           string     `json:"id"`
	ExternalID   string     `json:"external_id,omitempty"`
	WorkerID     string     `json:"worker_id"`
	Lines        []SaleLine `json:"items"`
	TotalCents   int        `json:"total_cents"`
	PaymentCents int        `json:"payment_cents"`
	ChangeCents  int        `json:"change_cents"`
	Date         time.Time  `json:"date"`
}

type Expense struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	AmountCents int       `json:"amount_cents"`
	WorkerID    string    `json:"worker_id,omitempty"`
}

type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SaleRequest is the transient input to RecordSale. ExternalID is optional:
// when set, resubmitting the same request returns the original receipt
// instead of charging twice.
type SaleRequest struct {
	ExternalID   string      `json:"external_id,omitempty"`
	Items        []ItemInput `json:"items"`
	PaymentCents int         `json:"payment_cents"`
}

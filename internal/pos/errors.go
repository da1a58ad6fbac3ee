package pos

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest covers malformed input: empty items, non-positive
	// quantities, negative payment.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCorruptRecord is returned when a stored document fails schema
	// validation at the store boundary (negative stock or price).
	ErrCorruptRecord = errors.New("corrupt stored record")

	// ErrRetryExhausted surfaces when concurrent write-conflicts persisted
	// through every transaction attempt.
	ErrRetryExhausted = errors.New("transaction retries exhausted")

	ErrNotFound = errors.New("not found")
)

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

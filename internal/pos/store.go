package pos

import "context"

// Store is the persistence surface the HTTP layer depends on. *Repo is the
// postgres implementation; tests substitute a fake.
type Store interface {
	// RecordSale runs the fetch-validate-commit sale transaction. existed is
	// true when the request's external id matched an already committed sale
	// and the original receipt was returned instead of charging again.
	RecordSale(ctx context.Context, workerID string, req SaleRequest) (sale Sale, existed bool, err error)
	ListSales(ctx context.Context, workerID string, limit int) ([]Sale, error)

	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, qty int) (Product, error)

	CreateExpense(ctx context.Context, e Expense) (Expense, error)
	ListExpenses(ctx context.Context, limit int) ([]Expense, error)
}

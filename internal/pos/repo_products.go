package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, price_cents, stock, category, COALESCE(image_url, ''), created_at, updated_at
	                              FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if p.Stock < 0 || p.PriceCents < 0 {
			return nil, fmt.Errorf("%w: product %s has stock=%d price_cents=%d", ErrCorruptRecord, p.ID, p.Stock, p.PriceCents)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `SELECT id, name, price_cents, stock, category, COALESCE(image_url, ''), created_at, updated_at
	                           FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return Product{}, err
	}
	if p.Stock < 0 || p.PriceCents < 0 {
		return Product{}, fmt.Errorf("%w: product %s has stock=%d price_cents=%d", ErrCorruptRecord, p.ID, p.Stock, p.PriceCents)
	}
	return p, nil
}

func (r *Repo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if err := validateProductInput(p); err != nil {
		return Product{}, err
	}
	p.ID = uuid.NewString()
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, price_cents, stock, category, image_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.PriceCents, p.Stock, p.Category, p.ImageURL).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) UpdateProduct(ctx context.Context, p Product) error {
	if err := validateProductInput(p); err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name = $2, price_cents = $3, stock = $4, category = $5, image_url = NULLIF($6, ''), updated_at = now()
		WHERE id = $1
	`, p.ID, p.Name, p.PriceCents, p.Stock, p.Category, p.ImageURL)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return &ProductNotFoundError{ProductID: p.ID}
	}
	return nil
}

// DeleteProduct removes a product from the catalog. Historical sales keep the
// product id as a weak reference and stay valid.
func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return &ProductNotFoundError{ProductID: id}
	}
	return nil
}

// Restock adds qty units to a product's stock and returns the updated row.
func (r *Repo) Restock(ctx context.Context, id string, qty int) (Product, error) {
	if qty <= 0 {
		return Product{}, fmt.Errorf("%w: restock quantity must be positive", ErrInvalidRequest)
	}
	var p Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, price_cents, stock, category, COALESCE(image_url, ''), created_at, updated_at
	`, id, qty).Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func validateProductInput(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name must not be empty", ErrInvalidRequest)
	}
	if p.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidRequest)
	}
	return nil
}

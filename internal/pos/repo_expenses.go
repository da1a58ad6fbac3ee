package pos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (r *Repo) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	if strings.TrimSpace(e.Description) == "" {
		return Expense{}, fmt.Errorf("%w: expense description must not be empty", ErrInvalidRequest)
	}
	if e.AmountCents <= 0 {
		return Expense{}, fmt.Errorf("%w: expense amount must be positive", ErrInvalidRequest)
	}
	e.ID = uuid.NewString()
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO expenses(id, date, description, amount_cents, worker_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	`, e.ID, e.Date, e.Description, e.AmountCents, e.WorkerID)
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (r *Repo) ListExpenses(ctx context.Context, limit int) ([]Expense, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, date, description, amount_cents, COALESCE(worker_id, '')
		FROM expenses ORDER BY date DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Description, &e.AmountCents, &e.WorkerID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

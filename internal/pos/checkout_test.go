package pos

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() map[string]Product {
	return map[string]Product{
		"prod-a": {ID: "prod-a", Name: "Coffee", PriceCents: 250, Stock: 10},
		"prod-b": {ID: "prod-b", Name: "Bread", PriceCents: 100, Stock: 5},
	}
}

func TestSettle_HappyPath(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	req := SaleRequest{
		Items: []ItemInput{
			{ProductID: "prod-a", Quantity: 2},
			{ProductID: "prod-b", Quantity: 1},
		},
		PaymentCents: 600,
	}

	sale, decs, err := Settle(req, catalog(), "worker-1", now)
	require.NoError(t, err)

	assert.Equal(t, 600, sale.TotalCents)
	assert.Equal(t, 0, sale.ChangeCents)
	assert.Equal(t, "worker-1", sale.WorkerID)
	assert.Equal(t, now, sale.Date)

	require.Len(t, sale.Lines, 2)
	assert.Equal(t, 250, sale.Lines[0].PriceCents, "line price must come from the catalog")
	assert.Equal(t, 100, sale.Lines[1].PriceCents)

	require.Len(t, decs, 2)
	assert.Equal(t, StockDecrement{ProductID: "prod-a", Quantity: 2}, decs[0])
	assert.Equal(t, StockDecrement{ProductID: "prod-b", Quantity: 1}, decs[1])
}

func TestSettle_InsufficientStock(t *testing.T) {
	snapshot := map[string]Product{
		"prod-a": {ID: "prod-a", Name: "Coffee", PriceCents: 250, Stock: 1},
	}
	req := SaleRequest{
		Items:        []ItemInput{{ProductID: "prod-a", Quantity: 2}},
		PaymentCents: 500,
	}

	_, decs, err := Settle(req, snapshot, "worker-1", time.Now())

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "prod-a", stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)
	assert.Nil(t, decs, "no writes on a failed request")
}

func TestSettle_AnyShortLineFailsWholeRequest(t *testing.T) {
	req := SaleRequest{
		Items: []ItemInput{
			{ProductID: "prod-a", Quantity: 1},  // plenty available
			{ProductID: "prod-b", Quantity: 50}, // short
		},
		PaymentCents: 10000,
	}

	_, decs, err := Settle(req, catalog(), "worker-1", time.Now())

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "prod-b", stockErr.ProductID)
	assert.Nil(t, decs)
}

func TestSettle_ProductNotFound(t *testing.T) {
	req := SaleRequest{
		Items:        []ItemInput{{ProductID: "ghost", Quantity: 1}},
		PaymentCents: 100,
	}

	_, _, err := Settle(req, catalog(), "worker-1", time.Now())

	var nfErr *ProductNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "ghost", nfErr.ProductID)
}

func TestSettle_RepeatedProductIDsCheckedAgainstCombinedQuantity(t *testing.T) {
	snapshot := map[string]Product{
		"prod-a": {ID: "prod-a", Name: "Coffee", PriceCents: 250, Stock: 3},
	}
	req := SaleRequest{
		Items: []ItemInput{
			{ProductID: "prod-a", Quantity: 2},
			{ProductID: "prod-a", Quantity: 2},
		},
		PaymentCents: 1000,
	}

	_, _, err := Settle(req, snapshot, "worker-1", time.Now())

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)

	// within stock the lines stay separate but the decrement is merged
	snapshot["prod-a"] = Product{ID: "prod-a", Name: "Coffee", PriceCents: 250, Stock: 5}
	sale, decs, err := Settle(req, snapshot, "worker-1", time.Now())
	require.NoError(t, err)
	assert.Len(t, sale.Lines, 2)
	require.Len(t, decs, 1)
	assert.Equal(t, 4, decs[0].Quantity)
	assert.Equal(t, 1000, sale.TotalCents)
}

func TestSettle_UnderpaymentAllowedNegativeChange(t *testing.T) {
	req := SaleRequest{
		Items:        []ItemInput{{ProductID: "prod-a", Quantity: 2}},
		PaymentCents: 300,
	}

	sale, _, err := Settle(req, catalog(), "worker-1", time.Now())
	require.NoError(t, err, "underpayment is caller policy, not rejected here")
	assert.Equal(t, -200, sale.ChangeCents)
}

func TestSettle_FailureIsIdempotent(t *testing.T) {
	snapshot := map[string]Product{
		"prod-a": {ID: "prod-a", Name: "Coffee", PriceCents: 250, Stock: 1},
	}
	req := SaleRequest{
		Items:        []ItemInput{{ProductID: "prod-a", Quantity: 2}},
		PaymentCents: 500,
	}

	for i := 0; i < 3; i++ {
		_, decs, err := Settle(req, snapshot, "worker-1", time.Now())
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Nil(t, decs)
		assert.Equal(t, 1, snapshot["prod-a"].Stock, "snapshot untouched")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  SaleRequest
		ok   bool
	}{
		{"empty items", SaleRequest{PaymentCents: 100}, false},
		{"zero quantity", SaleRequest{Items: []ItemInput{{ProductID: "a", Quantity: 0}}, PaymentCents: 100}, false},
		{"negative quantity", SaleRequest{Items: []ItemInput{{ProductID: "a", Quantity: -1}}, PaymentCents: 100}, false},
		{"missing product id", SaleRequest{Items: []ItemInput{{Quantity: 1}}, PaymentCents: 100}, false},
		{"negative payment", SaleRequest{Items: []ItemInput{{ProductID: "a", Quantity: 1}}, PaymentCents: -1}, false},
		{"zero payment ok", SaleRequest{Items: []ItemInput{{ProductID: "a", Quantity: 1}}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidRequest), "want ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestDistinctProductIDs(t *testing.T) {
	req := SaleRequest{Items: []ItemInput{
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
	}}
	assert.Equal(t, []string{"b", "a"}, req.DistinctProductIDs())
}

package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAlertService_ListLowStock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	p, err := catalog.NewProduct("Loratadina", "10mg x 10", decimal.RequireFromString("4.20"), 3, now.AddDate(0, 2, 0))
	require.NoError(t, err)

	t.Run("uses configured threshold when none given", func(t *testing.T) {
		products := new(MockProductQuery)
		svc := NewAlertService(products, 15, 30)
		svc.now = func() time.Time { return now }

		products.On("FindBelowStock", ctx, int64(15), mock.MatchedBy(func(f shared.Filter) bool {
			return f.OrderBy == "stock" && f.OrderDir == "asc" && f.Page == 1
		})).Return([]catalog.Product{*p}, int64(1), nil)

		page, err := svc.ListLowStock(ctx, 0, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Loratadina", page.Items[0].Name)
		assert.Equal(t, "4.20", page.Items[0].UnitPrice)
		assert.Equal(t, int64(1), page.Total)
		products.AssertExpectations(t)
	})

	t.Run("repository error is returned", func(t *testing.T) {
		products := new(MockProductQuery)
		svc := NewAlertService(products, 0, 0)
		products.On("FindBelowStock", ctx, int64(5), mock.Anything).Return(nil, int64(0), errors.New("query failed"))

		_, err := svc.ListLowStock(ctx, 5, shared.Filter{})
		assert.Error(t, err)
	})
}

func TestAlertService_ListExpiringSoon(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	p, err := catalog.NewProduct("Omeprazol", "20mg", decimal.RequireFromString("1.50"), 80, now.AddDate(0, 0, 12))
	require.NoError(t, err)

	products := new(MockProductQuery)
	svc := NewAlertService(products, 10, 30)
	svc.now = func() time.Time { return now }

	products.On("FindExpiringBefore", ctx, now.AddDate(0, 0, 30), mock.Anything).
		Return([]catalog.Product{*p}, int64(1), nil)

	page, err := svc.ListExpiringSoon(ctx, 0, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 12, page.Items[0].DaysToExpiry)
	assert.Equal(t, "2026-10-13", page.Items[0].ExpiryDate)

	_, err = svc.ListExpiringSoon(ctx, -1, shared.Filter{})
	assert.True(t, errors.Is(err, shared.ErrValidationFailed))
}

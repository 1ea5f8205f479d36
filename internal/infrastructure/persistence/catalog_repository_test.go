package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCatalogRepository_Lookups(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormCatalogRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Paracetamol", "5.50", 10)
	supplier := seedSupplier(t, db)
	client := seedClient(t, db, "20123456789")

	gotProduct, err := repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", gotProduct.Name)
	assert.Equal(t, "5.50", gotProduct.UnitPrice.StringFixed(2))

	gotSupplier, err := repo.GetSupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, supplier.Name, gotSupplier.Name)

	gotClient, err := repo.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "20123456789", gotClient.Document)

	tests := []struct {
		name   string
		lookup func() error
		entity string
	}{
		{"product", func() error { _, err := repo.GetProduct(ctx, uuid.New()); return err }, "product"},
		{"supplier", func() error { _, err := repo.GetSupplier(ctx, uuid.New()); return err }, "supplier"},
		{"client", func() error { _, err := repo.GetClient(ctx, uuid.New()); return err }, "client"},
	}
	for _, tt := range tests {
		t.Run("missing "+tt.name, func(t *testing.T) {
			var notFound *shared.NotFoundError
			require.True(t, errors.As(tt.lookup(), &notFound))
			assert.Equal(t, tt.entity, notFound.Entity)
		})
	}
}

func TestGormCatalogRepository_FindBelowStock(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormCatalogRepository(db)

	seedProduct(t, db, "Paracetamol", "5.50", 0)
	seedProduct(t, db, "Ibuprofeno", "3.20", 4)
	seedProduct(t, db, "Amoxicilina", "12.00", 10)
	seedProduct(t, db, "Loratadina", "4.10", 50)

	products, total, err := repo.FindBelowStock(context.Background(), 10,
		shared.Filter{Page: 1, PageSize: 1, OrderBy: "stock", OrderDir: "asc"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Paracetamol", products[0].Name)

	products, _, err = repo.FindBelowStock(context.Background(), 10,
		shared.Filter{Page: 2, PageSize: 1, OrderBy: "stock", OrderDir: "asc"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Ibuprofeno", products[0].Name)
}

func TestGormCatalogRepository_FindExpiringBefore(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormCatalogRepository(db)
	now := time.Now().UTC()

	for name, expiry := range map[string]time.Time{
		"Expired":  now.AddDate(0, 0, -2),
		"Soon":     now.AddDate(0, 0, 10),
		"NextYear": now.AddDate(1, 0, 0),
	} {
		p, err := catalog.NewProduct(name, "", decimal.NewFromInt(1), 5, expiry)
		require.NoError(t, err)
		require.NoError(t, db.Create(p).Error)
	}

	products, total, err := repo.FindExpiringBefore(context.Background(), now.AddDate(0, 0, 30),
		shared.Filter{OrderBy: "expiry_date", OrderDir: "asc"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Expired", products[0].Name)
	assert.Equal(t, "Soon", products[1].Name)
}

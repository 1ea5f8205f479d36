package persistence

import (
	"context"
	"testing"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredOrder(t *testing.T, repo *GormSupplyOrderRepository, supplierID uuid.UUID, lines ...trade.SupplyOrderLineInput) *trade.SupplyOrder {
	t.Helper()
	order, err := trade.NewSupplyOrder(supplierID, lines, "op-1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestGormSupplyOrderRepository_CreateAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSupplyOrderRepository(db)
	supplier := seedSupplier(t, db)
	p1 := seedProduct(t, db, "Paracetamol", "5.50", 0)
	p2 := seedProduct(t, db, "Ibuprofeno", "3.20", 0)

	order := newStoredOrder(t, repo, supplier.ID,
		trade.SupplyOrderLineInput{ProductID: p1.ID, Quantity: 20},
		trade.SupplyOrderLineInput{ProductID: p2.ID, Quantity: 5},
	)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.SupplyOrderStatusPending, found.Status)
	assert.Equal(t, "op-1", found.CreatedBy)
	require.Len(t, found.Lines, 2)
	assert.Equal(t, 1, found.Lines[0].LineNo)
	assert.Equal(t, p1.ID, found.Lines[0].ProductID)
	assert.Equal(t, int64(20), found.Lines[0].Quantity)
	assert.Equal(t, int64(25), found.TotalUnits())

	locked, err := repo.FindByIDForUpdate(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, locked.Lines, 2)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSupplyOrderRepository_UpdateStatus(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSupplyOrderRepository(db)
	supplier := seedSupplier(t, db)
	p := seedProduct(t, db, "Paracetamol", "5.50", 0)
	order := newStoredOrder(t, repo, supplier.ID, trade.SupplyOrderLineInput{ProductID: p.ID, Quantity: 20})
	ctx := context.Background()

	t.Run("applies when the stored status matches", func(t *testing.T) {
		require.NoError(t, order.AdvanceTo(trade.SupplyOrderStatusShipped, "op-2"))
		require.NoError(t, repo.UpdateStatus(ctx, order, trade.SupplyOrderStatusPending))

		stored, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.SupplyOrderStatusShipped, stored.Status)
		assert.NotNil(t, stored.ShippedAt)
		assert.Equal(t, 2, stored.Version)
	})

	t.Run("stale from status is a concurrency conflict", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, order, trade.SupplyOrderStatusPending)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("unknown order is NotFound", func(t *testing.T) {
		ghost := *order
		ghost.ID = uuid.New()
		err := repo.UpdateStatus(ctx, &ghost, trade.SupplyOrderStatusShipped)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSupplyOrderRepository_List(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSupplyOrderRepository(db)
	supplier := seedSupplier(t, db)
	other := seedSupplier(t, db)
	p := seedProduct(t, db, "Paracetamol", "5.50", 0)
	ctx := context.Background()

	shipped := newStoredOrder(t, repo, supplier.ID, trade.SupplyOrderLineInput{ProductID: p.ID, Quantity: 3})
	require.NoError(t, shipped.AdvanceTo(trade.SupplyOrderStatusShipped, ""))
	require.NoError(t, repo.UpdateStatus(ctx, shipped, trade.SupplyOrderStatusPending))
	newStoredOrder(t, repo, supplier.ID, trade.SupplyOrderLineInput{ProductID: p.ID, Quantity: 4})
	newStoredOrder(t, repo, other.ID, trade.SupplyOrderLineInput{ProductID: p.ID, Quantity: 5})

	all, total, err := repo.List(ctx, trade.SupplyOrderFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
	for _, o := range all {
		assert.Len(t, o.Lines, 1)
	}

	pending, total, err := repo.List(ctx, trade.SupplyOrderFilter{
		Filter:     shared.DefaultFilter(),
		Status:     trade.SupplyOrderStatusPending,
		SupplierID: &supplier.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(4), pending[0].Lines[0].Quantity)
}

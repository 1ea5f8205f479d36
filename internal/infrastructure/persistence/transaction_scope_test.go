package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/farmadist/backend/internal/application/uow"
	"github.com/farmadist/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_CommitsOnSuccess(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	p := seedProduct(t, db, "Paracetamol", "5.50", 10)

	err := scope.Execute(context.Background(), func(repos uow.Repositories) error {
		_, err := repos.Stock().Decrease(context.Background(), p.ID, 3)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), stockOf(t, db, p))
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	client := seedClient(t, db, "20123456789")
	p := seedProduct(t, db, "Paracetamol", "5.50", 10)
	boom := errors.New("line 2 failed")

	var saleID string
	err := scope.Execute(context.Background(), func(repos uow.Repositories) error {
		sale, err := trade.NewSale(client.ID, "op-1", []trade.PricedLine{
			{ProductID: p.ID, ProductName: p.Name, Quantity: 4, UnitPrice: p.UnitPrice},
		}, trade.DefaultTaxRate)
		if err != nil {
			return err
		}
		saleID = sale.ID.String()
		if err := repos.Sales().Create(context.Background(), sale); err != nil {
			return err
		}
		if _, err := repos.Stock().Decrease(context.Background(), p.ID, 4); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(10), stockOf(t, db, p))

	var count int64
	require.NoError(t, db.Model(&trade.Sale{}).Where("id = ?", saleID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&trade.SaleLine{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormTransactionScope_RepositoriesShareTransaction(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	p := seedProduct(t, db, "Paracetamol", "5.50", 10)

	err := scope.Execute(context.Background(), func(repos uow.Repositories) error {
		if _, err := repos.Stock().Increase(context.Background(), p.ID, 5); err != nil {
			return err
		}
		seen, err := repos.Catalog().GetProduct(context.Background(), p.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(15), seen.Stock)
		return nil
	})
	require.NoError(t, err)
}

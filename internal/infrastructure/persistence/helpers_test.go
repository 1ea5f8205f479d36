package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a migrated in-memory database on a single connection
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

// newMockDB creates a postgres-dialect GORM connection over sqlmock
func newMockDB(t *testing.T, monitorPings bool) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(monitorPings))
	require.NoError(t, err)
	if monitorPings {
		// gorm.Open pings once when pings are monitored
		mock.ExpectPing()
	}

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "caja x 10", decimal.RequireFromString(price), stock, time.Now().UTC().AddDate(1, 0, 0))
	require.NoError(t, err)
	require.NoError(t, db.WithContext(context.Background()).Create(p).Error)
	return p
}

func seedSupplier(t *testing.T, db *gorm.DB) *catalog.Supplier {
	t.Helper()
	s := catalog.NewSupplier("Droguería Andina", "ventas@andina.pe")
	require.NoError(t, db.Create(s).Error)
	return s
}

func seedClient(t *testing.T, db *gorm.DB, document string) *catalog.Client {
	t.Helper()
	c := catalog.NewClient("Botica San Martín", document)
	require.NoError(t, db.Create(c).Error)
	return c
}

func stockOf(t *testing.T, db *gorm.DB, p *catalog.Product) int64 {
	t.Helper()
	var stock int64
	require.NoError(t, db.Model(&catalog.Product{}).Where("id = ?", p.ID).Pluck("stock", &stock).Error)
	return stock
}

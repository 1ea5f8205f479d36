package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAuditRepository_RecordAndList(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	orderID := uuid.New()
	require.NoError(t, repo.Record(ctx, audit.NewEvent(audit.OperationStockMovement, audit.EntityProduct, productID, "op-1", "direction=OUTBOUND reason=SALE")))
	require.NoError(t, repo.Record(ctx, audit.NewEvent(audit.OperationStockMovement, audit.EntityProduct, productID, "", "direction=INBOUND reason=ORDER_RECEIVED")))
	require.NoError(t, repo.Record(ctx, audit.NewEvent(audit.OperationOrderStatusChange, audit.EntitySupplyOrder, orderID, "op-2", "from=PENDING to=SHIPPED")))

	events, total, err := repo.List(ctx, audit.Filter{Filter: shared.DefaultFilter(), EntityType: audit.EntityProduct, EntityID: &productID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)

	system, total, err := repo.List(ctx, audit.Filter{Filter: shared.DefaultFilter(), ActorID: "SYSTEM"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Contains(t, system[0].Detail, "ORDER_RECEIVED")

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	window, total, err := repo.List(ctx, audit.Filter{Filter: shared.DefaultFilter(), From: &past, To: &future})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, window, 3)
}

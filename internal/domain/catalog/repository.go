package catalog

import (
	"context"
	"time"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Catalog is the read-only lookup the order and sale flows consume.
// Every method returns *shared.NotFoundError when the id is unknown.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
}

// ProductQuery answers inventory alert queries
type ProductQuery interface {
	// FindBelowStock returns products whose stock is strictly under threshold
	FindBelowStock(ctx context.Context, threshold int64, filter shared.Filter) ([]Product, int64, error)
	// FindExpiringBefore returns products expiring before the given date
	FindExpiringBefore(ctx context.Context, before time.Time, filter shared.Filter) ([]Product, int64, error)
}

package inventory

import (
	"context"
	"time"

	"github.com/farmadist/backend/internal/domain/catalog"
	"github.com/farmadist/backend/internal/domain/shared"
)

// DefaultExpiryWarningDays is the look-ahead window when none is configured
const DefaultExpiryWarningDays = 30

// AlertService answers the low-stock and expiring-soon inventory queries
type AlertService struct {
	products          catalog.ProductQuery
	lowStockThreshold int64
	expiryWarningDays int
	now               func() time.Time
}

// NewAlertService creates an AlertService
func NewAlertService(products catalog.ProductQuery, lowStockThreshold int64, expiryWarningDays int) *AlertService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	if expiryWarningDays <= 0 {
		expiryWarningDays = DefaultExpiryWarningDays
	}
	return &AlertService{
		products:          products,
		lowStockThreshold: lowStockThreshold,
		expiryWarningDays: expiryWarningDays,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// ListLowStock returns products with stock strictly under threshold.
// A threshold of zero or less uses the configured default.
func (s *AlertService) ListLowStock(ctx context.Context, threshold int64, filter shared.Filter) (shared.Paginated[ProductAlertResponse], error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	filter.OrderBy = "stock"
	filter.OrderDir = "asc"
	filter = filter.Normalize()

	products, total, err := s.products.FindBelowStock(ctx, threshold, filter)
	if err != nil {
		return shared.Paginated[ProductAlertResponse]{}, err
	}
	return s.toPage(products, total, filter), nil
}

// ListExpiringSoon returns products expiring within the next days days.
// Already expired products are included.
func (s *AlertService) ListExpiringSoon(ctx context.Context, days int, filter shared.Filter) (shared.Paginated[ProductAlertResponse], error) {
	if days < 0 {
		return shared.Paginated[ProductAlertResponse]{}, shared.NewValidationError("days", "must not be negative")
	}
	if days == 0 {
		days = s.expiryWarningDays
	}
	filter.OrderBy = "expiry_date"
	filter.OrderDir = "asc"
	filter = filter.Normalize()

	before := s.now().AddDate(0, 0, days)
	products, total, err := s.products.FindExpiringBefore(ctx, before, filter)
	if err != nil {
		return shared.Paginated[ProductAlertResponse]{}, err
	}
	return s.toPage(products, total, filter), nil
}

func (s *AlertService) toPage(products []catalog.Product, total int64, filter shared.Filter) shared.Paginated[ProductAlertResponse] {
	now := s.now()
	items := make([]ProductAlertResponse, len(products))
	for i, p := range products {
		items[i] = ToProductAlertResponse(p, now)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize)
}

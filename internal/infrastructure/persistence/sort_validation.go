package persistence

import (
	"strings"

	"github.com/farmadist/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"unit_price":  true,
	"stock":       true,
	"expiry_date": true,
}

// SupplyOrderSortFields contains allowed sort fields for supply orders
var SupplyOrderSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"supplier_id": true,
	"shipped_at":  true,
	"received_at": true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"sold_at":     true,
	"client_id":   true,
	"operator_id": true,
	"total":       true,
}

// AuditEventSortFields contains allowed sort fields for audit events
var AuditEventSortFields = map[string]bool{
	"occurred_at": true,
	"operation":   true,
	"entity_type": true,
	"actor_id":    true,
}

// paginate applies a whitelisted ORDER BY plus LIMIT/OFFSET.
// id is always the tie breaker so pages are stable.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.
		Order(field + " " + dir).
		Order("id " + dir).
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}

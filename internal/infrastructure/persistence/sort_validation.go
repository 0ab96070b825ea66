package persistence

import (
	"strings"
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

// CommonSortFields contains fields common to every aggregate
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"version":    true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = withCommon("code", "name", "region", "is_active")

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = withCommon("code", "name", "default_unit", "is_active")

// RateSortFields contains allowed sort fields for rates
var RateSortFields = withCommon("product_id", "unit", "rate", "effective_from", "effective_to")

// CollectionSortFields contains allowed sort fields for collections
var CollectionSortFields = withCommon("collection_date", "quantity", "total_amount", "unit")

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = withCommon("payment_date", "amount", "payment_type", "payment_method")

// RoleSortFields contains allowed sort fields for roles
var RoleSortFields = withCommon("name", "display_name", "is_system")

// UserSortFields contains allowed sort fields for users
var UserSortFields = withCommon("name", "email", "is_active", "last_login_at")

func withCommon(fields ...string) map[string]bool {
	out := make(map[string]bool, len(CommonSortFields)+len(fields))
	for f := range CommonSortFields {
		out[f] = true
	}
	for _, f := range fields {
		out[f] = true
	}
	return out
}

package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	cases := map[string]string{
		"":         "DESC",
		"asc":      "ASC",
		"  Asc ":   "ASC",
		"desc":     "DESC",
		"sideways": "DESC",
		"ASC; DELETE FROM collections;--": "DESC",
	}
	for in, want := range cases {
		assert.Equal(t, want, ValidateSortOrder(in), "input %q", in)
	}
}

func TestValidateSortField_LedgerWhitelists(t *testing.T) {
	tests := []struct {
		name      string
		whitelist map[string]bool
		input     string
		fallback  string
		want      string
	}{
		{"collection date", CollectionSortFields, "collection_date", "created_at", "collection_date"},
		{"collection total", CollectionSortFields, " total_amount ", "created_at", "total_amount"},
		{"payment column on collections", CollectionSortFields, "payment_date", "created_at", "created_at"},
		{"payment amount", PaymentSortFields, "amount", "payment_date", "amount"},
		{"rate effective from", RateSortFields, "effective_from", "effective_from", "effective_from"},
		{"supplier region", SupplierSortFields, "region", "code", "region"},
		{"supplier version", SupplierSortFields, "version", "code", "version"},
		{"user password hash", UserSortFields, "password_hash", "name", "name"},
		{"upper case is not normalised", ProductSortFields, "NAME", "code", "code"},
		{"role system flag", RoleSortFields, "is_system", "name", "is_system"},
		{"blank", RoleSortFields, "   ", "name", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.input, tt.whitelist, tt.fallback))
		})
	}
}

func TestSortWhitelists_IncludeAuditColumns(t *testing.T) {
	for name, whitelist := range map[string]map[string]bool{
		"supplier":   SupplierSortFields,
		"product":    ProductSortFields,
		"rate":       RateSortFields,
		"collection": CollectionSortFields,
		"payment":    PaymentSortFields,
		"role":       RoleSortFields,
		"user":       UserSortFields,
	} {
		for field := range CommonSortFields {
			assert.True(t, whitelist[field], "%s sort fields should allow %s", name, field)
		}
	}
}

func TestValidateSortField_RejectsExpressions(t *testing.T) {
	payloads := []string{
		"amount; DROP TABLE payments;--",
		"amount' OR '1'='1",
		"amount, (SELECT password_hash FROM users)",
		"CASE WHEN 1=1 THEN amount ELSE payment_date END",
		"amount\n; DROP TABLE payments",
	}
	for _, p := range payloads {
		assert.Equal(t, "payment_date", ValidateSortField(p, PaymentSortFields, "payment_date"), "payload %q", p)
	}
}

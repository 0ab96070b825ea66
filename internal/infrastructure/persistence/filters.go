package persistence

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applySearch adds a case-insensitive LIKE across columns.
// LOWER/LIKE is used instead of ILIKE so the same query runs on SQLite.
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func uuidFilter(f shared.Filter, key string) (uuid.UUID, bool) {
	switch v := f.Filters[key].(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case *uuid.UUID:
		if v != nil && *v != uuid.Nil {
			return *v, true
		}
	case string:
		if id, err := uuid.Parse(v); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

func dateFilter(f shared.Filter, key string) (time.Time, bool) {
	switch v := f.Filters[key].(type) {
	case time.Time:
		return shared.TruncateDay(v), !v.IsZero()
	case *time.Time:
		if v != nil {
			return shared.TruncateDay(*v), true
		}
	case string:
		if d, err := shared.ParseDate(v); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func boolFilter(f shared.Filter, key string) (bool, bool) {
	switch v := f.Filters[key].(type) {
	case bool:
		return v, true
	case *bool:
		if v != nil {
			return *v, true
		}
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, true
		}
	}
	return false, false
}

func stringFilter(f shared.Filter, key string) (string, bool) {
	v, ok := f.Filters[key].(string)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// applyDateRange restricts column to [date_from, date_to].
func applyDateRange(query *gorm.DB, f shared.Filter, column string) *gorm.DB {
	if from, ok := dateFilter(f, "date_from"); ok {
		query = query.Where(column+" >= ?", from)
	}
	if to, ok := dateFilter(f, "date_to"); ok {
		query = query.Where(column+" <= ?", to)
	}
	return query
}

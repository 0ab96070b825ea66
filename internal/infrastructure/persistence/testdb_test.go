package persistence

import (
	"testing"

	"github.com/ledger/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the full schema.
// A single connection keeps every session on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := GormConfig(gormlogger.Discard)
	cfg.PrepareStmt = false
	db, err := gorm.Open(sqlite.Open("file::memory:"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

//go:build integration

package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/partner"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/trade"
	"github.com/ledger/backend/internal/infrastructure/migration"
	"github.com/ledger/backend/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a disposable PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), GormConfig(gormlogger.Discard))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.NewFromFS(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_ConcurrentCollectionEdits(t *testing.T) {
	identity.PasswordCost = bcrypt.MinCost
	ctx := context.Background()
	db := newPostgresDB(t)

	roles := NewGormRoleRepository(db)
	users := NewGormUserRepository(db)
	suppliers := NewGormSupplierRepository(db)
	products := NewGormProductRepository(db)
	rates := NewGormRateRepository(db)
	collections := NewGormCollectionRepository(db)

	role, err := identity.NewRole("collector", "Collector", []string{"collection:create"})
	require.NoError(t, err)
	require.NoError(t, roles.Create(ctx, role))
	user, err := identity.NewUser("Field Clerk", "clerk@example.com", "secret123", role.ID)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))

	supplier, err := partner.NewSupplier("SUP-1", "Hill Farm")
	require.NoError(t, err)
	require.NoError(t, suppliers.Create(ctx, supplier))
	product, err := catalog.NewProduct("TEA", "Tea", "kg")
	require.NoError(t, err)
	require.NoError(t, products.Create(ctx, product))
	rate, err := catalog.NewRate(product.ID, "kg", decimal.NewFromInt(80), day("2024-01-01"), nil)
	require.NoError(t, err)
	require.NoError(t, rates.Create(ctx, rate))

	resolve := func(ctx context.Context) trade.RateResolver {
		return func(productID uuid.UUID, unit string, d time.Time) (trade.AppliedRate, error) {
			r, err := rates.FindEffective(ctx, productID, unit, d)
			if err != nil {
				return trade.AppliedRate{}, err
			}
			return trade.AppliedRate{RateID: r.ID, Value: r.Rate}, nil
		}
	}

	c, err := trade.NewCollection(supplier.ID, product.ID, user.ID, day("2024-03-01"), decimal.NewFromInt(10), "kg", resolve(ctx))
	require.NoError(t, err)
	require.NoError(t, collections.Create(ctx, c))

	const writers = 10
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			qty := decimal.NewFromInt(int64(11 + i))
			_, err := collections.Update(ctx, c.ID, 1, func(txCtx context.Context, col *trade.Collection) error {
				return col.Revise(trade.CollectionChange{Quantity: &qty}, resolve(txCtx))
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins)

	stored, err := collections.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.True(t, stored.TotalAmount.Equal(stored.Quantity.Mul(stored.RateApplied).Round(2)))
}

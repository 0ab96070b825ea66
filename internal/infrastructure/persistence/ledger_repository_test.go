package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/finance"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/partner"
	"github.com/ledger/backend/internal/domain/report"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func day(s string) time.Time {
	d, err := shared.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}

type ledgerFixture struct {
	db          *gorm.DB
	suppliers   *GormSupplierRepository
	products    *GormProductRepository
	rates       *GormRateRepository
	collections *GormCollectionRepository
	payments    *GormPaymentRepository
	reports     *GormReportRepository
	supplier    *partner.Supplier
	product     *catalog.Product
	userID      uuid.UUID
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := newTestDB(t)
	f := &ledgerFixture{
		db:          db,
		suppliers:   NewGormSupplierRepository(db),
		products:    NewGormProductRepository(db),
		rates:       NewGormRateRepository(db),
		collections: NewGormCollectionRepository(db),
		payments:    NewGormPaymentRepository(db),
		reports:     NewGormReportRepository(db),
		userID:      uuid.New(),
	}
	ctx := context.Background()

	s, err := partner.NewSupplier("SUP-1", "Green Leaf")
	require.NoError(t, err)
	require.NoError(t, f.suppliers.Create(ctx, s))
	f.supplier = s

	p, err := catalog.NewProduct("TEA", "Tea Leaves", "kg")
	require.NoError(t, err)
	require.NoError(t, f.products.Create(ctx, p))
	f.product = p
	return f
}

func (f *ledgerFixture) addRate(t *testing.T, value string, from string, to *time.Time) *catalog.Rate {
	t.Helper()
	r, err := catalog.NewRate(f.product.ID, "kg", decimal.RequireFromString(value), day(from), to)
	require.NoError(t, err)
	require.NoError(t, f.rates.Create(context.Background(), r))
	return r
}

func (f *ledgerFixture) resolver(ctx context.Context) trade.RateResolver {
	return func(productID uuid.UUID, unit string, d time.Time) (trade.AppliedRate, error) {
		r, err := f.rates.FindEffective(ctx, productID, unit, d)
		if err != nil {
			return trade.AppliedRate{}, catalog.ErrNoEffectiveRate
		}
		return trade.AppliedRate{RateID: r.ID, Value: r.Rate}, nil
	}
}

func (f *ledgerFixture) collect(t *testing.T, on string, qty string) *trade.Collection {
	t.Helper()
	ctx := context.Background()
	c, err := trade.NewCollection(f.supplier.ID, f.product.ID, f.userID, day(on), decimal.RequireFromString(qty), "kg", f.resolver(ctx))
	require.NoError(t, err)
	require.NoError(t, f.collections.Create(ctx, c))
	return c
}

func (f *ledgerFixture) pay(t *testing.T, on string, amount string, kind finance.PaymentType) *finance.Payment {
	t.Helper()
	p, err := finance.NewPayment(f.supplier.ID, f.userID, day(on), decimal.RequireFromString(amount), kind, finance.PaymentMethodCash)
	require.NoError(t, err)
	require.NoError(t, f.payments.Create(context.Background(), p))
	return p
}

func TestRateRepository_FindEffective(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	jan := f.addRate(t, "100.0000", "2024-01-01", dayPtr("2024-01-31"))
	feb := f.addRate(t, "120.0000", "2024-02-01", nil)

	r, err := f.rates.FindEffective(ctx, f.product.ID, "KG", day("2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, jan.ID, r.ID)

	r, err = f.rates.FindEffective(ctx, f.product.ID, "kg", day("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, jan.ID, r.ID, "effective_to is inclusive")

	r, err = f.rates.FindEffective(ctx, f.product.ID, "kg", day("2025-06-01"))
	require.NoError(t, err)
	assert.Equal(t, feb.ID, r.ID)

	_, err = f.rates.FindEffective(ctx, f.product.ID, "kg", day("2023-12-31"))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.rates.FindEffective(ctx, f.product.ID, "litre", day("2024-01-15"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRateRepository_FindOverlapping(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	jan := f.addRate(t, "100", "2024-01-01", dayPtr("2024-01-31"))
	f.addRate(t, "120", "2024-02-01", nil)

	hits, err := f.rates.FindOverlapping(ctx, f.product.ID, "kg", day("2024-01-20"), dayPtr("2024-01-25"), nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, jan.ID, hits[0].ID)

	hits, err = f.rates.FindOverlapping(ctx, f.product.ID, "kg", day("2024-01-20"), nil, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = f.rates.FindOverlapping(ctx, f.product.ID, "kg", day("2024-01-10"), dayPtr("2024-01-12"), &jan.ID)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = f.rates.FindOverlapping(ctx, f.product.ID, "kg", day("2023-01-01"), dayPtr("2023-12-31"), nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCollectionRepository_ReviseInsideTransaction(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.addRate(t, "100", "2024-01-01", dayPtr("2024-01-31"))
	f.addRate(t, "150", "2024-02-01", nil)

	c := f.collect(t, "2024-01-10", "2.5")
	assert.Equal(t, "250.00", c.TotalAmount.StringFixed(2))

	newDate := day("2024-02-10")
	updated, err := f.collections.Update(ctx, c.ID, 1, func(txCtx context.Context, col *trade.Collection) error {
		return col.Revise(trade.CollectionChange{CollectionDate: &newDate}, f.resolver(txCtx))
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.True(t, updated.RateApplied.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "375.00", updated.TotalAmount.StringFixed(2))

	filter := shared.DefaultFilter()
	filter.Filters["supplier_id"] = f.supplier.ID
	filter.Filters["date_from"] = "2024-02-01"
	items, err := f.collections.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, c.ID, items[0].ID)
}

func TestReportRepository(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.addRate(t, "100", "2024-01-01", nil)

	f.collect(t, "2024-01-05", "10")
	f.collect(t, "2024-01-20", "5.5")
	f.pay(t, "2024-01-10", "300", finance.PaymentTypeAdvance)
	f.pay(t, "2024-01-25", "-50", finance.PaymentTypeAdjustment)

	t.Run("totals", func(t *testing.T) {
		totals, err := f.reports.Totals(ctx, report.DateRange{})
		require.NoError(t, err)
		assert.Equal(t, "1550.00", totals.TotalCollected.StringFixed(2))
		assert.Equal(t, "250.00", totals.TotalPaid.StringFixed(2))
		assert.Equal(t, int64(2), totals.CollectionCount)
		assert.Equal(t, int64(2), totals.PaymentCount)
	})

	t.Run("supplier balance", func(t *testing.T) {
		b, err := f.reports.SupplierBalance(ctx, f.supplier.ID, report.DateRange{})
		require.NoError(t, err)
		assert.Equal(t, "1300.00", b.Balance.StringFixed(2))
		require.NotNil(t, b.LastCollectionDate)
		assert.Equal(t, "2024-01-20", shared.FormatDate(*b.LastCollectionDate))

		_, err = f.reports.SupplierBalance(ctx, uuid.New(), report.DateRange{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("balances include suppliers without activity", func(t *testing.T) {
		idle, err := partner.NewSupplier("SUP-2", "Idle Farm")
		require.NoError(t, err)
		require.NoError(t, f.suppliers.Create(ctx, idle))

		rows, err := f.reports.SupplierBalances(ctx, report.DateRange{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, f.supplier.ID, rows[0].SupplierID)
		assert.True(t, rows[1].Balance.IsZero())
	})

	t.Run("range and opening balance", func(t *testing.T) {
		from := day("2024-01-11")
		rng := report.DateRange{From: &from}
		opening, err := f.reports.OpeningBalance(ctx, f.supplier.ID, from)
		require.NoError(t, err)
		assert.Equal(t, "700.00", opening.StringFixed(2))

		entries, err := f.reports.StatementEntries(ctx, f.supplier.ID, rng)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		st := report.BuildStatement(report.SupplierBalance{SupplierID: f.supplier.ID}, rng, opening, entries)
		assert.Equal(t, "1300.00", st.ClosingBalance.StringFixed(2))
	})

	t.Run("product summaries", func(t *testing.T) {
		rows, err := f.reports.ProductSummaries(ctx, report.DateRange{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Tea Leaves", rows[0].ProductName)
		assert.Equal(t, "15.500", rows[0].TotalQuantity.StringFixed(3))
		assert.Equal(t, int64(2), rows[0].CollectionCount)
	})
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	identity.PasswordCost = bcrypt.MinCost
	ctx := context.Background()
	db := newTestDB(t)
	roles := NewGormRoleRepository(db)
	users := NewGormUserRepository(db)

	role, err := identity.NewRole("clerk", "Clerk", []string{"supplier:read"})
	require.NoError(t, err)
	require.NoError(t, roles.Create(ctx, role))

	u, err := identity.NewUser("Ann", "Ann@Example.com", "secret123", role.ID)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, u))

	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, users.TouchLastLogin(ctx, u.ID, at))

	stored, err := users.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
	require.NotNil(t, stored.LastLoginAt)
	assert.True(t, at.Equal(*stored.LastLoginAt))

	n, err := roles.CountUsers(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	loaded, err := roles.FindByName(ctx, "clerk")
	require.NoError(t, err)
	assert.Equal(t, []string{"supplier:read"}, loaded.Permissions)
}

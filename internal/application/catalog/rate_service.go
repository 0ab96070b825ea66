package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrUnknownProduct is returned when a rate or lookup names a missing product
var ErrUnknownProduct = shared.NewDomainError("INVALID_REFERENCE", "Product not found")

// RateService manages rates and resolves the rate effective on a day.
// Every write invalidates the product's cached lookups after it commits.
type RateService struct {
	rateRepo    catalog.RateRepository
	productRepo catalog.ProductRepository
	cache       catalog.RateCache
	tx          shared.TransactionScope
	logger      *zap.Logger
	now         func() time.Time
}

// NewRateService creates a new RateService. cache may be nil.
func NewRateService(
	rateRepo catalog.RateRepository,
	productRepo catalog.ProductRepository,
	cache catalog.RateCache,
	tx shared.TransactionScope,
	logger *zap.Logger,
) *RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{
		rateRepo:    rateRepo,
		productRepo: productRepo,
		cache:       cache,
		tx:          tx,
		logger:      logger,
		now:         time.Now,
	}
}

// Create creates a rate after checking that no active rate for the same
// product and unit overlaps its period
func (s *RateService) Create(ctx context.Context, req CreateRateRequest) (*RateResponse, error) {
	errs := shared.ValidationErrors{}
	from := parseOptionalDate(errs, "effective_from", req.EffectiveFrom)
	to := parseOptionalDate(errs, "effective_to", req.EffectiveTo)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	var fromDay time.Time
	if from != nil {
		fromDay = *from
	}

	rate, err := catalog.NewRate(req.ProductID, req.Unit, req.Rate, fromDay, to)
	if err != nil {
		return nil, err
	}
	rate.SetNotes(req.Notes)
	if req.IsActive != nil && !*req.IsActive {
		rate.Deactivate()
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureProduct(txCtx, rate.ProductID); err != nil {
			return err
		}
		if err := s.checkOverlap(txCtx, rate); err != nil {
			return err
		}
		return s.rateRepo.Create(txCtx, rate)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, rate.ProductID)
	response := ToRateResponse(rate)
	return &response, nil
}

// GetByID retrieves a rate by ID
func (s *RateService) GetByID(ctx context.Context, rateID uuid.UUID) (*RateResponse, error) {
	rate, err := s.rateRepo.FindByID(ctx, rateID)
	if err != nil {
		return nil, err
	}

	response := ToRateResponse(rate)
	return &response, nil
}

// List retrieves a page of rates
func (s *RateService) List(ctx context.Context, filter RateListFilter) (*shared.Paginated[RateResponse], error) {
	domainFilter := filter.toDomain()

	rates, err := s.rateRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.rateRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToRateResponses(rates), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies the requested changes if req.Version still matches.
// Collections already priced with the rate keep their copied value.
func (s *RateService) Update(ctx context.Context, rateID uuid.UUID, req UpdateRateRequest) (*RateResponse, error) {
	updated, err := s.rateRepo.Update(ctx, rateID, req.Version, func(txCtx context.Context, rate *catalog.Rate) error {
		return s.applyUpdate(txCtx, rate, req)
	})
	if err != nil {
		return nil, shared.MapConflict(err, ToRateResponse)
	}

	s.invalidate(ctx, updated.ProductID)
	response := ToRateResponse(updated)
	return &response, nil
}

func (s *RateService) applyUpdate(ctx context.Context, rate *catalog.Rate, req UpdateRateRequest) error {
	errs := shared.ValidationErrors{}
	from, to := rate.EffectiveFrom, rate.EffectiveTo
	if req.EffectiveFrom != nil {
		if d := parseOptionalDate(errs, "effective_from", *req.EffectiveFrom); d != nil {
			from = *d
		}
	}
	switch {
	case req.OpenEnded:
		to = nil
	case req.EffectiveTo != nil:
		to = parseOptionalDate(errs, "effective_to", *req.EffectiveTo)
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if req.Unit != nil {
		if err := rate.SetUnit(*req.Unit); err != nil {
			return err
		}
	}
	if req.Rate != nil {
		if err := rate.SetRate(*req.Rate); err != nil {
			return err
		}
	}
	if err := rate.SetPeriod(from, to); err != nil {
		return err
	}
	if req.Notes != nil {
		rate.SetNotes(*req.Notes)
	}
	if req.IsActive != nil {
		if *req.IsActive {
			rate.Activate()
		} else {
			rate.Deactivate()
		}
	}

	return s.checkOverlap(ctx, rate)
}

// Delete soft-deletes a rate. Collections keep the rate they copied.
func (s *RateService) Delete(ctx context.Context, rateID uuid.UUID, version *int) error {
	rate, err := s.rateRepo.FindByID(ctx, rateID)
	if err != nil {
		return err
	}
	if err := s.rateRepo.Delete(ctx, rateID, version); err != nil {
		return shared.MapConflict(err, ToRateResponse)
	}

	s.invalidate(ctx, rate.ProductID)
	return nil
}

// Resolve returns the active rate covering day for the product and unit.
// The latest effective_from wins. It returns catalog.ErrNoEffectiveRate when
// nothing matches.
func (s *RateService) Resolve(ctx context.Context, productID uuid.UUID, unit string, day time.Time) (*catalog.Rate, error) {
	unit = catalog.NormalizeUnit(unit)
	day = shared.TruncateDay(day)

	var generation uint64
	cacheUsable := s.cache != nil
	if cacheUsable {
		cached, gen, err := s.cache.Get(ctx, productID, unit, day)
		switch {
		case err != nil:
			s.logger.Warn("Rate cache lookup failed",
				zap.String("product_id", productID.String()),
				zap.String("unit", unit),
				zap.Error(err))
			cacheUsable = false
		case cached != nil && cached.ProductID == productID && cached.Covers(day):
			return cached, nil
		}
		generation = gen
	}

	rate, err := s.rateRepo.FindEffective(ctx, productID, unit, day)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrNoEffectiveRate
		}
		return nil, err
	}

	if cacheUsable {
		if err := s.cache.Set(ctx, productID, unit, day, generation, rate, 0); err != nil {
			s.logger.Warn("Rate cache store failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}
	return rate, nil
}

// Current returns the rate effective for a product. The unit defaults to the
// product's default unit and the date to today.
func (s *RateService) Current(ctx context.Context, productID uuid.UUID, query CurrentRateQuery) (*RateResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	unit := query.Unit
	if unit == "" {
		unit = product.DefaultUnit
	}
	day := shared.TruncateDay(s.now())
	if query.Date != "" {
		day, err = shared.ParseDate(query.Date)
		if err != nil {
			return nil, shared.NewValidationError("date", "must be a date in YYYY-MM-DD format")
		}
	}

	rate, err := s.Resolve(ctx, productID, unit, day)
	if err != nil {
		return nil, err
	}

	response := ToRateResponse(rate)
	return &response, nil
}

func (s *RateService) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUnknownProduct
		}
		return err
	}
	return nil
}

// checkOverlap rejects an active rate whose period meets another active rate
// for the same product and unit. Inactive rates never conflict.
func (s *RateService) checkOverlap(ctx context.Context, rate *catalog.Rate) error {
	if !rate.IsActive {
		return nil
	}
	others, err := s.rateRepo.FindOverlapping(ctx, rate.ProductID, rate.Unit, rate.EffectiveFrom, rate.EffectiveTo, &rate.ID)
	if err != nil {
		return err
	}
	for i := range others {
		if rate.Overlaps(&others[i]) {
			return catalog.ErrRateOverlap
		}
	}
	return nil
}

func (s *RateService) invalidate(ctx context.Context, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, productID); err != nil {
		s.logger.Warn("Failed to invalidate rate cache",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/partner"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/trade"
)

var (
	// ErrUnknownSupplier is returned when a collection names a missing supplier
	ErrUnknownSupplier = shared.NewDomainError("INVALID_REFERENCE", "Supplier not found")
	// ErrUnknownProduct is returned when a collection names a missing product
	ErrUnknownProduct = shared.NewDomainError("INVALID_REFERENCE", "Product not found")
	// ErrSupplierInactive is returned when collecting from an inactive supplier
	ErrSupplierInactive = shared.NewDomainError("SUPPLIER_INACTIVE", "Supplier is inactive")
	// ErrProductInactive is returned when collecting an inactive product
	ErrProductInactive = shared.NewDomainError("PRODUCT_INACTIVE", "Product is inactive")
)

// RateResolver finds the rate effective for a product, unit and day.
// The catalog application's RateService implements it.
type RateResolver interface {
	Resolve(ctx context.Context, productID uuid.UUID, unit string, day time.Time) (*catalog.Rate, error)
}

// CollectionService records and revises collections. Each write prices the
// collection from the rate effective on its date and stores a copy of it.
type CollectionService struct {
	collectionRepo trade.CollectionRepository
	supplierRepo   partner.SupplierRepository
	productRepo    catalog.ProductRepository
	rates          RateResolver
	tx             shared.TransactionScope
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(
	collectionRepo trade.CollectionRepository,
	supplierRepo partner.SupplierRepository,
	productRepo catalog.ProductRepository,
	rates RateResolver,
	tx shared.TransactionScope,
) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		supplierRepo:   supplierRepo,
		productRepo:    productRepo,
		rates:          rates,
		tx:             tx,
	}
}

// Create records a collection made by userID
func (s *CollectionService) Create(ctx context.Context, userID uuid.UUID, req CreateCollectionRequest) (*CollectionResponse, error) {
	collectionDate, err := shared.ParseDate(req.CollectionDate)
	if err != nil {
		return nil, shared.NewValidationError("collection_date", "must be a date in YYYY-MM-DD format")
	}

	var collection *trade.Collection
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureSupplier(txCtx, req.SupplierID); err != nil {
			return err
		}
		if err := s.ensureProduct(txCtx, req.ProductID); err != nil {
			return err
		}

		c, err := trade.NewCollection(req.SupplierID, req.ProductID, userID, collectionDate, req.Quantity, req.Unit, s.resolver(txCtx))
		if err != nil {
			return err
		}
		c.Notes = req.Notes
		collection = c
		return s.collectionRepo.Create(txCtx, collection)
	})
	if err != nil {
		return nil, err
	}

	response := ToCollectionResponse(collection)
	return &response, nil
}

// GetByID retrieves a collection by ID
func (s *CollectionService) GetByID(ctx context.Context, collectionID uuid.UUID) (*CollectionResponse, error) {
	collection, err := s.collectionRepo.FindByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	response := ToCollectionResponse(collection)
	return &response, nil
}

// List retrieves a page of collections
func (s *CollectionService) List(ctx context.Context, filter CollectionListFilter) (*shared.Paginated[CollectionResponse], error) {
	domainFilter := filter.toDomain()

	collections, err := s.collectionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.collectionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToCollectionResponses(collections), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update revises a collection if req.Version still matches. Moving the
// product, unit or date re-prices it from the rate effective on the new date.
func (s *CollectionService) Update(ctx context.Context, collectionID uuid.UUID, req UpdateCollectionRequest) (*CollectionResponse, error) {
	change := trade.CollectionChange{
		SupplierID: req.SupplierID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Notes:      req.Notes,
	}
	if req.CollectionDate != nil {
		d, err := shared.ParseDate(*req.CollectionDate)
		if err != nil {
			return nil, shared.NewValidationError("collection_date", "must be a date in YYYY-MM-DD format")
		}
		change.CollectionDate = &d
	}

	updated, err := s.collectionRepo.Update(ctx, collectionID, req.Version, func(txCtx context.Context, collection *trade.Collection) error {
		if change.SupplierID != nil && *change.SupplierID != collection.SupplierID {
			if err := s.ensureSupplier(txCtx, *change.SupplierID); err != nil {
				return err
			}
		}
		if change.ProductID != nil && *change.ProductID != collection.ProductID {
			if err := s.ensureProduct(txCtx, *change.ProductID); err != nil {
				return err
			}
		}
		return collection.Revise(change, s.resolver(txCtx))
	})
	if err != nil {
		return nil, shared.MapConflict(err, ToCollectionResponse)
	}

	response := ToCollectionResponse(updated)
	return &response, nil
}

// Delete soft-deletes a collection. A non-nil version must match.
func (s *CollectionService) Delete(ctx context.Context, collectionID uuid.UUID, version *int) error {
	return shared.MapConflict(s.collectionRepo.Delete(ctx, collectionID, version), ToCollectionResponse)
}

// resolver adapts the rate lookup to the domain callback, bound to ctx
func (s *CollectionService) resolver(ctx context.Context) trade.RateResolver {
	return func(productID uuid.UUID, unit string, day time.Time) (trade.AppliedRate, error) {
		rate, err := s.rates.Resolve(ctx, productID, unit, day)
		if err != nil {
			return trade.AppliedRate{}, err
		}
		return trade.AppliedRate{RateID: rate.ID, Value: rate.Rate}, nil
	}
}

func (s *CollectionService) ensureSupplier(ctx context.Context, supplierID uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUnknownSupplier
		}
		return err
	}
	if !supplier.IsActive {
		return ErrSupplierInactive
	}
	return nil
}

func (s *CollectionService) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUnknownProduct
		}
		return err
	}
	if !product.IsActive {
		return ErrProductInactive
	}
	return nil
}

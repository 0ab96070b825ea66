package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/catalog"
	"github.com/ledger/backend/internal/domain/shared"
)

// ErrDuplicateProductCode is returned when a code is already in use
var ErrDuplicateProductCode = shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	rateRepo    catalog.RateRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, rateRepo catalog.RateRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		rateRepo:    rateRepo,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Code, req.Name, req.DefaultUnit)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsByCode(ctx, product.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateProductCode
	}

	if err := product.SetDescription(req.Description); err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive {
		product.Deactivate()
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	domainFilter := filter.toDomain()

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToProductResponses(products), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Rates lists the rates of one product. Any product_id in the filter is
// replaced by productID.
func (s *ProductService) Rates(ctx context.Context, productID uuid.UUID, filter RateListFilter) (*shared.Paginated[RateResponse], error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	filter.ProductID = productID.String()
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

// Update applies the requested changes if req.Version still matches
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	updated, err := s.productRepo.Update(ctx, productID, req.Version, func(txCtx context.Context, product *catalog.Product) error {
		return s.applyUpdate(txCtx, product, req)
	})
	if err != nil {
		return nil, shared.MapConflict(err, ToProductResponse)
	}

	response := ToProductResponse(updated)
	return &response, nil
}

func (s *ProductService) applyUpdate(ctx context.Context, product *catalog.Product, req UpdateProductRequest) error {
	if req.Code != nil {
		if err := product.SetCode(*req.Code); err != nil {
			return err
		}
		exists, err := s.productRepo.ExistsByCode(ctx, product.Code, &product.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateProductCode
		}
	}

	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := product.SetDescription(*req.Description); err != nil {
			return err
		}
	}
	if req.DefaultUnit != nil {
		if err := product.SetDefaultUnit(*req.DefaultUnit); err != nil {
			return err
		}
	}

	if req.IsActive != nil {
		if *req.IsActive {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}
	return nil
}

// Delete soft-deletes a product. Its rates and collections stay in place.
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID, version *int) error {
	return shared.MapConflict(s.productRepo.Delete(ctx, productID, version), ToProductResponse)
}

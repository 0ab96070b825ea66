package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/partner"
	"github.com/ledger/backend/internal/domain/shared"
)

// ErrDuplicateSupplierCode is returned when a code is already in use
var ErrDuplicateSupplierCode = shared.NewDomainError("ALREADY_EXISTS", "Supplier with this code already exists")

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	exists, err := s.supplierRepo.ExistsByCode(ctx, supplier.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSupplierCode
	}

	if err := supplier.SetContact(req.ContactPerson, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := supplier.SetLocation(req.Address, req.Region); err != nil {
		return nil, err
	}
	supplier.SetNotes(req.Notes)
	if req.IsActive != nil && !*req.IsActive {
		supplier.Deactivate()
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves a page of suppliers
func (s *SupplierService) List(ctx context.Context, filter SupplierListFilter) (*shared.Paginated[SupplierResponse], error) {
	domainFilter := filter.toDomain()

	suppliers, err := s.supplierRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.supplierRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToSupplierResponses(suppliers), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies the requested changes if req.Version still matches.
// A stale version yields a conflict carrying the current SupplierResponse.
func (s *SupplierService) Update(ctx context.Context, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	updated, err := s.supplierRepo.Update(ctx, supplierID, req.Version, func(txCtx context.Context, supplier *partner.Supplier) error {
		return s.applyUpdate(txCtx, supplier, req)
	})
	if err != nil {
		return nil, shared.MapConflict(err, ToSupplierResponse)
	}

	response := ToSupplierResponse(updated)
	return &response, nil
}

func (s *SupplierService) applyUpdate(ctx context.Context, supplier *partner.Supplier, req UpdateSupplierRequest) error {
	if req.Code != nil {
		if err := supplier.SetCode(*req.Code); err != nil {
			return err
		}
		exists, err := s.supplierRepo.ExistsByCode(ctx, supplier.Code, &supplier.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSupplierCode
		}
	}

	if req.Name != nil {
		if err := supplier.Rename(*req.Name); err != nil {
			return err
		}
	}

	if req.ContactPerson != nil || req.Phone != nil || req.Email != nil {
		person, phone, email := supplier.ContactPerson, supplier.Phone, supplier.Email
		if req.ContactPerson != nil {
			person = *req.ContactPerson
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := supplier.SetContact(person, phone, email); err != nil {
			return err
		}
	}

	if req.Address != nil || req.Region != nil {
		address, region := supplier.Address, supplier.Region
		if req.Address != nil {
			address = *req.Address
		}
		if req.Region != nil {
			region = *req.Region
		}
		if err := supplier.SetLocation(address, region); err != nil {
			return err
		}
	}

	if req.Notes != nil {
		supplier.SetNotes(*req.Notes)
	}

	if req.IsActive != nil {
		if *req.IsActive {
			supplier.Activate()
		} else {
			supplier.Deactivate()
		}
	}
	return nil
}

// Delete soft-deletes a supplier. Its collections and payments stay on the
// ledger. A non-nil version must match the stored one.
func (s *SupplierService) Delete(ctx context.Context, supplierID uuid.UUID, version *int) error {
	return shared.MapConflict(s.supplierRepo.Delete(ctx, supplierID, version), ToSupplierResponse)
}

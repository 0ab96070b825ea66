package finance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/finance"
	"github.com/ledger/backend/internal/domain/partner"
	"github.com/ledger/backend/internal/domain/shared"
)

// ErrUnknownSupplier is returned when a payment names a missing supplier
var ErrUnknownSupplier = shared.NewDomainError("INVALID_REFERENCE", "Supplier not found")

// PaymentService records payments made to suppliers. Payments may be made
// to inactive suppliers so that their balances can be settled.
type PaymentService struct {
	paymentRepo  finance.PaymentRepository
	supplierRepo partner.SupplierRepository
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo finance.PaymentRepository, supplierRepo partner.SupplierRepository) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		supplierRepo: supplierRepo,
	}
}

// Create records a payment made by userID
func (s *PaymentService) Create(ctx context.Context, userID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	paymentDate, err := shared.ParseDate(req.PaymentDate)
	if err != nil {
		return nil, shared.NewValidationError("payment_date", "must be a date in YYYY-MM-DD format")
	}

	payment, err := finance.NewPayment(
		req.SupplierID,
		userID,
		paymentDate,
		req.Amount,
		finance.PaymentType(req.PaymentType),
		finance.PaymentMethod(req.PaymentMethod),
	)
	if err != nil {
		return nil, err
	}
	payment.ReferenceNumber = req.ReferenceNumber
	payment.Notes = req.Notes

	if err := s.ensureSupplier(ctx, payment.SupplierID); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// List retrieves a page of payments
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) (*shared.Paginated[PaymentResponse], error) {
	domainFilter := filter.toDomain()

	payments, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.paymentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToPaymentResponses(payments), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update revises a payment if req.Version still matches
func (s *PaymentService) Update(ctx context.Context, paymentID uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	change := finance.PaymentChange{
		SupplierID:      req.SupplierID,
		Amount:          req.Amount,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}
	if req.PaymentDate != nil {
		d, err := shared.ParseDate(*req.PaymentDate)
		if err != nil {
			return nil, shared.NewValidationError("payment_date", "must be a date in YYYY-MM-DD format")
		}
		change.PaymentDate = &d
	}
	if req.PaymentType != nil {
		t := finance.PaymentType(*req.PaymentType)
		change.PaymentType = &t
	}
	if req.PaymentMethod != nil {
		m := finance.PaymentMethod(*req.PaymentMethod)
		change.PaymentMethod = &m
	}

	updated, err := s.paymentRepo.Update(ctx, paymentID, req.Version, func(txCtx context.Context, payment *finance.Payment) error {
		if change.SupplierID != nil && *change.SupplierID != payment.SupplierID {
			if err := s.ensureSupplier(txCtx, *change.SupplierID); err != nil {
				return err
			}
		}
		return payment.Revise(change)
	})
	if err != nil {
		return nil, shared.MapConflict(err, ToPaymentResponse)
	}

	response := ToPaymentResponse(updated)
	return &response, nil
}

// Delete soft-deletes a payment. A non-nil version must match.
func (s *PaymentService) Delete(ctx context.Context, paymentID uuid.UUID, version *int) error {
	return shared.MapConflict(s.paymentRepo.Delete(ctx, paymentID, version), ToPaymentResponse)
}

func (s *PaymentService) ensureSupplier(ctx context.Context, supplierID uuid.UUID) error {
	if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUnknownSupplier
		}
		return err
	}
	return nil
}

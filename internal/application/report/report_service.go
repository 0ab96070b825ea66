package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/report"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

// DocumentRenderer turns reports into PDF documents
type DocumentRenderer interface {
	RenderSummary(ctx context.Context, summary *report.Summary) ([]byte, error)
	RenderStatement(ctx context.Context, statement *report.Statement) ([]byte, error)
}

// ArchivedFile locates a PDF kept in object storage
type ArchivedFile struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// Archive stores rendered PDFs and hands out time-limited download links
type Archive interface {
	Store(ctx context.Context, name string, data []byte) (*ArchivedFile, error)
}

// ReportService answers the ledger report queries and exports them as PDF
type ReportService struct {
	repo     report.Repository
	renderer DocumentRenderer
	archive  Archive
	logger   *zap.Logger
}

// NewReportService creates a new ReportService. archive may be nil, in which
// case exports carry the PDF bytes.
func NewReportService(repo report.Repository, renderer DocumentRenderer, archive Archive, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:     repo,
		renderer: renderer,
		archive:  archive,
		logger:   logger,
	}
}

// Summary returns totals and per-supplier and per-product breakdowns
func (s *ReportService) Summary(ctx context.Context, q RangeQuery) (*SummaryResponse, error) {
	summary, err := s.summary(ctx, q)
	if err != nil {
		return nil, err
	}
	response := ToSummaryResponse(summary)
	return &response, nil
}

// SupplierBalances returns every supplier's balance, highest first
func (s *ReportService) SupplierBalances(ctx context.Context, q RangeQuery) ([]SupplierBalanceResponse, error) {
	r, err := q.toDomain()
	if err != nil {
		return nil, err
	}
	balances, err := s.repo.SupplierBalances(ctx, r)
	if err != nil {
		return nil, err
	}
	return ToSupplierBalanceResponses(balances), nil
}

// SupplierBalance returns the all-time balance of one supplier
func (s *ReportService) SupplierBalance(ctx context.Context, supplierID uuid.UUID) (*SupplierBalanceResponse, error) {
	balance, err := s.repo.SupplierBalance(ctx, supplierID, report.DateRange{})
	if err != nil {
		return nil, err
	}
	response := ToSupplierBalanceResponse(*balance)
	return &response, nil
}

// Statement lists a supplier's collections and payments with a running
// balance. The opening balance covers everything before q.From.
func (s *ReportService) Statement(ctx context.Context, supplierID uuid.UUID, q RangeQuery) (*StatementResponse, error) {
	statement, err := s.statement(ctx, supplierID, q)
	if err != nil {
		return nil, err
	}
	response := ToStatementResponse(statement)
	return &response, nil
}

// SummaryPDF renders the summary as PDF
func (s *ReportService) SummaryPDF(ctx context.Context, q RangeQuery) (*ExportResult, error) {
	summary, err := s.summary(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := s.render(ctx, "summary", func(ctx context.Context) ([]byte, error) {
		return s.renderer.RenderSummary(ctx, summary)
	})
	if err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	return s.export(ctx, fileName("summary", summary.Range), data)
}

// StatementPDF renders a supplier statement as PDF
func (s *ReportService) StatementPDF(ctx context.Context, supplierID uuid.UUID, q RangeQuery) (*ExportResult, error) {
	statement, err := s.statement(ctx, supplierID, q)
	if err != nil {
		return nil, err
	}
	data, err := s.render(ctx, "statement", func(ctx context.Context) ([]byte, error) {
		return s.renderer.RenderStatement(ctx, statement)
	})
	if err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	name := fileName("statement_"+strings.ToLower(statement.Supplier.SupplierCode), statement.Range)
	return s.export(ctx, name, data)
}

func (s *ReportService) summary(ctx context.Context, q RangeQuery) (*report.Summary, error) {
	r, err := q.toDomain()
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.Totals(ctx, r)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.repo.SupplierBalances(ctx, r)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ProductSummaries(ctx, r)
	if err != nil {
		return nil, err
	}
	return report.NewSummary(r, totals, suppliers, products), nil
}

func (s *ReportService) statement(ctx context.Context, supplierID uuid.UUID, q RangeQuery) (*report.Statement, error) {
	r, err := q.toDomain()
	if err != nil {
		return nil, err
	}

	supplier, err := s.repo.SupplierBalance(ctx, supplierID, r)
	if err != nil {
		return nil, err
	}

	opening := decimal.Zero
	if r.From != nil {
		opening, err = s.repo.OpeningBalance(ctx, supplierID, *r.From)
		if err != nil {
			return nil, err
		}
	}

	entries, err := s.repo.StatementEntries(ctx, supplierID, r)
	if err != nil {
		return nil, err
	}
	return report.BuildStatement(*supplier, r, opening, entries), nil
}

// render runs fn inside a span and under the render_pdf profiling label
func (s *ReportService) render(ctx context.Context, name string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ReportService", "Render",
		telemetry.WithAttribute(telemetry.SpanAttrReport, name))
	defer span.End()

	var (
		data []byte
		err  error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("render_pdf", map[string]string{"report": name}),
		func(ctx context.Context) {
			data, err = fn(ctx)
		})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrBytes, len(data))
	return data, nil
}

func (s *ReportService) export(ctx context.Context, name string, data []byte) (*ExportResult, error) {
	result := &ExportResult{
		FileName:    name,
		ContentType: pdfContentType,
		Size:        len(data),
	}
	if s.archive == nil {
		result.Data = data
		return result, nil
	}

	file, err := s.archive.Store(ctx, name, data)
	if err != nil {
		s.logger.Warn("Report archive failed, returning PDF inline",
			zap.String("file", name),
			zap.Error(err))
		result.Data = data
		return result, nil
	}

	expiresAt := file.ExpiresAt
	result.StorageKey = file.Key
	result.DownloadURL = file.URL
	result.ExpiresAt = &expiresAt
	return result, nil
}

func fileName(prefix string, r report.DateRange) string {
	from, to := "start", "today"
	if r.From != nil {
		from = shared.FormatDate(*r.From)
	}
	if r.To != nil {
		to = shared.FormatDate(*r.To)
	}
	return fmt.Sprintf("%s_%s_%s.pdf", prefix, from, to)
}

package printing

import (
	"context"
	"time"

	reportapp "github.com/ledger/backend/internal/application/report"
	"github.com/ledger/backend/internal/domain/report"
)

// ReportRenderer renders ledger reports to PDF through HTML templates
type ReportRenderer struct {
	engine  *TemplateEngine
	pdf     PDFRenderer
	company string
}

// NewReportRenderer creates a ReportRenderer. company is printed in the
// document header when set.
func NewReportRenderer(engine *TemplateEngine, pdf PDFRenderer, company string) *ReportRenderer {
	return &ReportRenderer{
		engine:  engine,
		pdf:     pdf,
		company: company,
	}
}

type documentView struct {
	Title       string
	Company     string
	GeneratedAt time.Time
	Summary     *report.Summary
	Statement   *report.Statement
}

// RenderSummary renders the ledger summary
func (r *ReportRenderer) RenderSummary(ctx context.Context, summary *report.Summary) ([]byte, error) {
	view := documentView{
		Title:       "Ledger Summary",
		Company:     r.company,
		GeneratedAt: summary.GeneratedAt,
		Summary:     summary,
	}
	return r.render(ctx, TemplateSummary, view, false)
}

// RenderStatement renders a supplier statement
func (r *ReportRenderer) RenderStatement(ctx context.Context, statement *report.Statement) ([]byte, error) {
	view := documentView{
		Title:       "Supplier Statement",
		Company:     r.company,
		GeneratedAt: statement.GeneratedAt,
		Statement:   statement,
	}
	return r.render(ctx, TemplateStatement, view, true)
}

func (r *ReportRenderer) render(ctx context.Context, name string, view documentView, landscape bool) ([]byte, error) {
	html, err := r.engine.Render(name, view)
	if err != nil {
		return nil, err
	}

	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      view.Title,
		Landscape:  landscape,
		FooterHTML: pageFooter,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

var _ reportapp.DocumentRenderer = (*ReportRenderer)(nil)

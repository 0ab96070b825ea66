package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type capturingRenderer struct {
	requests []*RenderRequest
	err      error
}

func (c *capturingRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.4"), PageCount: 1}, nil
}

func (c *capturingRenderer) Close() error { return nil }

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testSummary() *report.Summary {
	from, to := day("2024-03-01"), day("2024-03-31")
	supplier := report.SupplierBalance{
		SupplierID:     uuid.New(),
		SupplierCode:   "SUP-001",
		SupplierName:   "Green Valley <Farm>",
		Region:         "North",
		TotalCollected: d("12345.5"),
		TotalPaid:      d("500"),
	}
	supplier.Settle()
	return report.NewSummary(
		report.DateRange{From: &from, To: &to},
		report.Totals{TotalCollected: d("12345.5"), TotalPaid: d("500"), CollectionCount: 1204, PaymentCount: 3},
		[]report.SupplierBalance{supplier},
		[]report.ProductSummary{{ProductCode: "MILK", ProductName: "Raw milk", Unit: "litre", TotalQuantity: d("270.125"), TotalAmount: d("12345.5"), CollectionCount: 1204}},
	)
}

func testStatement() *report.Statement {
	supplier := report.SupplierBalance{SupplierCode: "SUP-001", SupplierName: "Green Valley Farm"}
	return report.BuildStatement(supplier, report.DateRange{}, d("-20"), []report.StatementEntry{
		{Date: day("2024-03-02"), Kind: report.EntryCollection, Description: "Raw milk", Quantity: d("10.5"), Unit: "litre", Rate: d("45.5"), Debit: d("477.75")},
		{Date: day("2024-03-05"), Kind: report.EntryPayment, Description: "Cash payment", Credit: d("1000")},
	})
}

func TestTemplateEngine_Summary(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	html, err := engine.Render(TemplateSummary, documentView{
		Title:       "Ledger Summary",
		Company:     "Dairy Co-op",
		GeneratedAt: time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC),
		Summary:     testSummary(),
	})

	require.NoError(t, err)
	assert.Contains(t, html, "<title>Ledger Summary</title>")
	assert.Contains(t, html, "Dairy Co-op")
	assert.Contains(t, html, "Period: 2024-03-01 to 2024-03-31")
	assert.Contains(t, html, "12,345.50")
	assert.Contains(t, html, "11,845.50")
	assert.Contains(t, html, "1,204 collections")
	assert.Contains(t, html, "270.125")
	assert.Contains(t, html, "Green Valley &lt;Farm&gt;")
	assert.NotContains(t, html, "No supplier activity")
}

func TestTemplateEngine_Statement(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	html, err := engine.Render(TemplateStatement, documentView{
		Title:     "Supplier Statement",
		Statement: testStatement(),
	})

	require.NoError(t, err)
	assert.Contains(t, html, "Period: beginning to today")
	assert.Contains(t, html, "<td>Collection</td>")
	assert.Contains(t, html, "<td>Payment</td>")
	assert.Contains(t, html, "10.5 litre")
	assert.Contains(t, html, "457.75")
	assert.Contains(t, html, "-542.25")
	assert.Contains(t, html, `class="num neg"`)
}

func TestTemplateEngine_EmptyStatement(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	stmt := report.BuildStatement(report.SupplierBalance{SupplierCode: "SUP-002"}, report.DateRange{}, decimal.Zero, nil)
	html, err := engine.Render(TemplateStatement, documentView{Title: "Supplier Statement", Statement: stmt})

	require.NoError(t, err)
	assert.Contains(t, html, "No collections or payments in this period.")
}

func TestTemplateEngine_Language(t *testing.T) {
	engine, err := NewTemplateEngine(WithLanguage(language.German))
	require.NoError(t, err)

	assert.Equal(t, "12.345,50", engine.formatMoney(d("12345.5")))
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	_, err = engine.Render("invoice", documentView{})

	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeTemplateFailed, renderErr.Code)
}

func TestReportRenderer(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)
	pdf := &capturingRenderer{}
	renderer := NewReportRenderer(engine, pdf, "Dairy Co-op")
	ctx := context.Background()

	data, err := renderer.RenderSummary(ctx, testSummary())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	_, err = renderer.RenderStatement(ctx, testStatement())
	require.NoError(t, err)

	require.Len(t, pdf.requests, 2)
	assert.False(t, pdf.requests[0].Landscape)
	assert.True(t, pdf.requests[1].Landscape)
	assert.Equal(t, "Supplier Statement", pdf.requests[1].Title)
	assert.Equal(t, pageFooter, pdf.requests[1].FooterHTML)
	assert.Contains(t, pdf.requests[1].HTML, "SUP-001")
}

func TestReportRenderer_PropagatesRenderError(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)
	renderer := NewReportRenderer(engine, &capturingRenderer{err: errors.New("chrome missing")}, "")

	_, err = renderer.RenderSummary(context.Background(), testSummary())

	assert.EqualError(t, err, "chrome missing")
}

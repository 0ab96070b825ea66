package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TemplateEngine renders the report HTML templates. Numbers are formatted
// for the configured language.
type TemplateEngine struct {
	lang      language.Tag
	printer   *message.Printer
	templates map[string]*template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithLanguage sets the language used for number formatting and labels
func WithLanguage(tag language.Tag) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.lang = tag
	}
}

// NewTemplateEngine parses the built-in report templates
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{lang: language.English}
	for _, opt := range opts {
		opt(e)
	}
	e.printer = message.NewPrinter(e.lang)

	funcs := e.funcMap()
	e.templates = make(map[string]*template.Template, len(reportTemplates))
	for name, content := range reportTemplates {
		tmpl, err := template.New(name).Funcs(funcs).Parse(layoutTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := tmpl.Parse(content); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		e.templates[name] = tmpl
	}
	return e, nil
}

// Render executes the named template against data
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", NewRenderError(ErrCodeTemplateFailed, "unknown template "+name, nil)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "execute template "+name, err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) funcMap() template.FuncMap {
	title := cases.Title(e.lang)
	return template.FuncMap{
		"money":    e.formatMoney,
		"quantity": e.formatQuantity,
		"count":    e.formatCount,
		"date":     formatDate,
		"dateOr":   formatDateOr,
		"datetime": formatDateTime,
		"title": func(s string) string {
			return title.String(strings.ReplaceAll(s, "_", " "))
		},
		"negative": func(d decimal.Decimal) bool { return d.IsNegative() },
		"nonzero":  func(d decimal.Decimal) bool { return !d.IsZero() },
	}
}

// formatMoney prints two fixed decimals with grouping, e.g. 1,234.50
func (e *TemplateEngine) formatMoney(d decimal.Decimal) string {
	return e.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// formatQuantity prints up to three decimals, trimming trailing zeros
func (e *TemplateEngine) formatQuantity(d decimal.Decimal) string {
	return e.printer.Sprint(number.Decimal(d.Round(3).InexactFloat64(),
		number.MaxFractionDigits(3)))
}

func (e *TemplateEngine) formatCount(n int64) string {
	return e.printer.Sprint(number.Decimal(n))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatDateOr prints an optional date or the fallback
func formatDateOr(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return formatDate(*t)
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}

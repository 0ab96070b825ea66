// Package printing renders ledger reports to PDF.
//
// Reports are first rendered to HTML with html/template, then printed to PDF
// by a headless Chrome driven through the DevTools protocol (chromedp).
// Numbers are formatted with golang.org/x/text for the configured language.
package printing

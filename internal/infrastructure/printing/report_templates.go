package printing

// Template names
const (
	TemplateSummary   = "summary"
	TemplateStatement = "statement"
)

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 10pt; color: #222; margin: 0; }
  h1 { font-size: 16pt; margin: 0 0 4px 0; }
  h2 { font-size: 12pt; margin: 18px 0 6px 0; border-bottom: 1px solid #999; padding-bottom: 2px; }
  .meta { color: #555; font-size: 9pt; margin-bottom: 12px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { padding: 4px 6px; border-bottom: 1px solid #ddd; text-align: left; }
  th { background: #f2f2f2; font-weight: 600; }
  td.num, th.num { text-align: right; white-space: nowrap; }
  tr.total td { font-weight: 600; border-top: 2px solid #666; }
  .neg { color: #b00020; }
  .cards { display: flex; gap: 12px; margin: 8px 0; }
  .card { flex: 1; border: 1px solid #ccc; padding: 8px; }
  .card .label { font-size: 8pt; color: #666; text-transform: uppercase; }
  .card .value { font-size: 13pt; font-weight: 600; }
  .empty { color: #777; font-style: italic; padding: 8px 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{if .Company}}{{.Company}} &middot; {{end}}Generated {{datetime .GeneratedAt}}</div>
{{template "content" .}}
</body>
</html>{{end}}`

const summaryTemplate = `{{define "content"}}{{with .Summary}}
<div class="meta">Period: {{dateOr .Range.From "beginning"}} to {{dateOr .Range.To "today"}}</div>
<div class="cards">
  <div class="card"><div class="label">Collected</div><div class="value">{{money .Totals.TotalCollected}}</div><div>{{count .Totals.CollectionCount}} collections</div></div>
  <div class="card"><div class="label">Paid</div><div class="value">{{money .Totals.TotalPaid}}</div><div>{{count .Totals.PaymentCount}} payments</div></div>
  <div class="card"><div class="label">Outstanding</div><div class="value{{if negative .Outstanding}} neg{{end}}">{{money .Outstanding}}</div></div>
</div>

<h2>Suppliers</h2>
{{if .Suppliers}}
<table>
  <thead><tr><th>Code</th><th>Name</th><th>Region</th><th class="num">Collected</th><th class="num">Paid</th><th class="num">Balance</th></tr></thead>
  <tbody>
  {{range .Suppliers}}
    <tr>
      <td>{{.SupplierCode}}</td><td>{{.SupplierName}}</td><td>{{.Region}}</td>
      <td class="num">{{money .TotalCollected}}</td>
      <td class="num">{{money .TotalPaid}}</td>
      <td class="num{{if negative .Balance}} neg{{end}}">{{money .Balance}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
{{else}}<div class="empty">No supplier activity in this period.</div>{{end}}

<h2>Products</h2>
{{if .Products}}
<table>
  <thead><tr><th>Code</th><th>Name</th><th>Unit</th><th class="num">Collections</th><th class="num">Quantity</th><th class="num">Amount</th></tr></thead>
  <tbody>
  {{range .Products}}
    <tr>
      <td>{{.ProductCode}}</td><td>{{.ProductName}}</td><td>{{.Unit}}</td>
      <td class="num">{{count .CollectionCount}}</td>
      <td class="num">{{quantity .TotalQuantity}}</td>
      <td class="num">{{money .TotalAmount}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
{{else}}<div class="empty">No collections in this period.</div>{{end}}
{{end}}{{end}}`

const statementTemplate = `{{define "content"}}{{with .Statement}}
<div class="meta">
  {{.Supplier.SupplierCode}} &middot; {{.Supplier.SupplierName}}{{if .Supplier.Region}} &middot; {{.Supplier.Region}}{{end}}<br>
  Period: {{dateOr .Range.From "beginning"}} to {{dateOr .Range.To "today"}}
</div>
<table>
  <thead>
    <tr><th>Date</th><th>Type</th><th>Description</th><th class="num">Quantity</th><th class="num">Rate</th><th class="num">Debit</th><th class="num">Credit</th><th class="num">Balance</th></tr>
  </thead>
  <tbody>
    <tr><td colspan="7">Opening balance</td><td class="num{{if negative .OpeningBalance}} neg{{end}}">{{money .OpeningBalance}}</td></tr>
    {{range .Entries}}
    <tr>
      <td>{{date .Date}}</td>
      <td>{{title (print .Kind)}}</td>
      <td>{{.Description}}</td>
      <td class="num">{{if nonzero .Quantity}}{{quantity .Quantity}} {{.Unit}}{{end}}</td>
      <td class="num">{{if nonzero .Rate}}{{money .Rate}}{{end}}</td>
      <td class="num">{{if nonzero .Debit}}{{money .Debit}}{{end}}</td>
      <td class="num">{{if nonzero .Credit}}{{money .Credit}}{{end}}</td>
      <td class="num{{if negative .RunningBalance}} neg{{end}}">{{money .RunningBalance}}</td>
    </tr>
    {{end}}
    <tr class="total">
      <td colspan="5">Totals</td>
      <td class="num">{{money .TotalDebit}}</td>
      <td class="num">{{money .TotalCredit}}</td>
      <td class="num{{if negative .ClosingBalance}} neg{{end}}">{{money .ClosingBalance}}</td>
    </tr>
  </tbody>
</table>
{{if not .Entries}}<div class="empty">No collections or payments in this period.</div>{{end}}
{{end}}{{end}}`

var reportTemplates = map[string]string{
	TemplateSummary:   summaryTemplate,
	TemplateStatement: statementTemplate,
}

const pageFooter = `<div style="font-size:8px; width:100%; text-align:center; color:#666;">
Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

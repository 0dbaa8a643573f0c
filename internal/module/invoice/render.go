package invoice

import (
	"fmt"
	"html/template"
	"io"

	"github.com/shopspring/decimal"

	"github.com/lendenpay/portal/pkg/money"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"amount": func(d decimal.Decimal) string { return money.Format(d) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { width: 100%; border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
tfoot td { font-weight: bold; }
</style>
</head>
<body>
<h1>Invoice {{.Number}}</h1>
<p>Issued {{.IssuedAt.Format "2006-01-02 15:04"}} UTC{{if .IssuedBy}} by {{.IssuedBy}}{{end}}</p>
<table>
<thead>
<tr><th>Transaction</th><th>Customer</th><th>Method</th><th>Type</th><th>Status</th><th>Amount</th><th>Commission</th></tr>
</thead>
<tbody>
{{range .Lines}}<tr>
<td>{{.TransactionID}}</td>
<td>{{.CustomerName}}</td>
<td>{{.MethodName}}</td>
<td>{{.Type}}</td>
<td>{{.Status}}</td>
<td>{{amount .Amount}}</td>
<td>{{amount .Commission}}</td>
</tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="5">Total</td><td>{{amount .TotalAmount}}</td><td>{{amount .TotalCommission}}</td></tr>
</tfoot>
</table>
</body>
</html>
`))

// RenderHTML writes the invoice as a printable HTML document
func (inv *Invoice) RenderHTML(w io.Writer) error {
	if err := invoiceTmpl.Execute(w, inv); err != nil {
		return fmt.Errorf("failed to render invoice: %w", err)
	}
	return nil
}

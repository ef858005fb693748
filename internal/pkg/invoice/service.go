// internal/pkg/invoice/service.go
package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/order"
)

// Service renders order invoices as PDF via wkhtmltopdf
type Service struct {
	config *config.Config
}

// NewService creates a new invoice service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// Generate renders a PDF invoice for an order
func (s *Service) Generate(o *order.Order) (*bytes.Buffer, error) {
	data := s.buildData(o)

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) generateHTML(data invoiceData) (string, error) {
	tmpl := template.Must(template.New("invoice").Parse(invoiceTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// buildData flattens the order into display strings. Money is formatted
// here so the template stays arithmetic-free.
func (s *Service) buildData(o *order.Order) invoiceData {
	items := make([]invoiceItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = invoiceItem{
			ProductName: item.ProductName,
			VariantDesc: item.VariantDesc,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   FormatMoney(item.UnitPrice, o.Currency),
			TotalPrice:  FormatMoney(item.TotalPrice, o.Currency),
		}
	}

	deliveryLabel := "Store pickup"
	if o.DeliveryAddress != "" {
		deliveryLabel = o.DeliveryAddress
		if o.DeliveryCity != "" {
			deliveryLabel += ", " + o.DeliveryCity
		}
	}

	return invoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   time.Now().Format("January 2, 2006"),
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.CreatedAt.Format("January 2, 2006"),
		Status:        strings.ToUpper(string(o.Status)),
		PaymentStatus: strings.ToUpper(string(o.PaymentStatus)),
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		DeliveryLabel: deliveryLabel,
		Items:         items,
		Subtotal:      FormatMoney(o.Subtotal, o.Currency),
		DeliveryFee:   FormatMoney(o.DeliveryFee, o.Currency),
		Discount:      FormatMoney(o.Discount, o.Currency),
		Total:         FormatMoney(o.Total, o.Currency),
		Company: companyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Phone:   s.config.App.CompanyPhone,
			Email:   s.config.App.CompanyEmail,
		},
	}
}

// FormatMoney renders minor units as "USD 12.34"
func FormatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, amount/100, amount%100)
}

type invoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	OrderNumber   string
	OrderDate     string
	Status        string
	PaymentStatus string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	DeliveryLabel string
	Items         []invoiceItem
	Subtotal      string
	DeliveryFee   string
	Discount      string
	Total         string
	Company       companyInfo
}

type invoiceItem struct {
	ProductName string
	VariantDesc string
	SKU         string
	Quantity    int
	UnitPrice   string
	TotalPrice  string
}

type companyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info h1 {
            margin: 0 0 5px 0;
            font-size: 22px;
        }
        .company-info p, .invoice-info p {
            margin: 2px 0;
            font-size: 12px;
        }
        .invoice-info {
            text-align: right;
        }
        .invoice-info h2 {
            margin: 0 0 5px 0;
            font-size: 18px;
        }
        .parties {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
        }
        .parties h3 {
            font-size: 13px;
            margin: 0 0 5px 0;
            text-transform: uppercase;
            color: #777;
        }
        .parties p {
            margin: 2px 0;
            font-size: 12px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 20px;
        }
        th {
            background: #f5f5f5;
            text-align: left;
            padding: 8px;
            font-size: 12px;
            border-bottom: 2px solid #ddd;
        }
        td {
            padding: 8px;
            font-size: 12px;
            border-bottom: 1px solid #eee;
        }
        .num {
            text-align: right;
        }
        .totals {
            width: 280px;
            margin-left: auto;
        }
        .totals td {
            border: none;
            padding: 4px 8px;
        }
        .totals .grand td {
            border-top: 2px solid #333;
            font-weight: bold;
            font-size: 14px;
        }
        .muted {
            color: #888;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
            {{if .Company.Phone}}<p>{{.Company.Phone}}</p>{{end}}
            {{if .Company.Email}}<p>{{.Company.Email}}</p>{{end}}
        </div>
        <div class="invoice-info">
            <h2>{{.InvoiceNumber}}</h2>
            <p>Invoice date: {{.InvoiceDate}}</p>
            <p>Order {{.OrderNumber}} placed {{.OrderDate}}</p>
            <p>Status: {{.Status}} / Payment: {{.PaymentStatus}}</p>
        </div>
    </div>

    <div class="parties">
        <div>
            <h3>Billed to</h3>
            <p>{{.CustomerName}}</p>
            {{if .CustomerEmail}}<p>{{.CustomerEmail}}</p>{{end}}
            {{if .CustomerPhone}}<p>{{.CustomerPhone}}</p>{{end}}
        </div>
        <div>
            <h3>Delivery</h3>
            <p>{{.DeliveryLabel}}</p>
        </div>
    </div>

    <table>
        <thead>
            <tr>
                <th>Item</th>
                <th>SKU</th>
                <th class="num">Qty</th>
                <th class="num">Unit price</th>
                <th class="num">Amount</th>
            </tr>
        </thead>
        <tbody>
            {{range .Items}}
            <tr>
                <td>{{.ProductName}}{{if .VariantDesc}} <span class="muted">({{.VariantDesc}})</span>{{end}}</td>
                <td>{{.SKU}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.UnitPrice}}</td>
                <td class="num">{{.TotalPrice}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Subtotal</td><td class="num">{{.Subtotal}}</td></tr>
        <tr><td>Delivery</td><td class="num">{{.DeliveryFee}}</td></tr>
        <tr><td>Discount</td><td class="num">{{.Discount}}</td></tr>
        <tr class="grand"><td>Total</td><td class="num">{{.Total}}</td></tr>
    </table>
</body>
</html>
`

package email

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

// BuildOrderStatusBody builds the HTML body for an order status email
func BuildOrderStatusBody(orderID, customerName, status string, total decimal.Decimal, items []OrderItem) string {
	var itemsHTML strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			name,
			item.Quantity,
			FormatMoney(item.Price),
			FormatMoney(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Order %s</h1>
	<p>Hello %s, your order is now <strong>%s</strong>.</p>

	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background: #f8f9fa;">
				<th style="padding: 12px; text-align: left;">Product</th>
				<th style="padding: 12px; text-align: center;">Qty</th>
				<th style="padding: 12px; text-align: right;">Price</th>
				<th style="padding: 12px; text-align: right;">Subtotal</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
	</table>

	<p style="text-align: right; font-size: 18px;">Total: <strong>%s</strong></p>
</body>
</html>`, orderID, customerName, status, itemsHTML.String(), FormatMoney(total))
}

// BuildStockAlertBody builds the plain-text body of a stock alert for operators
func BuildStockAlertBody(productID, productName, level string, quantity, minStock int) string {
	name := productName
	if name == "" {
		name = productID
	}
	return fmt.Sprintf("%s (%s) is %s: %d left, reorder threshold %d.",
		name, productID, strings.ReplaceAll(level, "_", " "), quantity, minStock)
}

// FormatMoney formats an amount with two decimals and comma separators
func FormatMoney(d decimal.Decimal) string {
	str := d.Abs().StringFixed(2)
	intPart, frac := str[:len(str)-3], str[len(str)-3:]

	var result strings.Builder
	if d.IsNegative() {
		result.WriteString("-")
	}
	remainder := len(intPart) % 3
	if remainder > 0 {
		result.WriteString(intPart[:remainder])
		if len(intPart) > remainder {
			result.WriteString(",")
		}
	}

	for i := remainder; i < len(intPart); i += 3 {
		result.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			result.WriteString(",")
		}
	}
	result.WriteString(frac)

	return result.String()
}

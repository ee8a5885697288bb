package service

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/sunset/internal/invoice/domain"
)

var oneHundred = decimal.NewFromInt(100)

// CalculateTotals recomputes an invoice's money summary over the given line
// items. Every stored figure is rounded to two decimal places, half away
// from zero. The function is pure: recomputing over the same items yields
// identical totals and item order does not matter.
//
//	subtotal = round2(sum(amount))
//	tax      = round2(subtotal * taxRate / 100)
//	tax2     = round2(subtotal * taxRate2 / 100)
//	total    = round2(subtotal + tax + tax2 - credit)
func CalculateTotals(taxRate, taxRate2, credit decimal.Decimal, items []invoicedomain.InvoiceItem) invoicedomain.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(taxRate).Div(oneHundred).Round(2)
	tax2 := subtotal.Mul(taxRate2).Div(oneHundred).Round(2)
	total := subtotal.Add(tax).Add(tax2).Sub(credit).Round(2)

	return invoicedomain.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Tax2:     tax2,
		Total:    total,
	}
}

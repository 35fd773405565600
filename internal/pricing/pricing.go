// Package pricing turns a cart subtotal and tip input into tax, tip and
// grand total figures.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the 11.5% sales tax applied to every order.
const DefaultTaxRate = "0.115"

var ErrInvalidTaxRate = errors.New("tax rate must be >= 0")

var hundred = decimal.NewFromInt(100)

// Snapshot is derived from cart state and tip input. It is recomputed on
// every change and never patched.
type Snapshot struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	TipAmount  decimal.Decimal `json:"tip_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// AmountDue is the grand total rounded to cents, the amount actually
// tendered or charged.
func (s Snapshot) AmountDue() decimal.Decimal {
	return s.GrandTotal.Round(2)
}

// Calculator computes snapshots for a fixed tax rate.
type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator returns a Calculator using rate.
func NewCalculator(rate decimal.Decimal) (Calculator, error) {
	if rate.IsNegative() {
		return Calculator{}, ErrInvalidTaxRate
	}
	return Calculator{taxRate: rate}, nil
}

// Default returns a Calculator using DefaultTaxRate.
func Default() Calculator {
	return Calculator{taxRate: decimal.RequireFromString(DefaultTaxRate)}
}

func (c Calculator) TaxRate() decimal.Decimal { return c.taxRate }

// Compute derives a Snapshot. The tip is customTip when it is set and
// non-negative, otherwise tipPercent of the post-tax total.
func (c Calculator) Compute(subtotal, tipPercent decimal.Decimal, customTip *decimal.Decimal) Snapshot {
	tax := subtotal.Mul(c.taxRate)
	total := subtotal.Add(tax)

	var tip decimal.Decimal
	if customTip != nil && !customTip.IsNegative() {
		tip = *customTip
	} else {
		tip = total.Mul(tipPercent).Div(hundred)
	}

	return Snapshot{
		Subtotal:   subtotal,
		TaxRate:    c.taxRate,
		Tax:        tax,
		Total:      total,
		TipAmount:  tip,
		GrandTotal: total.Add(tip),
	}
}

// Compute uses the default tax rate.
func Compute(subtotal, tipPercent decimal.Decimal, customTip *decimal.Decimal) Snapshot {
	return Default().Compute(subtotal, tipPercent, customTip)
}

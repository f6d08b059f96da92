// Package pricing derives order totals from a cart subtotal.
package pricing

import "github.com/shopspring/decimal"

var (
	TaxRate               = decimal.RequireFromString("0.08")
	FlatShipping          = decimal.RequireFromString("5.99")
	FreeShippingThreshold = decimal.NewFromInt(50)
)

// Summary is the priced view of a cart.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Summarize applies an 8% tax and flat shipping unless the subtotal exceeds the free threshold.
// Amounts keep full precision; round with Display at the edge.
func Summarize(subtotal decimal.Decimal) Summary {
	tax := subtotal.Mul(TaxRate)
	shipping := Shipping(subtotal)
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShipping
}

// FreeShippingRemaining is how much more must be spent before shipping is free.
// Zero once shipping is already free.
func FreeShippingRemaining(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FreeShippingThreshold.Sub(subtotal).Add(decimal.RequireFromString("0.01"))
}

// Rounded returns the summary rounded to cents.
func (s Summary) Rounded() Summary {
	return Summary{
		Subtotal: Display(s.Subtotal),
		Tax:      Display(s.Tax),
		Shipping: Display(s.Shipping),
		Total:    Display(s.Total),
	}
}

// Display rounds an amount to two decimals.
func Display(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

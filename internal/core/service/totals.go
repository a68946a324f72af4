package service

import (
	"github.com/shopspring/decimal"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// TotalsInput is everything besides the cart lines that feeds a total.
type TotalsInput struct {
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Shipping *domain.ShippingMethod
	Payment  *domain.PaymentMethod
	Currency string
}

// CalculateTotals re-derives the whole breakdown from lines on every call.
// The payment fee is zero until a payment method is selected and is then
// added on top of the other components.
func CalculateTotals(lines []domain.CartLine, in TotalsInput) domain.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	// a discount never takes the merchandise below zero
	discount := in.Discount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	shipping := decimal.Zero
	if in.Shipping != nil {
		shipping = in.Shipping.Cost
	}
	fee := decimal.Zero
	if in.Payment != nil {
		fee = in.Payment.Fee
	}

	return domain.Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingCost:   shipping,
		TaxAmount:      in.Tax,
		PaymentFee:     fee,
		Total:          subtotal.Sub(discount).Add(shipping).Add(in.Tax).Add(fee),
		Currency:       in.Currency,
	}
}

// TotalItems sums quantities across lines.
func TotalItems(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

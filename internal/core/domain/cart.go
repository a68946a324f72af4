package domain

import (
	"github.com/shopspring/decimal"
)

// Product is the slice of catalog data the cart needs.
type Product struct {
	ID            string
	Name          string
	Sku           string
	Price         decimal.Decimal
	Published     bool
	StockQuantity int
}

// CartLine is one shopping cart entry.
type CartLine struct {
	ID           string           `json:"id"`
	ProductID    string           `json:"product_id"`
	ProductName  string           `json:"product_name"`
	Quantity     int              `json:"quantity"`
	CatalogPrice decimal.Decimal  `json:"catalog_price"`
	EnteredPrice *decimal.Decimal `json:"entered_price,omitempty"`
}

// UnitPrice is the entered price when present and positive, otherwise the
// catalog price.
func (l CartLine) UnitPrice() decimal.Decimal {
	if l.EnteredPrice != nil && l.EnteredPrice.IsPositive() {
		return *l.EnteredPrice
	}
	return l.CatalogPrice
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the monetary breakdown of a cart or checkout session.
//
// Total = Subtotal - DiscountAmount + ShippingCost + TaxAmount + PaymentFee.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	PaymentFee     decimal.Decimal `json:"payment_fee"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
}

// Balanced reports whether the totals invariant holds.
func (t Totals) Balanced() bool {
	want := t.Subtotal.Sub(t.DiscountAmount).Add(t.ShippingCost).Add(t.TaxAmount).Add(t.PaymentFee)
	return t.Total.Equal(want)
}

// Package provider holds the built-in shipping, payment, tax and discount
// providers the checkout runs with until real integrations are plugged in.
package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

var (
	_ ports.ShippingMethodProvider = (*StaticShipping)(nil)
	_ ports.PaymentMethodProvider  = (*StaticPayments)(nil)
	_ ports.TaxProvider            = (*FlatTax)(nil)
	_ ports.DiscountProvider       = NoDiscount{}
)

// StaticShipping offers the same methods for every address.
type StaticShipping struct {
	methods []domain.ShippingMethod
}

func NewStaticShipping() *StaticShipping {
	return &StaticShipping{methods: []domain.ShippingMethod{
		{
			ID:           "standard",
			Name:         "Standard Shipping",
			Description:  "5-7 business days",
			Cost:         decimal.RequireFromString("9.99"),
			DeliveryTime: "5-7 business days",
		},
		{
			ID:           "express",
			Name:         "Express Shipping",
			Description:  "2-3 business days",
			Cost:         decimal.RequireFromString("19.99"),
			DeliveryTime: "2-3 business days",
		},
	}}
}

// ShippingMethods returns a fresh copy so callers may toggle IsSelected.
func (s *StaticShipping) ShippingMethods(context.Context, *domain.Address, []domain.CartLine) ([]domain.ShippingMethod, error) {
	return append([]domain.ShippingMethod(nil), s.methods...), nil
}

// StaticPayments offers the same methods to every identity.
type StaticPayments struct {
	methods []domain.PaymentMethod
}

func NewStaticPayments() *StaticPayments {
	return &StaticPayments{methods: []domain.PaymentMethod{
		{
			ID:                     "creditcard",
			Name:                   "Credit Card",
			Description:            "Pay with credit or debit card",
			Fee:                    decimal.Zero,
			RequiresAdditionalInfo: true,
		},
		{
			ID:          "paypal",
			Name:        "PayPal",
			Description: "Pay with your PayPal account",
			Fee:         decimal.Zero,
		},
		{
			ID:          "cashondelivery",
			Name:        "Cash on Delivery",
			Description: "Pay when you receive your order",
			Fee:         decimal.RequireFromString("5.00"),
		},
	}}
}

func (p *StaticPayments) PaymentMethods(context.Context, domain.SessionIdentity, []domain.CartLine) ([]domain.PaymentMethod, error) {
	return append([]domain.PaymentMethod(nil), p.methods...), nil
}

// FlatTax charges Rate on the line subtotal, rounded to cents. A zero rate
// disables tax.
type FlatTax struct {
	Rate decimal.Decimal
}

func (t *FlatTax) Tax(_ context.Context, _ *domain.Address, lines []domain.CartLine) (decimal.Decimal, error) {
	if t.Rate.IsZero() {
		return decimal.Zero, nil
	}
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(l.LineTotal())
	}
	return sub.Mul(t.Rate).Round(2), nil
}

// NoDiscount never discounts.
type NoDiscount struct{}

func (NoDiscount) Discount(context.Context, uuid.UUID, []domain.CartLine) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

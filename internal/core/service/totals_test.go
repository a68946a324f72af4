package service

import (
	"testing"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

func TestCalculateTotals_Subtotal(t *testing.T) {
	lines := []domain.CartLine{{ID: "1", ProductID: "p1", Quantity: 2, CatalogPrice: dec("10.00")}}
	got := CalculateTotals(lines, TotalsInput{Currency: "USD"})
	if !got.Subtotal.Equal(dec("20.00")) {
		t.Fatalf("subtotal = %s, want 20.00", got.Subtotal)
	}
	if !got.Total.Equal(dec("20.00")) || got.Currency != "USD" {
		t.Errorf("totals = %+v", got)
	}
}

func TestCalculateTotals_EnteredPricePrecedence(t *testing.T) {
	cases := []struct {
		name    string
		entered *string
		want    string
	}{
		{"no entered price", nil, "30.00"},
		{"positive entered price", strPtr("4.50"), "13.50"},
		{"zero entered price", strPtr("0"), "30.00"},
		{"negative entered price", strPtr("-1"), "30.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := domain.CartLine{Quantity: 3, CatalogPrice: dec("10.00")}
			if tc.entered != nil {
				line.EnteredPrice = decPtr(*tc.entered)
			}
			got := CalculateTotals([]domain.CartLine{line}, TotalsInput{})
			if !got.Subtotal.Equal(dec(tc.want)) {
				t.Errorf("subtotal = %s, want %s", got.Subtotal, tc.want)
			}
		})
	}
}

func TestCalculateTotals_AllComponents(t *testing.T) {
	lines := []domain.CartLine{
		{Quantity: 1, CatalogPrice: dec("50.00")},
		{Quantity: 2, CatalogPrice: dec("7.25")},
	}
	got := CalculateTotals(lines, TotalsInput{
		Discount: dec("5.00"),
		Tax:      dec("3.10"),
		Shipping: &domain.ShippingMethod{ID: "express", Cost: dec("19.99")},
		Payment:  &domain.PaymentMethod{ID: "cashondelivery", Fee: dec("5.00")},
	})

	if !got.Subtotal.Equal(dec("64.50")) {
		t.Errorf("subtotal = %s", got.Subtotal)
	}
	if !got.Total.Equal(dec("87.59")) {
		t.Errorf("total = %s, want 87.59", got.Total)
	}
	if !got.Balanced() {
		t.Error("totals not balanced")
	}
}

func TestCalculateTotals_DiscountClamped(t *testing.T) {
	lines := []domain.CartLine{{Quantity: 1, CatalogPrice: dec("10.00")}}

	got := CalculateTotals(lines, TotalsInput{Discount: dec("25.00")})
	if !got.DiscountAmount.Equal(dec("10.00")) || !got.Total.IsZero() {
		t.Errorf("over-discount totals = %+v", got)
	}
	got = CalculateTotals(lines, TotalsInput{Discount: dec("-3")})
	if !got.DiscountAmount.IsZero() {
		t.Errorf("negative discount applied: %s", got.DiscountAmount)
	}
}

func TestCalculateTotals_EmptyCart(t *testing.T) {
	got := CalculateTotals(nil, TotalsInput{})
	if !got.Subtotal.IsZero() || !got.Total.IsZero() || !got.Balanced() {
		t.Errorf("totals = %+v", got)
	}
}

func strPtr(s string) *string { return &s }

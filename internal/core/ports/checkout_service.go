package ports

import (
	"context"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// PlaceOrderInput is the final checkout confirmation.
type PlaceOrderInput struct {
	AcceptTerms bool
	Notes       string
}

type CheckoutService interface {
	Start(ctx context.Context, identity domain.SessionIdentity) (*domain.CheckoutSession, error)
	Get(ctx context.Context, identity domain.SessionIdentity) (*domain.CheckoutSession, error)
	SetBillingAddress(ctx context.Context, identity domain.SessionIdentity, addr domain.Address) (*domain.CheckoutSession, error)
	SetShippingAddress(ctx context.Context, identity domain.SessionIdentity, addr *domain.Address, sameAsBilling bool) (*domain.CheckoutSession, error)
	ShippingMethods(ctx context.Context, identity domain.SessionIdentity) ([]domain.ShippingMethod, error)
	SelectShippingMethod(ctx context.Context, identity domain.SessionIdentity, methodID string) (*domain.CheckoutSession, error)
	PaymentMethods(ctx context.Context, identity domain.SessionIdentity) ([]domain.PaymentMethod, error)
	SelectPaymentMethod(ctx context.Context, identity domain.SessionIdentity, methodID string) (*domain.CheckoutSession, error)
	PlaceOrder(ctx context.Context, identity domain.SessionIdentity, input PlaceOrderInput) (*domain.OrderConfirmation, error)
}

package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// AddToCartInput is the request to put a product in the cart.
type AddToCartInput struct {
	ProductID    string
	Quantity     int
	EnteredPrice *decimal.Decimal
}

// CartView is the rendered cart.
type CartView struct {
	Lines      []domain.CartLine
	Totals     domain.Totals
	TotalItems int
	IsEmpty    bool
}

type CartService interface {
	GetCart(ctx context.Context, identity domain.SessionIdentity) (*CartView, error)
	AddItem(ctx context.Context, identity domain.SessionIdentity, input AddToCartInput) (*CartView, error)
	UpdateQuantity(ctx context.Context, identity domain.SessionIdentity, lineID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, identity domain.SessionIdentity, lineID string) (*CartView, error)
	Clear(ctx context.Context, identity domain.SessionIdentity) (*CartView, error)
	Totals(ctx context.Context, identity domain.SessionIdentity) (domain.Totals, error)
}

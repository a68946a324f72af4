package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// CartRepository persists the shopping cart of each customer.
type CartRepository interface {
	// Lines returns the cart in insertion order; an absent cart is empty.
	Lines(ctx context.Context, owner uuid.UUID) ([]domain.CartLine, error)
	// AddLine merges into an existing line for the same product and
	// entered price, otherwise appends.
	AddLine(ctx context.Context, owner uuid.UUID, line domain.CartLine) error
	// UpdateQuantity returns domain.ErrCartItemNotFound for unknown lines.
	UpdateQuantity(ctx context.Context, owner uuid.UUID, lineID string, quantity int) error
	// RemoveLine returns domain.ErrCartItemNotFound for unknown lines.
	RemoveLine(ctx context.Context, owner uuid.UUID, lineID string) error
	Clear(ctx context.Context, owner uuid.UUID) error
}

// ProductCatalog resolves products referenced by the cart.
type ProductCatalog interface {
	// FindProduct returns domain.ErrProductNotFound for unknown ids.
	FindProduct(ctx context.Context, productID string) (*domain.Product, error)
}

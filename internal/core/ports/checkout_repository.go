package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// CheckoutStore keeps one checkout session per identity.
type CheckoutStore interface {
	// Get returns domain.ErrCheckoutNotFound when no session exists.
	Get(ctx context.Context, owner uuid.UUID) (*domain.CheckoutSession, error)
	Save(ctx context.Context, session *domain.CheckoutSession) error
	Delete(ctx context.Context, owner uuid.UUID) error
}

// Locker serializes read-modify-write sequences scoped to one key.
type Locker interface {
	// Acquire returns domain.ErrLockNotAcquired if the lock could not be
	// taken before ctx is done or the wait budget runs out.
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// OrderRepository records placed orders.
type OrderRepository interface {
	Insert(ctx context.Context, order *domain.OrderConfirmation) error
}

// ShippingMethodProvider quotes shipping options. addr may be nil when no
// address is known yet.
type ShippingMethodProvider interface {
	ShippingMethods(ctx context.Context, addr *domain.Address, lines []domain.CartLine) ([]domain.ShippingMethod, error)
}

type PaymentMethodProvider interface {
	PaymentMethods(ctx context.Context, identity domain.SessionIdentity, lines []domain.CartLine) ([]domain.PaymentMethod, error)
}

type TaxProvider interface {
	Tax(ctx context.Context, addr *domain.Address, lines []domain.CartLine) (decimal.Decimal, error)
}

type DiscountProvider interface {
	Discount(ctx context.Context, owner uuid.UUID, lines []domain.CartLine) (decimal.Decimal, error)
}

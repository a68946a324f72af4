package ports

import (
	"context"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// EventPublisher hands registration events to downstream listeners
// (loyalty points, welcome email). Publish must not block on delivery.
type EventPublisher interface {
	PublishCustomerRegistered(ctx context.Context, event domain.CustomerRegistered)
}

// RegistrationListener consumes a single CustomerRegistered event.
type RegistrationListener interface {
	Name() string
	HandleCustomerRegistered(ctx context.Context, event domain.CustomerRegistered) error
}

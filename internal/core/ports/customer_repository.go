package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// CustomerRepository persists customer records.
type CustomerRepository interface {
	Insert(ctx context.Context, customer *domain.Customer) error
	// FindByGUID returns domain.ErrCustomerNotFound when no record matches.
	FindByGUID(ctx context.Context, guid uuid.UUID) (*domain.Customer, error)
	// FindByEmail returns domain.ErrCustomerNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	// Update writes every customer field except the refresh token slot.
	Update(ctx context.Context, customer *domain.Customer) error
	// Delete is a no-op when no record matches.
	Delete(ctx context.Context, guid uuid.UUID) error
}

// RefreshTokenRepository manages the single refresh token slot stored on a
// customer record.
type RefreshTokenRepository interface {
	// SaveRefreshToken overwrites the slot in one atomic write.
	SaveRefreshToken(ctx context.Context, owner uuid.UUID, token domain.RefreshToken) error
	// GetRefreshToken returns (nil, nil) when the slot is empty.
	GetRefreshToken(ctx context.Context, owner uuid.UUID) (*domain.RefreshToken, error)
	ClearRefreshToken(ctx context.Context, owner uuid.UUID) error
}

// CustomerManager verifies credentials and completes registrations.
type CustomerManager interface {
	// LoginCustomer returns the matched customer only on LoginSuccessful.
	LoginCustomer(ctx context.Context, email, password string) (domain.LoginResult, *domain.Customer, error)
	RegisterCustomer(ctx context.Context, req domain.RegistrationRequest) error
}

package ports

import (
	"context"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

// RegisterInput carries the registration form plus the optional bearer
// token of the guest session being upgraded.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	BearerToken     string
}

type AuthService interface {
	CreateGuest(ctx context.Context) (*domain.TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Register(ctx context.Context, input RegisterInput) (*domain.TokenPair, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, identity domain.SessionIdentity) error
}

// IdentityResolver turns a bearer token into the caller's identity.
type IdentityResolver interface {
	Resolve(bearerToken string) (domain.SessionIdentity, error)
}

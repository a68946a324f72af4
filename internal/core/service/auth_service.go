package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

// bcrypt ignores everything past 72 bytes and x/crypto rejects longer input.
const maxPasswordBytes = 72

const msgInvalidCredentials = "Invalid email or password"

// AuthService drives the guest, login, registration, refresh and logout
// flows. All of them end in issuePair.
type AuthService struct {
	customers ports.CustomerRepository
	manager   ports.CustomerManager
	codec     *TokenCodec
	refresh   *RefreshTokenStore
	events    ports.EventPublisher
	accessTTL time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	customers ports.CustomerRepository,
	manager ports.CustomerManager,
	codec *TokenCodec,
	refresh *RefreshTokenStore,
	events ports.EventPublisher,
	accessTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		customers: customers,
		manager:   manager,
		codec:     codec,
		refresh:   refresh,
		events:    events,
		accessTTL: accessTTL,
		log:       log,
		now:       time.Now,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

func (s *AuthService) CreateGuest(ctx context.Context) (*domain.TokenPair, error) {
	customer := s.newCustomer()
	if err := s.customers.Insert(ctx, customer); err != nil {
		return nil, domain.Internal("Failed to create guest session", err)
	}
	pair, err := s.issuePair(ctx, customer)
	if err != nil {
		return nil, domain.Internal("Failed to create guest session", err)
	}
	s.log.Info().Str("customer_guid", customer.GUID.String()).Msg("guest session created")
	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	result, customer, err := s.manager.LoginCustomer(ctx, email, password)
	if err != nil {
		return nil, domain.Internal("Login failed", err)
	}

	switch result {
	case domain.LoginSuccessful:
	case domain.LoginCustomerNotExist, domain.LoginWrongPassword:
		return nil, domain.Authentication(msgInvalidCredentials)
	case domain.LoginDeleted:
		return nil, domain.Authentication("Account has been deleted")
	case domain.LoginNotActive:
		return nil, domain.Authentication("Account is not active")
	case domain.LoginNotRegistered:
		return nil, domain.Authentication("Account is not registered")
	case domain.LoginLockedOut:
		return nil, domain.Authentication("Account is locked out")
	case domain.LoginRequiresTwoFactor:
		return nil, domain.StepUpRequired("Two-factor authentication required")
	default:
		return nil, domain.Authentication("Login failed")
	}
	if customer == nil {
		return nil, domain.Authentication(msgInvalidCredentials)
	}

	pair, err := s.issuePair(ctx, customer)
	if err != nil {
		return nil, domain.Internal("Login failed", err)
	}
	s.log.Info().Str("customer_guid", customer.GUID.String()).Msg("customer logged in")
	return pair, nil
}

// Register creates a registered account. A valid guest bearer token makes
// the guest's own customer record the registered one, keeping its GUID and
// therefore its cart.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.TokenPair, error) {
	if in.Password != in.ConfirmPassword {
		return nil, domain.Validation("Passwords do not match",
			domain.FieldError{Field: "confirmPassword", Message: "must match password"})
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.Validation("Invalid registration data",
			domain.FieldError{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)})
	}

	email := NormalizeEmail(in.Email)
	existing, err := s.customers.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsRegistered():
		return nil, domain.Conflict("Email address is already registered")
	case err != nil && !errors.Is(err, domain.ErrCustomerNotFound):
		return nil, domain.Internal("Registration failed", err)
	}

	customer, err := s.guestFromBearer(ctx, in.BearerToken)
	if err != nil {
		return nil, domain.Internal("Registration failed", err)
	}
	upgraded := customer != nil
	if !upgraded {
		customer = s.newCustomer()
		if err := s.customers.Insert(ctx, customer); err != nil {
			return nil, domain.Internal("Registration failed", err)
		}
	}

	req := domain.RegistrationRequest{
		Customer:  customer,
		Email:     email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Approved:  true,
	}
	if err := s.manager.RegisterCustomer(ctx, req); err != nil {
		if !upgraded {
			s.discardCustomer(ctx, customer.GUID)
		}
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, domain.ErrCustomerExists) {
			return nil, domain.Conflict("Email address is already registered")
		}
		return nil, domain.Internal("Registration failed", err)
	}

	s.events.PublishCustomerRegistered(ctx, domain.CustomerRegistered{
		CustomerGUID:      customer.GUID,
		Email:             customer.Email,
		FirstName:         customer.FirstName,
		LastName:          customer.LastName,
		UpgradedFromGuest: upgraded,
		OccurredAt:        s.now().UTC(),
	})

	pair, err := s.issuePair(ctx, customer)
	if err != nil {
		return nil, domain.Internal("Registration failed", err)
	}
	s.log.Info().Str("customer_guid", customer.GUID.String()).Bool("upgraded_from_guest", upgraded).Msg("customer registered")
	return pair, nil
}

// discardCustomer removes a record inserted for a registration that did not
// complete.
func (s *AuthService) discardCustomer(ctx context.Context, guid uuid.UUID) {
	if err := s.customers.Delete(context.WithoutCancel(ctx), guid); err != nil {
		s.log.Warn().Err(err).Str("customer_guid", guid.String()).Msg("failed to discard incomplete registration")
	}
}

// guestFromBearer returns the unregistered customer behind a valid guest
// token, or nil when the token is absent, undecodable or not a guest's.
func (s *AuthService) guestFromBearer(ctx context.Context, bearer string) (*domain.Customer, error) {
	if bearer == "" {
		return nil, nil
	}
	claims, err := s.codec.Decode(bearer, true)
	if err != nil {
		s.log.Debug().Err(err).Msg("register: bearer token ignored")
		return nil, nil
	}
	if domain.UserTypeForEmail(claims.Email) != domain.UserTypeGuest {
		return nil, nil
	}
	customer, err := s.customers.FindByGUID(ctx, claims.SubjectID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load guest customer: %w", err)
	}
	if customer.IsRegistered() || customer.Deleted {
		return nil, nil
	}
	return customer, nil
}

// Refresh exchanges a possibly expired access token plus the current refresh
// token for a new pair. The user type follows the customer's current email,
// not the presented token.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.codec.Decode(accessToken, false)
	if err != nil {
		return nil, domain.Authentication("Invalid access token")
	}

	customer, err := s.customers.FindByGUID(ctx, claims.SubjectID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, domain.Authentication("Customer not found")
	}
	if err != nil {
		return nil, domain.Internal("Token refresh failed", err)
	}

	ok, err := s.refresh.Validate(ctx, customer.GUID, refreshToken)
	if err != nil {
		return nil, domain.Internal("Token refresh failed", err)
	}
	if !ok {
		return nil, domain.Authentication("Invalid refresh token")
	}

	pair, err := s.issuePair(ctx, customer)
	if err != nil {
		return nil, domain.Internal("Token refresh failed", err)
	}
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, identity domain.SessionIdentity) error {
	if err := s.refresh.Revoke(ctx, identity.SubjectID); err != nil {
		return domain.Internal("Logout failed", err)
	}
	s.log.Info().Str("customer_guid", identity.SubjectID.String()).Msg("customer logged out")
	return nil
}

func (s *AuthService) newCustomer() *domain.Customer {
	now := s.now().UTC()
	return &domain.Customer{
		GUID:           uuid.New(),
		Active:         true,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// issuePair saves a new refresh token and then signs the access token. The
// two steps are not transactional: a failed signature leaves the new refresh
// token in the slot and the previous one invalidated.
func (s *AuthService) issuePair(ctx context.Context, customer *domain.Customer) (*domain.TokenPair, error) {
	identity := domain.SessionIdentity{
		SubjectID: customer.GUID,
		UserType:  domain.UserTypeForEmail(customer.Email),
		Email:     customer.Email,
	}

	value, err := s.refresh.Generate()
	if err != nil {
		return nil, err
	}
	if _, err := s.refresh.Save(ctx, customer.GUID, value); err != nil {
		return nil, err
	}
	access, err := s.codec.Issue(identity, s.accessTTL)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: value,
		ExpiresIn:    s.accessTTL,
		UserType:     identity.UserType,
		CustomerGUID: customer.GUID,
		Customer:     customer.Info(),
	}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

const (
	defaultMaxFailedLogins = 5
	defaultLockoutDuration = 15 * time.Minute
)

// CustomerManager verifies passwords against bcrypt hashes and tracks
// failed attempts, locking an account out after too many.
type CustomerManager struct {
	repo            ports.CustomerRepository
	log             zerolog.Logger
	maxFailedLogins int
	lockoutDuration time.Duration
	bcryptCost      int
	now             func() time.Time
}

func NewCustomerManager(repo ports.CustomerRepository, log zerolog.Logger) *CustomerManager {
	return &CustomerManager{
		repo:            repo,
		log:             log,
		maxFailedLogins: defaultMaxFailedLogins,
		lockoutDuration: defaultLockoutDuration,
		bcryptCost:      bcrypt.DefaultCost,
		now:             time.Now,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *CustomerManager) LoginCustomer(ctx context.Context, email, password string) (domain.LoginResult, *domain.Customer, error) {
	customer, err := m.repo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return domain.LoginCustomerNotExist, nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("login customer: %w", err)
	}

	switch {
	case customer.Deleted:
		return domain.LoginDeleted, nil, nil
	case !customer.Active:
		return domain.LoginNotActive, nil, nil
	case !customer.IsRegistered() || customer.PasswordHash == "":
		return domain.LoginNotRegistered, nil, nil
	}

	now := m.now().UTC()
	if customer.LockedOutUntil.After(now) {
		return domain.LoginLockedOut, nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		customer.FailedLoginAttempts++
		if customer.FailedLoginAttempts >= m.maxFailedLogins {
			customer.LockedOutUntil = now.Add(m.lockoutDuration)
			customer.FailedLoginAttempts = 0
			m.log.Warn().Str("customer_guid", customer.GUID.String()).Time("locked_until", customer.LockedOutUntil).Msg("customer locked out")
		}
		if err := m.repo.Update(ctx, customer); err != nil {
			return 0, nil, fmt.Errorf("login customer: record failed attempt: %w", err)
		}
		return domain.LoginWrongPassword, nil, nil
	}

	if customer.TwoFactorEnabled {
		return domain.LoginRequiresTwoFactor, nil, nil
	}

	customer.FailedLoginAttempts = 0
	customer.LockedOutUntil = time.Time{}
	customer.LastActivityAt = now
	if err := m.repo.Update(ctx, customer); err != nil {
		return 0, nil, fmt.Errorf("login customer: %w", err)
	}
	return domain.LoginSuccessful, customer, nil
}

// RegisterCustomer stores credentials on req.Customer, which must already
// exist in the repository.
func (m *CustomerManager) RegisterCustomer(ctx context.Context, req domain.RegistrationRequest) error {
	if req.Customer == nil {
		return errors.New("register customer: nil customer")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), m.bcryptCost)
	if err != nil {
		return fmt.Errorf("register customer: hash password: %w", err)
	}

	c := req.Customer
	c.Email = NormalizeEmail(req.Email)
	c.PasswordHash = string(hash)
	c.FirstName = strings.TrimSpace(req.FirstName)
	c.LastName = strings.TrimSpace(req.LastName)
	c.Active = req.Approved
	c.LastActivityAt = m.now().UTC()
	if err := m.repo.Update(ctx, c); err != nil {
		return fmt.Errorf("register customer: %w", err)
	}
	return nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the persisted account behind both guest and registered
// sessions. A guest is a customer without an email.
type Customer struct {
	GUID                uuid.UUID
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	Active              bool
	Deleted             bool
	TwoFactorEnabled    bool
	FailedLoginAttempts int
	LockedOutUntil      time.Time
	RefreshToken        *RefreshToken
	CreatedAt           time.Time
	LastActivityAt      time.Time
}

func (c *Customer) IsRegistered() bool { return c.Email != "" }

func (c *Customer) Info() *CustomerInfo {
	if !c.IsRegistered() {
		return nil
	}
	return &CustomerInfo{Email: c.Email, FirstName: c.FirstName, LastName: c.LastName}
}

// LoginResult is the outcome of credential verification.
type LoginResult int

const (
	LoginSuccessful LoginResult = iota
	LoginCustomerNotExist
	LoginDeleted
	LoginNotActive
	LoginNotRegistered
	LoginLockedOut
	LoginWrongPassword
	LoginRequiresTwoFactor
)

func (r LoginResult) String() string {
	switch r {
	case LoginSuccessful:
		return "successful"
	case LoginCustomerNotExist:
		return "customer_not_exist"
	case LoginDeleted:
		return "deleted"
	case LoginNotActive:
		return "not_active"
	case LoginNotRegistered:
		return "not_registered"
	case LoginLockedOut:
		return "locked_out"
	case LoginWrongPassword:
		return "wrong_password"
	case LoginRequiresTwoFactor:
		return "requires_two_factor"
	default:
		return "unknown"
	}
}

// RegistrationRequest carries everything needed to turn a customer record
// into a registered account.
type RegistrationRequest struct {
	Customer  *Customer
	Email     string
	Password  string
	FirstName string
	LastName  string
	Approved  bool
}

// CustomerRegistered is emitted after a registration has been persisted.
type CustomerRegistered struct {
	CustomerGUID      uuid.UUID `json:"customer_guid"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name,omitempty"`
	LastName          string    `json:"last_name,omitempty"`
	UpgradedFromGuest bool      `json:"upgraded_from_guest"`
	OccurredAt        time.Time `json:"occurred_at"`
}

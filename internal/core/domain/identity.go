package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserType tags a session as anonymous or registered.
type UserType string

const (
	UserTypeGuest      UserType = "guest"
	UserTypeRegistered UserType = "registered"
)

// SessionIdentity is the caller identity resolved from a bearer token.
type SessionIdentity struct {
	SubjectID uuid.UUID
	UserType  UserType
	Email     string
}

func (s SessionIdentity) IsGuest() bool { return s.UserType == UserTypeGuest }

// UserTypeForEmail is the single rule mapping email presence to a user type.
func UserTypeForEmail(email string) UserType {
	if email == "" {
		return UserTypeGuest
	}
	return UserTypeRegistered
}

// RefreshToken is the single live refresh credential of a customer.
type RefreshToken struct {
	Value   string    `bson:"value"`
	OwnerID uuid.UUID `bson:"-"`
	ValidTo time.Time `bson:"valid_to"`
}

// TokenPair is returned by every flow that authenticates a customer.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	UserType     UserType
	CustomerGUID uuid.UUID
	Customer     *CustomerInfo
}

// CustomerInfo is attached to token pairs of registered customers.
type CustomerInfo struct {
	Email     string
	FirstName string
	LastName  string
}

func (c CustomerInfo) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

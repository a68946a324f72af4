package service

import (
	"github.com/grandnode/mobile-api/internal/core/domain"
)

// IdentityResolver establishes the caller of a request from its bearer
// token. The user type comes from the presence of the email claim, never
// from the UserType claim or a stored role.
type IdentityResolver struct {
	codec *TokenCodec
}

func NewIdentityResolver(codec *TokenCodec) *IdentityResolver {
	return &IdentityResolver{codec: codec}
}

func (r *IdentityResolver) Resolve(bearerToken string) (domain.SessionIdentity, error) {
	if bearerToken == "" {
		return domain.SessionIdentity{}, domain.Authentication("Authentication required")
	}
	claims, err := r.codec.Decode(bearerToken, true)
	if err != nil {
		return domain.SessionIdentity{}, domain.Authentication("Invalid or expired token")
	}
	return identityFromClaims(claims), nil
}

func identityFromClaims(c *TokenClaims) domain.SessionIdentity {
	return domain.SessionIdentity{
		SubjectID: c.SubjectID,
		UserType:  domain.UserTypeForEmail(c.Email),
		Email:     c.Email,
	}
}

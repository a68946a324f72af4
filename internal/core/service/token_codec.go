package service

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

var (
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenClaims   = errors.New("token claims invalid")
	ErrTokenIssuer   = errors.New("token issuer invalid")
	ErrTokenAudience = errors.New("token audience invalid")
)

// TokenCodecConfig configures signing and verification of access tokens.
type TokenCodecConfig struct {
	Secret           string
	Issuer           string
	Audience         string
	ValidateIssuer   bool
	ValidateAudience bool
}

// TokenClaims is the decoded content of an access token.
type TokenClaims struct {
	SubjectID uuid.UUID
	UserType  domain.UserType
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionClaims struct {
	GUID     string `json:"Guid"`
	UserType string `json:"UserType"`
	Email    string `json:"Email,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 access tokens. It has no knowledge of
// storage.
type TokenCodec struct {
	cfg    TokenCodecConfig
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(cfg TokenCodecConfig) *TokenCodec {
	return &TokenCodec{cfg: cfg, secret: []byte(cfg.Secret), now: time.Now}
}

// WithClock returns a copy of the codec reading time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue signs a token for identity valid for ttl. Every call gets a fresh jti.
func (c *TokenCodec) Issue(identity domain.SessionIdentity, ttl time.Duration) (string, error) {
	if identity.SubjectID == uuid.Nil {
		return "", fmt.Errorf("issue token: %w: empty subject", ErrTokenClaims)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("issue token: non-positive ttl %s", ttl)
	}

	// NumericDate has whole-second resolution, so the issue instant is
	// truncated and exp is exactly iat + ttl.
	now := c.now().UTC().Truncate(time.Second)
	claims := sessionClaims{
		GUID:     identity.SubjectID.String(),
		UserType: string(identity.UserType),
		Email:    identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if c.cfg.Issuer != "" {
		claims.Issuer = c.cfg.Issuer
	}
	if c.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{c.cfg.Audience}
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns its claims. The signature is always
// checked; issuer and audience only when configured; expiry only when
// validateExpiry is set. Expiry has no leeway.
func (c *TokenCodec) Decode(token string, validateExpiry bool) (*TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if validateExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
		if c.cfg.ValidateIssuer {
			opts = append(opts, jwt.WithIssuer(c.cfg.Issuer))
		}
		if c.cfg.ValidateAudience {
			opts = append(opts, jwt.WithAudience(c.cfg.Audience))
		}
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if !validateExpiry {
		if err := c.verifyIssuerAudience(&claims); err != nil {
			return nil, err
		}
	}

	subject, err := uuid.Parse(claims.GUID)
	if err != nil || subject == uuid.Nil {
		return nil, fmt.Errorf("%w: Guid", ErrTokenClaims)
	}

	out := &TokenClaims{
		SubjectID: subject,
		UserType:  domain.UserType(claims.UserType),
		Email:     claims.Email,
		TokenID:   claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (c *TokenCodec) verifyIssuerAudience(claims *sessionClaims) error {
	if c.cfg.ValidateIssuer && claims.Issuer != c.cfg.Issuer {
		return ErrTokenIssuer
	}
	if c.cfg.ValidateAudience && !slices.Contains(claims.Audience, c.cfg.Audience) {
		return ErrTokenAudience
	}
	return nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrTokenIssuer, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", ErrTokenAudience, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

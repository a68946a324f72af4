package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

// refreshTokenBytes gives 256 bits of entropy (43 chars base64url).
const refreshTokenBytes = 32

// RefreshTokenStore keeps exactly one live refresh token per customer. Save
// overwrites the slot, so any earlier token stops validating immediately.
type RefreshTokenStore struct {
	repo ports.RefreshTokenRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewRefreshTokenStore(repo ports.RefreshTokenRepository, ttl time.Duration) *RefreshTokenStore {
	return &RefreshTokenStore{repo: repo, ttl: ttl, now: time.Now}
}

// Generate returns a fresh unguessable token value.
func (s *RefreshTokenStore) Generate() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Save stores value as owner's only refresh token.
func (s *RefreshTokenStore) Save(ctx context.Context, owner uuid.UUID, value string) (domain.RefreshToken, error) {
	token := domain.RefreshToken{
		Value:   value,
		OwnerID: owner,
		ValidTo: s.now().UTC().Add(s.ttl),
	}
	if err := s.repo.SaveRefreshToken(ctx, owner, token); err != nil {
		return domain.RefreshToken{}, fmt.Errorf("save refresh token: %w", err)
	}
	return token, nil
}

// Validate reports whether presented is owner's current, unexpired token.
func (s *RefreshTokenStore) Validate(ctx context.Context, owner uuid.UUID, presented string) (bool, error) {
	stored, err := s.repo.GetRefreshToken(ctx, owner)
	if err != nil {
		return false, fmt.Errorf("load refresh token: %w", err)
	}
	if stored == nil || presented == "" {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(stored.Value), []byte(presented)) != 1 {
		return false, nil
	}
	return s.now().Before(stored.ValidTo), nil
}

// Revoke clears owner's slot. Revoking an empty slot is not an error.
func (s *RefreshTokenStore) Revoke(ctx context.Context, owner uuid.UUID) error {
	if err := s.repo.ClearRefreshToken(ctx, owner); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "0123456789abcdef0123456789abcdef",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "GrandNode-MobileApi", cfg.Auth.Issuer)
	assert.Equal(t, "GrandNode-MobileApi", cfg.Auth.Audience)
	assert.True(t, cfg.Auth.ValidateIssuer)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL())
	assert.Equal(t, 24*time.Hour, cfg.Checkout.SessionTTL)
	assert.Equal(t, "USD", cfg.Checkout.Currency)
	assert.Equal(t, "0", cfg.Checkout.TaxRate)
	assert.Equal(t, 4, cfg.Events.Workers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "mobile_api", cfg.Mongo.Database)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":               "s",
		"ENV":                      "production",
		"MOBILE_API_ENABLED":       "false",
		"ACCESS_TOKEN_TTL_MINUTES": "15",
		"CHECKOUT_LOCK_TIMEOUT":    "750ms",
		"TAX_RATE":                 "0.08",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, 750*time.Millisecond, cfg.Checkout.LockTimeout)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret":   {},
		"zero access ttl":  {"JWT_SECRET": "s", "ACCESS_TOKEN_TTL_MINUTES": "0"},
		"negative refresh": {"JWT_SECRET": "s", "REFRESH_TOKEN_TTL_MINUTES": "-1"},
		"bad tax rate":     {"JWT_SECRET": "s", "TAX_RATE": "abc"},
		"negative tax":     {"JWT_SECRET": "s", "TAX_RATE": "-0.1"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

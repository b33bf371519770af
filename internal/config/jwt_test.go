package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsJWT(t *testing.T) {
	s := &Settings{AppName: "assistant", SecretKey: "test-secret-key", SessionTTL: 2 * time.Hour}

	cfg, err := s.JWT()
	require.NoError(t, err)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 2*time.Hour, cfg.TTL)
	assert.Equal(t, "assistant", cfg.Issuer)
}

func TestSettingsJWT_Invalid(t *testing.T) {
	_, err := (&Settings{SessionTTL: time.Hour}).JWT()
	assert.Error(t, err, "empty secret")

	_, err = (&Settings{SecretKey: "k", SessionTTL: 30 * time.Second}).JWT()
	assert.Error(t, err, "ttl below one minute")
}

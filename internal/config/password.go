package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/job-assistant/internal/apperr"
)

// bcrypt ignores input past 72 bytes and newer versions reject it outright.
const bcryptMaxInput = 72

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPasswordConfig reads BCRYPT_COST (default: 12) and optionally PASSWORD_PEPPER
// through lookup, which is normally os.LookupEnv.
func NewPasswordConfig(lookup func(string) (string, bool)) (*PasswordConfig, error) {
	env := envReader{lookup: lookup}
	cfg := &PasswordConfig{
		BcryptCost: env.getInt("BCRYPT_COST", 12),
		Pepper:     env.getString("PASSWORD_PEPPER", ""),
	}
	if env.err != nil {
		return nil, env.err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return &apperr.ConfigurationError{Message: fmt.Sprintf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)}
	}
	return nil
}

// prepare applies the pepper and condenses inputs bcrypt cannot take whole.
func (c *PasswordConfig) prepare(pw string) []byte {
	password := pw + c.Pepper
	if len(password) > bcryptMaxInput {
		sum := sha256.Sum256([]byte(password))
		return []byte(hex.EncodeToString(sum[:]))
	}
	return []byte(password)
}

// HashPassword hashes a password using bcrypt.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(c.prepare(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), c.prepare(pw)) == nil
}

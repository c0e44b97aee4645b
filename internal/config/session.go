package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrNoSessionSecret is returned when SESSION_SECRET is not set.
var ErrNoSessionSecret = errors.New("SESSION_SECRET is required but not set")

// DefaultSessionTTLHours is how long a browser session cookie stays valid.
const DefaultSessionTTLHours = 24 * 30

// SessionConfig holds the signing secret and lifetime of session cookies.
type SessionConfig struct {
	Secret   string
	TTLHours int
}

// NewSessionConfig reads SESSION_SECRET (required) and SESSION_TTL_HOURS
// (default DefaultSessionTTLHours) from the environment.
func NewSessionConfig() (*SessionConfig, error) {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, ErrNoSessionSecret
	}

	ttl := DefaultSessionTTLHours
	if s := os.Getenv("SESSION_TTL_HOURS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %v", err)
		}
		ttl = n
	}

	cfg := &SessionConfig{Secret: secret, TTLHours: ttl}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EphemeralSessionConfig returns a config with a random secret. Sessions
// signed with it do not survive a restart.
func EphemeralSessionConfig() (*SessionConfig, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return &SessionConfig{Secret: hex.EncodeToString(buf), TTLHours: DefaultSessionTTLHours}, nil
}

// TTL returns the session lifetime.
func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c *SessionConfig) normalize() error {
	if c.Secret == "" {
		return ErrNoSessionSecret
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters, got %d", len(c.Secret))
	}
	if c.TTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be at least 1 hour, got: %d", c.TTLHours)
	}
	return nil
}

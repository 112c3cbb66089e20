package config

import (
	"fmt"
	"os"
)

// AuthConfig wires the single service account the HTTP surface
// authenticates. The deployment is single-tenant: one username, one bcrypt
// hash, one signing secret. Auth is optional; a deployment without
// AUTH_USERNAME runs the API open.
type AuthConfig struct {
	Username     string
	PasswordHash string
	JWT          *JWTConfig
	Password     *PasswordConfig
}

// NewAuthConfig reads AUTH_USERNAME and AUTH_PASSWORD_HASH from the
// environment. Both unset means auth is disabled and (nil, nil) is returned;
// setting one without the other is a configuration error.
func NewAuthConfig() (*AuthConfig, error) {
	username := os.Getenv("AUTH_USERNAME")
	passwordHash := os.Getenv("AUTH_PASSWORD_HASH")

	if username == "" && passwordHash == "" {
		return nil, nil
	}
	if username == "" || passwordHash == "" {
		return nil, fmt.Errorf("AUTH_USERNAME and AUTH_PASSWORD_HASH must be set together")
	}

	jwtConfig, err := NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("auth enabled but JWT misconfigured: %w", err)
	}
	passwordConfig, err := NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("auth enabled but password hashing misconfigured: %w", err)
	}

	return &AuthConfig{
		Username:     username,
		PasswordHash: passwordHash,
		JWT:          jwtConfig,
		Password:     passwordConfig,
	}, nil
}

// Verify checks a login attempt against the service account.
func (a *AuthConfig) Verify(username, password string) bool {
	if username != a.Username {
		return false
	}
	return a.Password.VerifyPassword(password, a.PasswordHash)
}

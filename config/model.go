package config

import (
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	AppEnv             string
	ServerAddress      string
	DatabaseURL        string
	DatabaseName       string
	CollectionUserName string
	JWTSecret          string
	TokenTTL           time.Duration
	RequestTimeout     time.Duration
	MetricsEnabled     bool

	// Bootstrap admin, seeded at startup when no Admin account exists.
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	AdminAddress  string
}

// IsDevelopment checks if the current environment is development
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction checks if the current environment is production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetDatabaseName returns the appropriate database name based on environment
func (c *Config) GetDatabaseName() string {
	return c.DatabaseName
}

// HasBootstrapAdmin reports whether enough admin settings are present to seed one.
func (c *Config) HasBootstrapAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.DatabaseName == "" {
		return errors.New("DATABASE_NAME is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"user-accounts-backend/config"
)

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is applied first when it exists;
// variables already set in the environment win over it.
func LoadConfig() *config.Config {
	_ = godotenv.Load()

	config := &config.Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		ServerAddress:      getEnv("SERVER_ADDRESS", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "mongodb://localhost:27017"),
		DatabaseName:       getEnv("DATABASE_NAME", "Accounts_Dev"),
		CollectionUserName: getEnv("COLLECTION_USERS", "users"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           getEnvDuration("TOKEN_TTL", time.Hour),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		AdminAddress:       getEnv("ADMIN_ADDRESS", "-"),
	}

	return config
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

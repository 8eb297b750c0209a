package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	UserStore      string
	PostStore      string
	MongoURI       string
	MongoDB        string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	JWTSecret      string
	TokenTTL       time.Duration
	CORSOrigins    []string
}

// Store drivers accepted by USER_STORE and POST_STORE.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	return &Config{
		Port:           getenv("PORT", "4000"),
		UserStore:      getenv("USER_STORE", DriverMongo),
		PostStore:      getenv("POST_STORE", DriverMongo),
		MongoURI:       getenv("MONGO_URI", os.Getenv("MONGODB_URI")),
		MongoDB:        getenv("MONGO_DB", "blog"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "post-covers"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		JWTSecret:      getenv("JWT_SECRET", ""),
		TokenTTL:       ttl,
		CORSOrigins:    splitList(getenv("CORS_ALLOWED_ORIGIN", "http://localhost:3000")),
	}, nil
}

// Validate reports missing or contradictory settings.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	switch c.UserStore {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("USER_STORE: unknown driver %q", c.UserStore)
	}
	switch c.PostStore {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("POST_STORE: unknown driver %q", c.PostStore)
	}
	if c.UsesMongo() && c.MongoURI == "" {
		return errors.New("MONGO_URI is required for the mongo store")
	}
	if c.UserStore == DriverPostgres && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required for the postgres store")
	}
	return nil
}

// UsesMongo reports whether any store is backed by MongoDB.
func (c *Config) UsesMongo() bool {
	return c.UserStore == DriverMongo || c.PostStore == DriverMongo
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

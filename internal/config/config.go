package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Auth configuration
	Auth AuthConfig

	// Generation collaborator configuration
	Generation GenerationConfig

	// Billing collaborator configuration
	Billing BillingConfig

	// Domain verification configuration
	DNS DNSConfig

	// Marketing scheduler configuration
	Marketing MarketingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// PublicBaseDomain is the apex under which published sites are served,
	// e.g. "sites.siteforge.dev" -> https://<project_id>.sites.siteforge.dev
	PublicBaseDomain string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AuthConfig holds bearer-token settings
type AuthConfig struct {
	JWTSecret string
}

// GenerationConfig holds settings for the external generation service
type GenerationConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// BillingConfig holds settings for the billing/plan service
type BillingConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DNSConfig holds domain verification settings
type DNSConfig struct {
	// ResolverURL is a DNS-over-HTTPS endpoint with a JSON response format
	ResolverURL string
	// ChallengeLabel names the TXT record: _<label>-verification.<domain>
	ChallengeLabel string
	LookupTimeout  time.Duration
	// CertServiceURL is the certificate provisioning collaborator
	CertServiceURL string
}

// MarketingConfig holds scheduler settings
type MarketingConfig struct {
	// PublishLogCap bounds the per-project sweep log to the most recent N entries
	PublishLogCap int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnv("PORT", "8080"),
			ReadTimeout:      getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:     getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:  getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			PublicBaseDomain: getEnv("PUBLIC_BASE_DOMAIN", "sites.siteforge.dev"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "content_pipeline"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Generation: GenerationConfig{
			Endpoint: getEnv("GENERATION_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
			APIKey:   getEnv("GENERATION_API_KEY", ""),
			Model:    getEnv("GENERATION_MODEL", "gpt-4o-mini"),
			Timeout:  getDurationEnv("GENERATION_TIMEOUT", 60*time.Second),
		},
		Billing: BillingConfig{
			BaseURL: getEnv("BILLING_BASE_URL", "http://localhost:8090"),
			APIKey:  getEnv("BILLING_API_KEY", ""),
			Timeout: getDurationEnv("BILLING_TIMEOUT", 10*time.Second),
		},
		DNS: DNSConfig{
			ResolverURL:    getEnv("DNS_RESOLVER_URL", "https://dns.google/resolve"),
			ChallengeLabel: getEnv("DNS_CHALLENGE_LABEL", "siteforge"),
			LookupTimeout:  getDurationEnv("DNS_LOOKUP_TIMEOUT", 10*time.Second),
			CertServiceURL: getEnv("CERT_SERVICE_URL", ""),
		},
		Marketing: MarketingConfig{
			PublishLogCap: getIntEnv("MARKETING_PUBLISH_LOG_CAP", 50),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DNS.ChallengeLabel == "" {
		return fmt.Errorf("DNS_CHALLENGE_LABEL is required")
	}
	if c.Marketing.PublishLogCap <= 0 {
		return fmt.Errorf("MARKETING_PUBLISH_LOG_CAP must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

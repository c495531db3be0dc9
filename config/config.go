package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings. Loaded once at startup from the
// environment, with an optional .env file for local development.
type Config struct {
	AppEnv  string
	Addr    string
	AppName string

	DBDSN string

	JWTSigningKey       string
	JWTIssuer           string
	JWTAudience         []string
	AccessTokenTTL      int
	RefreshTokenTTLDays int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// Load reads configuration from the environment. JWT_SECRET is always
// required; SMTP settings are required outside the local environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "local"),
		Addr:                getEnv("APP_ADDR", ":8080"),
		AppName:             getEnv("APP_NAME", "Pollwise"),
		DBDSN:               getEnv("DB_DSN", "file:pollwise.db?cache=shared&mode=rwc"),
		JWTSigningKey:       os.Getenv("JWT_SECRET"),
		JWTIssuer:           getEnv("JWT_ISSUER", "pollwise"),
		JWTAudience:         splitList(getEnv("JWT_AUDIENCE", "pollwise")),
		AccessTokenTTL:      getEnvInt("JWT_ACCESS_HOURS", 1),
		RefreshTokenTTLDays: getEnvInt("JWT_REFRESH_DAYS", 7),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPass:            os.Getenv("SMTP_PASS"),
		SMTPFrom:            os.Getenv("SMTP_FROM"),
	}

	missing := []string{}
	if cfg.JWTSigningKey == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if !cfg.IsLocal() {
		if cfg.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if cfg.SMTPUser == "" {
			missing = append(missing, "SMTP_USER")
		}
		if cfg.SMTPPass == "" {
			missing = append(missing, "SMTP_PASS")
		}
		if cfg.SMTPFrom == "" {
			missing = append(missing, "SMTP_FROM")
		}
	}

	if len(missing) > 0 {
		return nil, errors.New("missing env: " + strings.Join(missing, ", "))
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.AppEnv == "local"
}

// HasSMTP reports whether enough settings exist to send real email.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// The following getters satisfy the auth token configuration contract.

func (c *Config) GetSigningKey() string {
	return c.JWTSigningKey
}

func (c *Config) GetIssuer() string {
	return c.JWTIssuer
}

func (c *Config) GetAudience() []string {
	return c.JWTAudience
}

// GetAccessTokenTTL returns the access token lifetime in hours.
func (c *Config) GetAccessTokenTTL() int {
	return c.AccessTokenTTL
}

func (c *Config) GetRefreshTokenTTLDays() int {
	return c.RefreshTokenTTLDays
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

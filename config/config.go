// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all backend configuration.
type Config struct {
	// Store – DB_DRIVER selects postgres (production) or sqlite (local demo).
	DBDriver   string
	SQLitePath string

	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// CrawlerAPIKey authenticates the snapshot producer (required).
	CrawlerAPIKey string

	// ResyncEvents is how many recent events a fresh stream subscriber receives.
	ResyncEvents int

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
}

// CrawlerConfig holds configuration shared by the crawlerd producer binary.
type CrawlerConfig struct {
	BackendBaseURL string
	CrawlerAPIKey  string
	SourceBaseURL  string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SQLITE_PATH", "basehaptic.db")
	v.SetDefault("DB_USER", "basehaptic")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "basehaptic")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("RESYNC_EVENTS", 20)
	v.SetDefault("PORT", ":8080")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath:    v.GetString("SQLITE_PATH"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBUser:        v.GetString("DB_USER"),
		DBPass:        v.GetString("DB_PASS"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		CrawlerAPIKey: v.GetString("CRAWLER_API_KEY"),
		ResyncEvents:  v.GetInt("RESYNC_EVENTS"),
		Debug:         v.GetBool("DEBUG"),
		Port:          v.GetString("PORT"),
		TLSDomains:    splitTrimmed(v.GetString("TLS_DOMAINS")),
	}

	cfg.validate()
	return cfg
}

// LoadCrawler reads config used by the crawlerd binary from .env and
// environment variables.
func LoadCrawler() *CrawlerConfig {
	v := newViper()

	// Defaults
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8080")
	v.SetDefault("SOURCE_BASE_URL", "https://api-gw.sports.naver.com")

	cfg := &CrawlerConfig{
		BackendBaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		CrawlerAPIKey:  v.GetString("CRAWLER_API_KEY"),
		SourceBaseURL:  strings.TrimRight(v.GetString("SOURCE_BASE_URL"), "/"),
	}

	if cfg.CrawlerAPIKey == "" {
		log.Fatal("config: CRAWLER_API_KEY must be set")
	}
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func (c *Config) validate() {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" && c.DBPass == "" {
			log.Fatal("config: DATABASE_URL or DB_PASS must be set")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			log.Fatal("config: SQLITE_PATH must be set")
		}
	default:
		log.Fatalf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.CrawlerAPIKey == "" {
		log.Fatal("config: CRAWLER_API_KEY must be set")
	}
	if c.ResyncEvents < 1 {
		c.ResyncEvents = 20
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

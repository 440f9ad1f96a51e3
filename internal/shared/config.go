package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Builder     BuilderConfig     `toml:"builder"`
}

// CredentialsConfig contains catalog API credentials.
type CredentialsConfig struct {
	Catalog CatalogConfig `toml:"catalog"`
}

// CatalogConfig contains credentials for the streaming catalog API.
//
// AccessToken is a user-scoped bearer used for playlist creation; when it is
// empty the client falls back to the client-credentials grant, which covers
// search, recommendation, and metadata lookups.
type CatalogConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
}

// DatabaseConfig contains database connection settings for the build history store.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BuilderConfig contains playlist builder defaults.
type BuilderConfig struct {
	ContentPolicy   string  `toml:"content_policy"`
	DurationMinutes int     `toml:"duration_minutes"`
	RateLimit       float64 `toml:"rate_limit"` // Catalog requests per second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads a .env file if one exists, then returns whether catalog
// credentials are resolvable from the environment.
//
// Missing .env files are not an error; environment variables may be set
// directly in the shell.
func LoadEnv(path string) bool {
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path)
	return os.Getenv("CATALOG_CLIENT_ID") != "" && os.Getenv("CATALOG_CLIENT_SECRET") != ""
}

// applyEnv overlays catalog credentials from environment variables.
// Environment values win over file values so secrets can stay out of config.toml.
func (c *Config) applyEnv() {
	if v := os.Getenv("CATALOG_CLIENT_ID"); v != "" {
		c.Credentials.Catalog.ClientID = v
	}
	if v := os.Getenv("CATALOG_CLIENT_SECRET"); v != "" {
		c.Credentials.Catalog.ClientSecret = v
	}
	if v := os.Getenv("CATALOG_ACCESS_TOKEN"); v != "" {
		c.Credentials.Catalog.AccessToken = v
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/forgo/setlist/api/internal/database"
)

// PathEnvVar names the environment variable holding an optional YAML
// config file path
const PathEnvVar = "CONFIG_PATH"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Identity  IdentityConfig  `koanf:"identity"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `koanf:"port"`
	Env             string        `koanf:"env"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the document store backend
type DatabaseConfig struct {
	Driver string `koanf:"driver"`

	// SurrealDB
	Host      string `koanf:"host"`
	Port      string `koanf:"port"`
	Namespace string `koanf:"namespace"`
	Database  string `koanf:"database"`
	User      string `koanf:"user"`
	Password  string `koanf:"password"`

	// Badger; empty runs in memory
	BadgerPath string `koanf:"badger_path"`

	// DynamoDB
	DynamoTable    string `koanf:"dynamo_table"`
	DynamoRegion   string `koanf:"dynamo_region"`
	DynamoEndpoint string `koanf:"dynamo_endpoint"`
}

// IdentityConfig holds the OpenID Connect relying party settings
type IdentityConfig struct {
	Issuer       string        `koanf:"issuer"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	RedirectURL  string        `koanf:"redirect_url"`
	Scopes       []string      `koanf:"scopes"`
	StateTTL     time.Duration `koanf:"state_ttl"`
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
	MaxAge         int      `koanf:"max_age"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Env:             "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       database.DriverBadger,
			Host:         "localhost",
			Port:         "8000",
			Namespace:    "setlist",
			Database:     "main",
			User:         "root",
			Password:     "root",
			DynamoTable:  "setlist",
			DynamoRegion: "us-east-1",
		},
		Identity: IdentityConfig{
			Scopes:   []string{"openid", "profile", "email"},
			StateTTL: 10 * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxAge:         300,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   time.Minute,
		},
	}
}

// Load builds the configuration from defaults, then an optional YAML file,
// then environment variables. path overrides CONFIG_PATH when set.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitLists(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// envKeys maps environment variables to config paths. Variables not
// listed are ignored.
var envKeys = map[string]string{
	"server_port":             "server.port",
	"server_env":              "server.env",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",

	"db_driver":          "database.driver",
	"db_host":            "database.host",
	"db_port":            "database.port",
	"db_namespace":       "database.namespace",
	"db_database":        "database.database",
	"db_user":            "database.user",
	"db_password":        "database.password",
	"db_badger_path":     "database.badger_path",
	"db_dynamo_table":    "database.dynamo_table",
	"db_dynamo_region":   "database.dynamo_region",
	"db_dynamo_endpoint": "database.dynamo_endpoint",

	"oidc_issuer":        "identity.issuer",
	"oidc_client_id":     "identity.client_id",
	"oidc_client_secret": "identity.client_secret",
	"oidc_redirect_url":  "identity.redirect_url",
	"oidc_scopes":        "identity.scopes",
	"oauth_state_ttl":    "identity.state_ttl",

	"cors_allowed_origins": "cors.allowed_origins",
	"cors_max_age":         "cors.max_age",

	"rate_limit_enabled":  "rate_limit.enabled",
	"rate_limit_requests": "rate_limit.requests",
	"rate_limit_window":   "rate_limit.window",
}

func envKey(key string) string {
	return envKeys[strings.ToLower(key)]
}

// listKeys are read from the environment as comma-separated strings
var listKeys = []string{"identity.scopes", "cors.allowed_origins"}

func splitLists(k *koanf.Koanf) error {
	for _, key := range listKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var items []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}

	// Database validation
	switch c.Database.Driver {
	case database.DriverSurrealDB:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required for surrealdb"))
		}
		if c.Database.Namespace == "" || c.Database.Database == "" {
			errs = append(errs, errors.New("DB_NAMESPACE and DB_DATABASE are required for surrealdb"))
		}
	case database.DriverBadger:
		if c.IsProduction() && c.Database.BadgerPath == "" {
			errs = append(errs, errors.New("DB_BADGER_PATH is required in production"))
		}
	case database.DriverDynamoDB:
		if c.Database.DynamoTable == "" {
			errs = append(errs, errors.New("DB_DYNAMO_TABLE is required for dynamodb"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be 'surrealdb', 'badger', or 'dynamodb', got '%s'", c.Database.Driver))
	}

	// Identity validation - optional outside production, all-or-nothing when set
	if c.Identity.IsConfigured() || c.IsProduction() {
		if err := c.Identity.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("OIDC: %w", err))
		}
	}
	if c.Identity.StateTTL <= 0 {
		errs = append(errs, errors.New("OAUTH_STATE_TTL must be positive"))
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive when rate limiting is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IsConfigured returns true if any OIDC field is set
func (i IdentityConfig) IsConfigured() bool {
	return i.Issuer != "" || i.ClientID != "" || i.ClientSecret != "" || i.RedirectURL != ""
}

// Validate checks that all required OIDC fields are present
func (i IdentityConfig) Validate() error {
	var missing []string
	if i.Issuer == "" {
		missing = append(missing, "OIDC_ISSUER")
	}
	if i.ClientID == "" {
		missing = append(missing, "OIDC_CLIENT_ID")
	}
	if i.ClientSecret == "" {
		missing = append(missing, "OIDC_CLIENT_SECRET")
	}
	if i.RedirectURL == "" {
		missing = append(missing, "OIDC_REDIRECT_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// StoreConfig converts the database settings for database.Open
func (d DatabaseConfig) StoreConfig() database.Config {
	return database.Config{
		Driver:         d.Driver,
		Host:           d.Host,
		Port:           d.Port,
		User:           d.User,
		Password:       d.Password,
		Namespace:      d.Namespace,
		Database:       d.Database,
		BadgerPath:     d.BadgerPath,
		DynamoTable:    d.DynamoTable,
		DynamoRegion:   d.DynamoRegion,
		DynamoEndpoint: d.DynamoEndpoint,
	}
}

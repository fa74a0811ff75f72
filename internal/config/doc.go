// Package config manages application configuration for the Setlist API.
//
// # Configuration Loading
//
// Values are layered with koanf, later layers winning: Defaults(), then an
// optional YAML file (the -config flag or CONFIG_PATH), then environment
// variables.
//
//	cfg, err := config.Load(*configPath)
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts)
//   - DatabaseConfig: store backend selection and connection settings
//   - IdentityConfig: OpenID Connect relying party settings
//   - CORSConfig, RateLimitConfig: request middleware settings
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT          - HTTP server port (default: 8080)
//	SERVER_ENV           - development, production, or test
//	DB_DRIVER            - surrealdb, badger, or dynamodb (default: badger)
//	DB_BADGER_PATH       - Badger directory; empty runs in memory
//	DB_DYNAMO_TABLE      - DynamoDB table name
//	OIDC_ISSUER          - identity provider issuer URL
//	OIDC_CLIENT_ID       - OAuth client id
//	OIDC_REDIRECT_URL    - callback URL registered with the provider
//	CORS_ALLOWED_ORIGINS - comma-separated origins
//	RATE_LIMIT_REQUESTS  - requests per window per client IP
//
// Lists may be given as comma-separated strings in the environment or as
// YAML sequences in the file.
package config

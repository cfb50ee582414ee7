// Package config loads the sign-up server configuration from environment
// variables.
//
// # Overview
//
// Every setting has a default. A .env file in the working directory is read
// first; variables already set in the environment win over it.
//
// # Configuration Structure
//
// Server settings:
//
//	SIGNUP_HOST="0.0.0.0"
//	SIGNUP_PORT="3001"
//	SIGNUP_HEALTH_PORT="9090"
//	SIGNUP_CORS_ORIGINS="https://signup.example.com,http://localhost:5173"
//	SIGNUP_SUBMIT_RATE="1"   # POST /submit requests per second per client
//	SIGNUP_SUBMIT_BURST="5"
//
// Database settings:
//
//	SIGNUP_DATABASE_DRIVER="postgres"  # postgres, sqlite3
//	DATABASE_URL="postgres://localhost/signup?sslmode=disable"
//	SIGNUP_DATABASE_AUTO_MIGRATE="true"
//
// Catalog cache settings:
//
//	SIGNUP_CACHE_ENABLED="true"
//	SIGNUP_CACHE_TTL="5m"
//	SIGNUP_REDIS_URL="redis://localhost:6379/0"
//	SIGNUP_CACHE_REFRESH_SCHEDULE="@every 5m"
//
// Catalog seed settings:
//
//	SIGNUP_CATALOG_SEED_FILE="catalog.yaml"
//	SIGNUP_CATALOG_WATCH="false"  # reload the seed file when it changes
//
// The signup-cli wizard reads SIGNUP_FAILURE_STEP (1-4) through
// LoadWizardConfig; the server ignores it.
//
// Observability settings:
//
//	SIGNUP_LOG_LEVEL="info"  # debug, info, warn, error
//	SIGNUP_LOG_FORMAT="json" # json, text
//	SIGNUP_OTEL_ENABLED="true"
//	SIGNUP_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Listening on %s\n", cfg.Server.Addr())
package config

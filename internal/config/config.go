package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int    `env:"PORT"        envDefault:"8080"`
	APIKey      string `env:"API_KEY"` // API key for authentication
	LogLevel    string `env:"LOG_LEVEL"   envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"  envDefault:"text"`
	LogDir      string `env:"LOG_DIR"     envDefault:"logs"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	Version     string `env:"VERSION"     envDefault:"dev"`

	// X-Forwarded-For is only honoured from these peers
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	CatalogPath string `env:"CATALOG_PATH" envDefault:"configs/catalog.yaml"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	ProfileID   string `env:"PROFILE_ID"   envDefault:"default"`

	// Postgres store
	DBUser            string        `env:"DB_USER"               envDefault:"postgres"`
	DBPassword        string        `env:"DB_PASSWORD"           envDefault:"postgres"`
	DBHost            string        `env:"DB_HOST"               envDefault:"localhost"`
	DBPort            string        `env:"DB_PORT"               envDefault:"5432"`
	DBName            string        `env:"DB_NAME"               envDefault:"brandishgacha"`
	DBMaxConns        int           `env:"DB_MAX_CONNS"          envDefault:"20"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME"  envDefault:"30m"`

	// SQLite store
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/save.db"`

	// Engine
	RNGSeed           uint64 `env:"RNG_SEED"           envDefault:"0"`
	StartingPrimary   int64  `env:"STARTING_PRIMARY"   envDefault:"1600"`
	StartingSecondary int64  `env:"STARTING_SECONDARY" envDefault:"10"`
	SimulationWorkers int    `env:"SIMULATION_WORKERS" envDefault:"4"`

	// Events
	EventMaxRetries     int           `env:"EVENT_MAX_RETRIES"     envDefault:"5"`
	EventRetryDelay     time.Duration `env:"EVENT_RETRY_DELAY"     envDefault:"2s"`
	EventDeadLetterPath string        `env:"EVENT_DEADLETTER_PATH" envDefault:"logs/event_deadletter.jsonl"`

	// HTTP pull replay
	IdempotencyCacheSize int           `env:"IDEMPOTENCY_CACHE_SIZE" envDefault:"1024"`
	IdempotencyTTL       time.Duration `env:"IDEMPOTENCY_TTL"        envDefault:"10m"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom parses and validates configuration from an explicit variable set.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgParseEnv, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.APIKey == "" {
		add("API_KEY environment variable must be set for security")
	}
	if c.Port < 1 || c.Port > 65535 {
		add("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		add("LOG_LEVEL must be one of %v, got %q", validLogLevels, c.LogLevel)
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		add("LOG_FORMAT must be one of %v, got %q", validLogFormats, c.LogFormat)
	}
	if c.CatalogPath == "" {
		add("CATALOG_PATH must be set")
	}
	if c.ProfileID == "" {
		add("PROFILE_ID must be set")
	}

	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
			add("DB_HOST, DB_NAME and DB_USER are required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
		if c.DBMaxConns < 1 {
			add("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
		}
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			add("SQLITE_PATH is required when STORE_DRIVER=%s", StoreDriverSQLite)
		}
	default:
		add("STORE_DRIVER must be one of %v, got %q", validStoreDrivers, c.StoreDriver)
	}

	if c.StartingPrimary < 0 || c.StartingSecondary < 0 {
		add("STARTING_PRIMARY and STARTING_SECONDARY must not be negative")
	}
	if c.SimulationWorkers < 1 {
		add("SIMULATION_WORKERS must be positive, got %d", c.SimulationWorkers)
	}
	if c.EventMaxRetries < 0 {
		add("EVENT_MAX_RETRIES must not be negative, got %d", c.EventMaxRetries)
	}
	if c.IdempotencyCacheSize < 1 {
		add("IDEMPOTENCY_CACHE_SIZE must be positive, got %d", c.IdempotencyCacheSize)
	}
	if c.IdempotencyTTL <= 0 {
		add("IDEMPOTENCY_TTL must be positive, got %s", c.IdempotencyTTL)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", ErrMsgInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Warnings lists settings that are valid but probably unintended
func (c *Config) Warnings() []string {
	var warnings []string
	if c.DBPassword == InsecureExamplePassword {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}
	if c.APIKey == InsecureExampleAPIKey {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}
	if c.Environment == EnvironmentProduction && c.StoreDriver == StoreDriverMemory {
		warnings = append(warnings, "STORE_DRIVER=memory in production - game state is lost on restart")
	}
	return warnings
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

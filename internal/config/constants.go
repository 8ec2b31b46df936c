package config

// Store drivers
const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Environments
const (
	EnvironmentDev        = "dev"
	EnvironmentProduction = "production"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Example values shipped in .env.example
const (
	InsecureExamplePassword = "change_this_secure_password"
	InsecureExampleAPIKey   = "generate_with_openssl_rand_hex_32"
)

// Error messages
const (
	ErrMsgParseEnv      = "failed to parse environment"
	ErrMsgInvalidConfig = "invalid configuration"
)

var (
	validStoreDrivers = []string{StoreDriverMemory, StoreDriverPostgres, StoreDriverSQLite}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validLogFormats   = []string{LogFormatText, LogFormatJSON}
)

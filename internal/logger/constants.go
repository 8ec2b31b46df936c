package logger

// Level names accepted by Config.Level
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Environment names used by the preset configs
const (
	EnvironmentDevelopment = "dev"
	EnvironmentProduction  = "production"
)

const (
	DefaultServiceName = "brandish-gacha"
	DefaultVersion     = "dev"
)

// Attribute keys
const (
	AttrKeyService     = "service"
	AttrKeyVersion     = "version"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"
	AttrKeyClientIP    = "client_ip"
)

package handler

// Client-facing error messages. Internal causes are logged, never echoed.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"


	ErrMsgInvalidLimit  = "Invalid limit parameter"
	ErrMsgInvalidTrials = "Invalid trials parameter"
	ErrMsgInvalidSeed   = "Invalid seed parameter"
	ErrMsgMissingPoolID = "Missing pool id"


	ErrMsgPullFailed       = "Failed to pull"
	ErrMsgSwitchPoolFailed = "Failed to switch pool"
	ErrMsgGetRatesFailed   = "Failed to get rates"
	ErrMsgGetBalanceFailed = "Failed to get balances"
	ErrMsgSimulateFailed   = "Failed to run simulation"
)

// Success messages for API responses
const (
	MsgPoolSwitchedSuccess = "Active pool switched"
)

// Headers
const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"

	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// Query defaults
const (
	DefaultHistoryLimit = 50
	MaxIdempotencyKey   = 128
)

// Log messages
const (
	LogMsgPullServed      = "Pull served"
	LogMsgPullReplayed    = "Replayed pull for idempotency key"
	LogMsgServiceError    = "Service call failed"
	LogMsgPoolSwitched    = "Active pool switched via API"
	LogMsgSimulationStart = "Simulation requested"

	LogMsgDecodeFailed     = "Failed to decode request body"
	LogMsgValidationFailed = "Request failed validation"
	LogMsgBadQueryParam    = "Invalid query parameter"
	LogMsgReadinessFailed  = "Readiness check failed"
	LogMsgEncodeFailed     = "Failed to encode JSON response"
	LogMsgWriteFailed      = "Failed to write response body"
)

package validation

// Error messages
const (
	ErrMsgSchemaExists     = "schema already registered"
	ErrMsgSchemaNotFound   = "schema not registered"
	ErrMsgValidationFailed = "schema validation failed"
)

package postgres

// Error Messages - Game State
const (
	ErrMsgFailedToGetState    = "failed to read game state"
	ErrMsgFailedToSetState    = "failed to write game state"
	ErrMsgFailedToUpdateState = "failed to apply game state update"
)

// Log Messages
const (
	LogMsgFailedToRollback = "Failed to rollback transaction"
)

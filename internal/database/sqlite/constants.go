package sqlite

// DriverName is the database/sql name registered by modernc.org/sqlite.
const DriverName = "sqlite"

const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Error Messages
const (
	ErrMsgPathRequired        = "storage path is required"
	ErrMsgFailedToOpen        = "failed to open sqlite db"
	ErrMsgFailedToPing        = "failed to ping sqlite db"
	ErrMsgFailedToGetState    = "failed to read game state"
	ErrMsgFailedToSetState    = "failed to write game state"
	ErrMsgFailedToUpdateState = "failed to apply game state update"
)

// Log Messages
const (
	LogMsgOpened           = "Opened sqlite save file"
	LogMsgFailedToRollback = "Failed to rollback transaction"
)

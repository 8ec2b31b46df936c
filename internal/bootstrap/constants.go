package bootstrap

import "time"

// Files written during startup.
const (
	DirPermission     = 0755
	LogFilePermission = 0666

	// session_2026-03-01_12-00-00.log
	LogFileTimestampFormat = "2006-01-02_15-04-05"
	LogFileNamePattern     = "session_%s.log"
	LogFileExtension       = ".log"

	// LogFileRetentionCount older sessions survive alongside the current one.
	LogFileRetentionCount = 9
)

// Event publishing fallbacks, used when the config leaves a field at zero.
const (
	EventDefaultMaxRetries     = 5
	EventDefaultRetryDelay     = 2 * time.Second
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

// SeedSource is the patch source recorded when starting balances are written.
const SeedSource = "bootstrap"

const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingApp         = "Starting BrandishGacha"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"

	LogMsgEventSystemInitialized = "Event system initialized"
	LogMsgRarePull               = "Rare pull"

	LogMsgStoreOpened      = "Game state store opened"
	LogMsgCatalogLoaded    = "Catalog loaded"
	LogMsgCatalogGap       = "Catalog has no item for rarity; placeholders will be awarded"
	LogMsgWalletSeeded     = "Wallet seeded with starting balances"
	LogMsgWalletAlreadySet = "Wallet already initialized, seeding skipped"
	LogMsgEngineRestored   = "Engine state restored"

	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgClosingStore               = "Closing game state store..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgStoreCloseFailed           = "Game state store close failed"
)

// Error prefixes; the cause is wrapped after a colon.
const (
	LogMsgFailedCreateLogsDir            = "failed to create logs directory"
	LogMsgFailedOpenLogFile              = "failed to open log file"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
	ErrMsgFailedRegisterMetrics          = "failed to register metrics collector"
	ErrMsgFailedLoadCatalog              = "failed to load catalog"
	ErrMsgFailedOpenStore                = "failed to open game state store"
	ErrMsgFailedSeedWallet               = "failed to seed wallet"
	ErrMsgFailedRestore                  = "failed to restore engine state"
	ErrMsgUnknownDriver                  = "unknown store driver"
)

package store

// Error context strings
const (
	ErrContextOpenDatabase  = "failed to open database"
	ErrContextCloseDatabase = "failed to close database"
	ErrContextCreateBucket  = "failed to create documents bucket"
	ErrContextBucketMissing = "documents bucket missing"
	ErrContextWriteDocument = "failed to write document"
	ErrContextReadDocument  = "failed to read document"
)

// Log messages
const (
	LogMsgClosingStore              = "Closing store"
	LogMsgStateDocumentCorrupt      = "State document unreadable, starting from defaults"
	LogMsgBalancesDocumentCorrupt   = "Balances document unreadable, starting empty"
	LogMsgNoSnapshotRegistered      = "No snapshot registered for document"
	LogMsgSnapshotFailed            = "Failed to snapshot document"
	LogMsgWriteFailed               = "Failed to persist document, will retry on next schedule"
	LogMsgShuttingDownWriteQueue    = "Shutting down write queue"
	LogMsgWriteQueueShutdownDone    = "Write queue shutdown complete"
	LogMsgWriteQueueShutdownTimeout = "Write queue shutdown timeout, pending writes may be lost"
)

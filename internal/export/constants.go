package export

// Error context strings
const (
	ErrContextSnapshot  = "failed to snapshot game state"
	ErrContextCreateDir = "failed to create export directory"
	ErrContextMarshal   = "failed to marshal export payload"
	ErrContextWriteFile = "failed to write export file"
)

// Log messages
const (
	LogMsgExported = "Game data exported"
)

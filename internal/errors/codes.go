package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrNotImplemented  ErrorCode = "not_implemented"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Launch pipeline errors. Only ErrChildProcess halts a session;
	// everything else degrades and stays observable in the log.
	ErrValidationDegraded      ErrorCode = "validation_degraded"
	ErrExternalToolUnavailable ErrorCode = "external_tool_unavailable"
	ErrExternalCallFailed      ErrorCode = "external_call_failed"
	ErrChildProcess            ErrorCode = "child_process_error"
	ErrRestoreFailed           ErrorCode = "restore_failed"

	// Session lifecycle errors
	ErrSessionActive     ErrorCode = "session_active"
	ErrInvalidToken      ErrorCode = "invalid_session_token"
	ErrInvalidTransition ErrorCode = "invalid_state_transition"

	// Profile store errors
	ErrProfileNotFound ErrorCode = "profile_not_found"
	ErrProfileEncode   ErrorCode = "profile_encode_failed"
	ErrProfileDecode   ErrorCode = "profile_decode_failed"

	// Compositor errors
	ErrCompositorUnsupported ErrorCode = "compositor_unsupported"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:                "Internal error occurred",
	ErrInvalidArgument:         "Invalid argument provided",
	ErrNotImplemented:          "Operation not implemented",
	ErrAlreadyRunning:          "Another instance is already running",
	ErrInvalidConfig:           "Invalid configuration",
	ErrBindFlags:               "Failed to bind flags",
	ErrReadConfig:              "Failed to read configuration",
	ErrInvalidLogLevel:         "Invalid log level",
	ErrInitFailed:              "Initialization failed",
	ErrShutdownFailed:          "Shutdown failed",
	ErrValidationDegraded:      "Invalid field substituted with default",
	ErrExternalToolUnavailable: "External tool not available",
	ErrExternalCallFailed:      "External tool call failed",
	ErrChildProcess:            "Child process failed",
	ErrRestoreFailed:           "Failed to restore pre-launch state",
	ErrSessionActive:           "A launch session is already active",
	ErrInvalidToken:            "Unknown session token",
	ErrInvalidTransition:       "Invalid session state transition",
	ErrProfileNotFound:         "Profile not found",
	ErrProfileEncode:           "Failed to encode profile",
	ErrProfileDecode:           "Failed to decode profile",
	ErrCompositorUnsupported:   "Compositor not supported",
	ErrOperationFailed:         "Operation failed",
	ErrTimeout:                 "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}

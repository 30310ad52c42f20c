package opencode

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrNotStarted     = errors.New("session not started")
	ErrSessionClosed  = errors.New("session is closed")
	ErrServerExited   = errors.New("server process exited unexpectedly")
)

// ParseError reports a payload that could not be decoded: invalid JSON, a
// missing discriminant, or a missing required field inside a recognized
// branch. Payload holds the offending JSON for logging.
type ParseError struct {
	Cause   error
	Message string
	Payload string
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConnectError reports a failure to open or keep the event stream.
type ConnectError struct {
	Cause      error
	URL        string
	StatusCode int
}

func (e *ConnectError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("connect error: %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("connect error: %s: %v", e.URL, e.Cause)
}

func (e *ConnectError) Unwrap() error {
	return e.Cause
}

// ProcessError reports a managed server process failure.
type ProcessError struct {
	Cause    error
	Message  string
	Stderr   string
	ExitCode int
}

func (e *ProcessError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("process error: %s (exit code %d)", e.Message, e.ExitCode)
	}
	return fmt.Sprintf("process error: %s", e.Message)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// CLINotFoundError indicates the opencode binary was not found.
type CLINotFoundError struct {
	Cause error
	Path  string
}

func (e *CLINotFoundError) Error() string {
	return fmt.Sprintf("CLI binary not found at %q: %v", e.Path, e.Cause)
}

func (e *CLINotFoundError) Unwrap() error {
	return e.Cause
}

// IsRecoverable reports whether a session can continue after err. Decode
// failures affect a single event; process and connection teardown do not.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	var procErr *ProcessError
	if errors.As(err, &procErr) {
		return false
	}

	var cliErr *CLINotFoundError
	if errors.As(err, &cliErr) {
		return false
	}

	if errors.Is(err, ErrSessionClosed) {
		return false
	}

	return true
}

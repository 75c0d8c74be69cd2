// Package session supervises one game launch at a time: pre-launch
// system changes, the child process, and the restoration of everything
// that was changed.
package session

import (
	"time"

	"codeberg.org/mutker/gamectl/internal/launch"
)

// State is the supervisor's lifecycle position. Transitions only move
// forward around the cycle; Restoring always ends in Idle.
type State int

const (
	Idle State = iota
	PreLaunch
	Running
	Restoring
)

func (s State) String() string {
	switch s {
	case PreLaunch:
		return "pre-launch"
	case Running:
		return "running"
	case Restoring:
		return "restoring"
	default:
		return "idle"
	}
}

// Result is the outcome of a finished session.
type Result struct {
	ExitCode  int
	Cancelled bool
}

// Runner spawns the composed child process. Abstracted so tests can
// substitute a fake child.
type Runner interface {
	Start(inv launch.Invocation) (Process, error)
}

// Process is a running child. Wait blocks until exit and returns the
// exit code; Terminate asks politely, Kill does not.
type Process interface {
	Wait() (int, error)
	Terminate() error
	Kill() error
}

// Journal records session begin/end events. A nil journal disables
// recording.
type Journal interface {
	Begin(token, profileName string, command []string, startedAt time.Time) error
	Finish(token string, endedAt time.Time, exitCode int, cancelled bool) error
}

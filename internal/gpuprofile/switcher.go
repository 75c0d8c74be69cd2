// Package gpuprofile switches GPU power profiles through the LACT
// daemon's CLI. The tool is optional: callers probe IsAvailable and
// degrade to a no-op when it is missing.
package gpuprofile

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/logger"
)

const lactBinary = "lact"

// Switcher reads and sets the active GPU power profile.
type Switcher interface {
	IsAvailable() bool
	List(ctx context.Context) ([]string, error)
	Active(ctx context.Context) (string, error)
	SetActive(ctx context.Context, name string) error
}

type cliSwitcher struct {
	timeout time.Duration
}

// NewSwitcher returns a Switcher backed by the lact CLI, every call
// bounded by the given timeout.
func NewSwitcher(timeout time.Duration) Switcher {
	return &cliSwitcher{timeout: timeout}
}

func (s *cliSwitcher) IsAvailable() bool {
	_, err := exec.LookPath(lactBinary)
	return err == nil
}

func (s *cliSwitcher) run(ctx context.Context, args ...string) (string, error) {
	errFactory := errors.New()

	if !s.IsAvailable() {
		return "", errFactory.New(errors.ErrExternalToolUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, lactBinary, args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", errFactory.Wrap(errors.ErrTimeout, ctx.Err())
		}
		return "", errFactory.WithData(errors.ErrExternalCallFailed, lactBinary+": "+err.Error())
	}

	return string(out), nil
}

// List returns the daemon's profile names. The default profile is
// reported by lact as "Default"; it is included verbatim.
func (s *cliSwitcher) List(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "cli", "profile", "list")
	if err != nil {
		return nil, err
	}

	return ParseProfileList(out), nil
}

func (s *cliSwitcher) Active(ctx context.Context) (string, error) {
	out, err := s.run(ctx, "cli", "profile", "get")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

func (s *cliSwitcher) SetActive(ctx context.Context, name string) error {
	logger.Debug().Str("profile", name).Msg("Switching GPU power profile")

	_, err := s.run(ctx, "cli", "profile", "switch", name)
	return err
}

// ParseProfileList extracts profile names from `lact cli profile list`
// output, one per line, list markers and the active-profile asterisk
// stripped.
func ParseProfileList(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimSuffix(line, " *")
		if line == "" {
			continue
		}
		names = append(names, line)
	}

	return names
}

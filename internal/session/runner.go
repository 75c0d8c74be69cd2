package session

import (
	"os"
	"os/exec"
	"syscall"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/launch"
)

type execRunner struct{}

// NewRunner returns the default Runner, spawning the child with stdio
// inherited so the game owns the terminal for its lifetime.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Start(inv launch.Invocation) (Process, error) {
	errFactory := errors.New()

	if len(inv.Argv) == 0 {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "empty command")
	}

	cmd := exec.Command(inv.Argv[0], inv.Argv[1:]...)
	cmd.Env = inv.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, errFactory.Wrap(errors.ErrChildProcess, err)
	}

	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, errors.New().Wrap(errors.ErrChildProcess, err)
}

func (p *execProcess) Terminate() error {
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

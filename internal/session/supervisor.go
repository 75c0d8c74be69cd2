package session

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/launch"
	"codeberg.org/mutker/gamectl/internal/logger"
	"codeberg.org/mutker/gamectl/internal/profile"
	"codeberg.org/mutker/gamectl/internal/screen"
	"github.com/google/uuid"
)

// Config wires the supervisor's collaborators. Journal may be nil.
type Config struct {
	GPU     gpuprofileSwitcher
	Screen  screen.Adapter
	Runner  Runner
	Journal Journal
	Ambient []string
}

// gpuprofileSwitcher mirrors gpuprofile.Switcher without importing it,
// keeping the supervisor testable against a fake.
type gpuprofileSwitcher interface {
	IsAvailable() bool
	Active(ctx context.Context) (string, error)
	SetActive(ctx context.Context, name string) error
}

// Supervisor runs at most one session at a time. Every session that
// leaves Idle comes back to Idle, restoration included, regardless of
// how the child ends.
type Supervisor struct {
	mu  sync.Mutex
	cfg Config

	state     State
	token     string
	profile   *profile.Profile
	compiled  profile.Compiled
	target    []string
	startedAt time.Time
	cancelled bool

	prevGPUProfile string
	gpuApplied     bool
	screenRestore  []screen.Directive
	screenApplied  bool

	proc Process
}

func NewSupervisor(cfg Config) *Supervisor {
	if cfg.Runner == nil {
		cfg.Runner = NewRunner()
	}

	return &Supervisor{cfg: cfg}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Begin starts a session: compiles the profile, snapshots the GPU power
// profile and monitor layout, and applies the profile's pre-launch
// changes. External failures degrade and are logged; only a second
// concurrent session is an error. The returned token names the session
// for Run, Cancel and Kill.
func (s *Supervisor) Begin(ctx context.Context, p *profile.Profile, target []string) (string, error) {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return "", errFactory.New(errors.ErrSessionActive)
	}

	s.state = PreLaunch
	s.token = uuid.NewString()
	s.profile = p
	s.target = target
	s.startedAt = time.Now()
	s.compiled = profile.Compile(p)

	for _, w := range s.compiled.Warnings {
		logger.Warn().
			Str("field", w.Field).
			Msg(w.Message)
	}

	s.applyGPUProfile(ctx)
	s.applyScreenPlan(ctx)

	if s.cfg.Journal != nil {
		if err := s.cfg.Journal.Begin(s.token, p.Name, target, s.startedAt); err != nil {
			logger.Warn().Err(err).Msg("Failed to record session start")
		}
	}

	logger.Info().
		Str("profile", p.Name).
		Str("session", s.token).
		Msg("Session prepared")

	return s.token, nil
}

func (s *Supervisor) applyGPUProfile(ctx context.Context) {
	name := s.profile.GPUProfile.Name
	if name == nil || s.cfg.GPU == nil {
		return
	}
	if !s.cfg.GPU.IsAvailable() {
		logger.Warn().
			Str("error_code", string(errors.ErrExternalToolUnavailable)).
			Msg("GPU profile switcher not available, skipping")
		return
	}

	prev, err := s.cfg.GPU.Active(ctx)
	if err != nil {
		logger.ErrorWithCode(err).Msg("Failed to read active GPU power profile")
		return
	}
	if err := s.cfg.GPU.SetActive(ctx, *name); err != nil {
		logger.ErrorWithCode(err).Str("profile", *name).Msg("Failed to switch GPU power profile")
		return
	}

	s.prevGPUProfile = prev
	s.gpuApplied = true
}

func (s *Supervisor) applyScreenPlan(ctx context.Context) {
	if s.cfg.Screen == nil {
		return
	}

	plan := screen.PlanFromSettings(s.profile.Screen)
	if plan.IsEmpty() {
		return
	}

	compositor := s.cfg.Screen.Detect()
	snapshot, err := s.cfg.Screen.ListMonitors(ctx)
	if err != nil {
		logger.ErrorWithCode(err).Msg("Failed to snapshot monitor layout")
		return
	}

	res := screen.Resolve(compositor, snapshot, plan)
	if res.Unsupported {
		logger.Warn().
			Str("error_code", string(errors.ErrCompositorUnsupported)).
			Msg("Compositor not supported, monitor plan skipped")
		return
	}

	applied := false
	for _, d := range res.Directives {
		if err := s.cfg.Screen.Apply(ctx, d); err != nil {
			logger.ErrorWithCode(err).Str("monitor", d.Monitor).Msg("Failed to apply monitor directive")
			continue
		}
		applied = true
	}
	if applied {
		s.screenRestore = res.Restore
		s.screenApplied = true
	}
}

// Run spawns the child and blocks until the session is over and the
// system is restored. A spawn failure still restores before returning.
func (s *Supervisor) Run(ctx context.Context, token string) (Result, error) {
	errFactory := errors.New()

	s.mu.Lock()
	if err := s.ensure(token, PreLaunch); err != nil {
		s.mu.Unlock()
		return Result{}, err
	}

	inv := launch.Compose(s.compiled, s.target, s.cfg.Ambient)
	proc, err := s.cfg.Runner.Start(inv)
	if err != nil {
		s.state = Restoring
		s.mu.Unlock()

		s.finish(ctx, -1)

		return Result{ExitCode: -1}, errFactory.Wrap(errors.ErrChildProcess, err)
	}

	s.proc = proc
	s.state = Running
	s.mu.Unlock()

	logger.Info().Str("session", token).Str("command", inv.Argv[0]).Msg("Child process started")

	type exit struct {
		code int
		err  error
	}
	exitCh := make(chan exit, 1)
	go func() {
		code, waitErr := proc.Wait()
		exitCh <- exit{code: code, err: waitErr}
	}()

	var e exit
	select {
	case e = <-exitCh:
	case <-ctx.Done():
		// Cooperative teardown: ask the child to stop, then wait it out.
		if termErr := proc.Terminate(); termErr != nil {
			logger.Warn().Err(termErr).Msg("Failed to signal child process")
		}
		s.mu.Lock()
		s.cancelled = true
		s.mu.Unlock()
		e = <-exitCh
	}

	if e.err != nil {
		logger.ErrorWithCode(e.err).Msg("Child process wait failed")
	}

	s.mu.Lock()
	s.state = Restoring
	cancelled := s.cancelled
	s.mu.Unlock()

	s.finish(ctx, e.code)

	logger.Info().
		Str("session", token).
		Int("exit_code", e.code).
		Bool("cancelled", cancelled).
		Msg("Session finished")

	return Result{ExitCode: e.code, Cancelled: cancelled}, nil
}

// Cancel ends the session cooperatively. During PreLaunch it restores
// the partial snapshot and skips Running entirely; during Running it
// signals the child and lets Run drive restoration.
func (s *Supervisor) Cancel(ctx context.Context, token string) error {
	errFactory := errors.New()

	s.mu.Lock()
	if err := s.ensure(token, PreLaunch, Running); err != nil {
		s.mu.Unlock()
		return err
	}

	s.cancelled = true

	if s.state == Running {
		proc := s.proc
		s.mu.Unlock()

		if err := proc.Terminate(); err != nil {
			return errFactory.Wrap(errors.ErrChildProcess, err)
		}

		return nil
	}

	s.state = Restoring
	s.mu.Unlock()

	s.finish(ctx, -1)

	return nil
}

// Kill forcibly terminates the child. Restoration still runs, driven by
// the blocked Run call observing the exit.
func (s *Supervisor) Kill(token string) error {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensure(token, Running); err != nil {
		return err
	}

	if err := s.proc.Kill(); err != nil {
		return errFactory.Wrap(errors.ErrChildProcess, err)
	}

	return nil
}

// ensure validates the token and that the state is one of the given
// states. Callers hold the mutex.
func (s *Supervisor) ensure(token string, states ...State) error {
	errFactory := errors.New()

	if token == "" || token != s.token {
		return errFactory.New(errors.ErrInvalidToken)
	}
	for _, st := range states {
		if s.state == st {
			return nil
		}
	}

	return errFactory.WithData(errors.ErrInvalidTransition, s.state.String())
}

// finish restores the snapshot, records the journal entry and returns
// the supervisor to Idle. Restoration failures are logged, never
// propagated; the state machine always completes the cycle.
func (s *Supervisor) finish(ctx context.Context, exitCode int) {
	// Restoration must run even when the session context was cancelled.
	ctx = context.WithoutCancel(ctx)

	if s.gpuApplied && s.profile.RestoreGPUProfile() {
		prev := s.prevGPUProfile
		s.restoreResource("gpu_profile", func() error {
			return s.cfg.GPU.SetActive(ctx, prev)
		})
	}
	if s.screenApplied && s.profile.RestoreMonitors() {
		directives := s.screenRestore
		s.restoreResource("monitors", func() error {
			for _, d := range directives {
				if err := s.cfg.Screen.Apply(ctx, d); err != nil {
					return err
				}
			}
			return nil
		})
	}

	s.mu.Lock()
	token := s.token
	cancelled := s.cancelled
	s.mu.Unlock()

	if s.cfg.Journal != nil {
		if err := s.cfg.Journal.Finish(token, time.Now(), exitCode, cancelled); err != nil {
			logger.Warn().Err(err).Msg("Failed to record session end")
		}
	}

	s.mu.Lock()
	s.state = Idle
	s.token = ""
	s.profile = nil
	s.target = nil
	s.proc = nil
	s.cancelled = false
	s.prevGPUProfile = ""
	s.gpuApplied = false
	s.screenRestore = nil
	s.screenApplied = false
	s.mu.Unlock()
}

// restoreResource applies one restoration step with a single retry.
// Directives are idempotent, so the retry reapplies the whole step.
func (s *Supervisor) restoreResource(name string, fn func() error) {
	err := fn()
	if err == nil {
		return
	}

	logger.Warn().Str("resource", name).Err(err).Msg("Restore attempt failed, retrying")

	if err := fn(); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrRestoreFailed, err)).
			Str("resource", name).
			Msg("Restore failed after retry")
	}
}

package session

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/launch"
	"codeberg.org/mutker/gamectl/internal/profile"
	"codeberg.org/mutker/gamectl/internal/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSwitcher struct {
	available bool
	active    string
	switches  []string
	failures  int // SetActive failures before succeeding
}

func (f *fakeSwitcher) IsAvailable() bool { return f.available }

func (f *fakeSwitcher) Active(context.Context) (string, error) {
	return f.active, nil
}

func (f *fakeSwitcher) SetActive(_ context.Context, name string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New().New(errors.ErrExternalCallFailed)
	}
	f.switches = append(f.switches, name)
	f.active = name

	return nil
}

type fakeAdapter struct {
	compositor screen.Compositor
	monitors   []screen.Monitor
	applied    []screen.Directive
}

func (f *fakeAdapter) Detect() screen.Compositor { return f.compositor }

func (f *fakeAdapter) ListMonitors(context.Context) ([]screen.Monitor, error) {
	return f.monitors, nil
}

func (f *fakeAdapter) Apply(_ context.Context, d screen.Directive) error {
	f.applied = append(f.applied, d)
	return nil
}

type fakeProcess struct {
	exitCh     chan int
	terminated bool
	killed     bool
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{exitCh: make(chan int, 1)}
}

func (p *fakeProcess) Wait() (int, error) { return <-p.exitCh, nil }

func (p *fakeProcess) Terminate() error {
	p.terminated = true
	p.exitCh <- 143

	return nil
}

func (p *fakeProcess) Kill() error {
	p.killed = true
	p.exitCh <- 137

	return nil
}

type fakeRunner struct {
	proc     *fakeProcess
	lastInv  launch.Invocation
	startErr error
}

func (r *fakeRunner) Start(inv launch.Invocation) (Process, error) {
	r.lastInv = inv
	if r.startErr != nil {
		return nil, r.startErr
	}

	return r.proc, nil
}

type journalEntry struct {
	token     string
	profile   string
	exitCode  int
	cancelled bool
	finished  bool
}

type fakeJournal struct {
	entries map[string]*journalEntry
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{entries: make(map[string]*journalEntry)}
}

func (j *fakeJournal) Begin(token, profileName string, _ []string, _ time.Time) error {
	j.entries[token] = &journalEntry{token: token, profile: profileName}
	return nil
}

func (j *fakeJournal) Finish(token string, _ time.Time, exitCode int, cancelled bool) error {
	e := j.entries[token]
	e.exitCode = exitCode
	e.cancelled = cancelled
	e.finished = true

	return nil
}

func strPtr(s string) *string { return &s }

func testProfile() *profile.Profile {
	monitor := "DP-1"

	return &profile.Profile{
		Name:       "quake",
		GPUProfile: profile.GPUProfileSettings{Name: strPtr("performance")},
		Screen: profile.ScreenSettings{
			Monitor:       &monitor,
			DisableOthers: true,
		},
	}
}

func testDeps() (*fakeSwitcher, *fakeAdapter, *fakeRunner, *fakeJournal, Config) {
	gpu := &fakeSwitcher{available: true, active: "Default"}
	adapter := &fakeAdapter{
		compositor: screen.Hyprland,
		monitors: []screen.Monitor{
			{Name: "DP-1", Width: 2560, Height: 1440, RefreshRate: 144, Scale: 1, Active: true, Focused: true},
			{Name: "HDMI-A-1", Width: 1920, Height: 1080, RefreshRate: 60, Scale: 1, Active: true},
		},
	}
	runner := &fakeRunner{proc: newFakeProcess()}
	journal := newFakeJournal()
	cfg := Config{
		GPU:     gpu,
		Screen:  adapter,
		Runner:  runner,
		Journal: journal,
		Ambient: []string{"HOME=/home/u"},
	}

	return gpu, adapter, runner, journal, cfg
}

func TestFullSessionRestoresEverything(t *testing.T) {
	gpu, adapter, runner, journal, cfg := testDeps()
	sup := NewSupervisor(cfg)

	token, err := sup.Begin(context.Background(), testProfile(), []string{"/usr/bin/quake"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, PreLaunch, sup.State())

	// Pre-launch applied the GPU profile and disabled the second output.
	assert.Equal(t, []string{"performance"}, gpu.switches)
	require.Len(t, adapter.applied, 1)
	assert.Equal(t, screen.Disable, adapter.applied[0].Action)

	runner.proc.exitCh <- 0

	res, err := sup.Run(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.Cancelled)
	assert.Equal(t, Idle, sup.State())

	// Restoration switched the GPU profile back and re-enabled the output.
	assert.Equal(t, "Default", gpu.active)
	last := adapter.applied[len(adapter.applied)-1]
	assert.Equal(t, screen.Configure, last.Action)
	assert.Equal(t, "HDMI-A-1", last.Monitor)

	entry := journal.entries[token]
	require.NotNil(t, entry)
	assert.True(t, entry.finished)
	assert.Equal(t, 0, entry.exitCode)
	assert.Equal(t, "quake", entry.profile)
}

func TestSecondBeginRejected(t *testing.T) {
	_, _, _, _, cfg := testDeps()
	sup := NewSupervisor(cfg)

	_, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err)

	_, err = sup.Begin(context.Background(), testProfile(), []string{"other"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrSessionActive, errors.CodeOf(err))
}

func TestRunRejectsUnknownToken(t *testing.T) {
	_, _, _, _, cfg := testDeps()
	sup := NewSupervisor(cfg)

	_, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err)

	_, err = sup.Run(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidToken, errors.CodeOf(err))
}

func TestSpawnFailureStillRestores(t *testing.T) {
	gpu, _, runner, journal, cfg := testDeps()
	runner.startErr = errors.New().New(errors.ErrChildProcess)
	sup := NewSupervisor(cfg)

	token, err := sup.Begin(context.Background(), testProfile(), []string{"missing"})
	require.NoError(t, err)

	_, err = sup.Run(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, errors.ErrChildProcess, errors.CodeOf(err))

	assert.Equal(t, Idle, sup.State())
	assert.Equal(t, "Default", gpu.active, "GPU profile restored after spawn failure")
	assert.True(t, journal.entries[token].finished)
}

func TestCancelBeforeSpawnSkipsRunning(t *testing.T) {
	gpu, adapter, _, journal, cfg := testDeps()
	sup := NewSupervisor(cfg)

	token, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err)

	require.NoError(t, sup.Cancel(context.Background(), token))

	assert.Equal(t, Idle, sup.State())
	assert.Equal(t, "Default", gpu.active, "partial snapshot restored")
	assert.Equal(t, screen.Configure, adapter.applied[len(adapter.applied)-1].Action)
	assert.True(t, journal.entries[token].cancelled)

	// The token died with the session.
	_, err = sup.Run(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidToken, errors.CodeOf(err))
}

func TestCancelWhileRunningTerminatesChild(t *testing.T) {
	_, _, runner, journal, cfg := testDeps()
	sup := NewSupervisor(cfg)

	token, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() {
		res, runErr := sup.Run(context.Background(), token)
		assert.NoError(t, runErr)
		done <- res
	}()

	// Wait for the child to be running before cancelling.
	require.Eventually(t, func() bool {
		return sup.State() == Running
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sup.Cancel(context.Background(), token))

	res := <-done
	assert.True(t, runner.proc.terminated)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 143, res.ExitCode)
	assert.Equal(t, Idle, sup.State())
	assert.True(t, journal.entries[token].cancelled)
}

func TestKillIsForced(t *testing.T) {
	_, _, runner, _, cfg := testDeps()
	sup := NewSupervisor(cfg)

	token, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() {
		res, runErr := sup.Run(context.Background(), token)
		assert.NoError(t, runErr)
		done <- res
	}()

	require.Eventually(t, func() bool {
		return sup.State() == Running
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sup.Kill(token))

	res := <-done
	assert.True(t, runner.proc.killed)
	assert.False(t, runner.proc.terminated)
	assert.Equal(t, 137, res.ExitCode)
	assert.Equal(t, Idle, sup.State())
}

func TestRestoreRetriesOnce(t *testing.T) {
	gpu, _, runner, _, cfg := testDeps()
	sup := NewSupervisor(cfg)

	token, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err)

	// First restore attempt fails, the retry succeeds.
	gpu.failures = 1
	runner.proc.exitCh <- 0

	_, err = sup.Run(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Default", gpu.active)
}

func TestRestoreHonorsOptOut(t *testing.T) {
	gpu, adapter, runner, _, cfg := testDeps()
	sup := NewSupervisor(cfg)

	p := testProfile()
	keep := false
	p.GPUProfile.RestoreAfterExit = &keep
	p.Screen.RestoreAfterExit = &keep

	token, err := sup.Begin(context.Background(), p, []string{"game"})
	require.NoError(t, err)
	appliedBefore := len(adapter.applied)

	runner.proc.exitCh <- 0

	_, err = sup.Run(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "performance", gpu.active, "opt-out leaves the GPU profile in place")
	assert.Len(t, adapter.applied, appliedBefore, "opt-out leaves the monitor layout in place")
	assert.Equal(t, Idle, sup.State())
}

func TestSessionReusableAfterIdle(t *testing.T) {
	_, _, runner, _, cfg := testDeps()
	sup := NewSupervisor(cfg)

	token, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err)

	runner.proc.exitCh <- 0
	_, err = sup.Run(context.Background(), token)
	require.NoError(t, err)

	runner.proc = newFakeProcess()

	token2, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestMissingExternalToolDegrades(t *testing.T) {
	gpu, _, runner, _, cfg := testDeps()
	gpu.available = false
	sup := NewSupervisor(cfg)

	token, err := sup.Begin(context.Background(), testProfile(), []string{"game"})
	require.NoError(t, err, "missing tool is not fatal")
	assert.Empty(t, gpu.switches)

	runner.proc.exitCh <- 0
	res, err := sup.Run(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

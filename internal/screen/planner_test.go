package screen_test

import (
	"testing"

	"codeberg.org/mutker/gamectl/internal/profile"
	"codeberg.org/mutker/gamectl/internal/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func testSnapshot() []screen.Monitor {
	return []screen.Monitor{
		{ID: 0, Name: "DP-1", Width: 2560, Height: 1440, RefreshRate: 144, X: 0, Y: 0, Scale: 1, Active: true, Focused: true},
		{ID: 1, Name: "HDMI-A-1", Width: 1920, Height: 1080, RefreshRate: 60, X: 2560, Y: 0, Scale: 1, Active: true},
		{ID: 2, Name: "DP-2", Width: 1920, Height: 1080, RefreshRate: 60, Active: false},
	}
}

func TestResolveUnsupportedCompositorIsNoop(t *testing.T) {
	res := screen.Resolve(screen.Unsupported, testSnapshot(), screen.Plan{Target: "DP-1", DisableOthers: true})

	assert.True(t, res.Unsupported)
	assert.Empty(t, res.Directives)
}

func TestResolveEmptyPlanIsNoop(t *testing.T) {
	res := screen.Resolve(screen.Hyprland, testSnapshot(), screen.Plan{})

	assert.False(t, res.Unsupported)
	assert.Empty(t, res.Directives)
	assert.Empty(t, res.Restore)
}

func TestResolveMissingTargetFallsBackToPrimary(t *testing.T) {
	plan := screen.Plan{Target: "DP-9", Width: intPtr(1920), Height: intPtr(1080)}

	res := screen.Resolve(screen.Hyprland, testSnapshot(), plan)

	require.NotNil(t, res.Target)
	assert.Equal(t, "DP-1", res.Target.Name, "falls back to the focused monitor without error")
	require.Len(t, res.Directives, 1)
	assert.Equal(t, 1920, res.Directives[0].Width)
}

func TestResolveInactiveTargetIgnored(t *testing.T) {
	plan := screen.Plan{Target: "DP-2", RefreshRate: floatPtr(120)}

	res := screen.Resolve(screen.Sway, testSnapshot(), plan)

	require.NotNil(t, res.Target)
	assert.Equal(t, "DP-1", res.Target.Name, "a disabled output is not a live target")
}

func floatPtr(f float64) *float64 { return &f }

func TestResolveDisableOthers(t *testing.T) {
	plan := screen.Plan{Target: "DP-1", DisableOthers: true}

	res := screen.Resolve(screen.Hyprland, testSnapshot(), plan)

	require.Len(t, res.Directives, 1)
	assert.Equal(t, "HDMI-A-1", res.Directives[0].Monitor)
	assert.Equal(t, screen.Disable, res.Directives[0].Action)

	// Restore reapplies the pre-change config of the disabled output.
	require.Len(t, res.Restore, 1)
	assert.Equal(t, "HDMI-A-1", res.Restore[0].Monitor)
	assert.Equal(t, screen.Configure, res.Restore[0].Action)
	assert.Equal(t, 1920, res.Restore[0].Width)
	assert.Equal(t, 2560, res.Restore[0].X)
}

func TestResolveConfigureRecordsRestore(t *testing.T) {
	plan := screen.Plan{Target: "HDMI-A-1", RefreshRate: floatPtr(50)}

	res := screen.Resolve(screen.Hyprland, testSnapshot(), plan)

	require.Len(t, res.Directives, 1)
	assert.InDelta(t, 50, res.Directives[0].RefreshRate, 0.01)
	require.Len(t, res.Restore, 1)
	assert.InDelta(t, 60, res.Restore[0].RefreshRate, 0.01, "restore carries the original refresh rate")
}

func TestResolvePositionsAreGridSnapped(t *testing.T) {
	plan := screen.Plan{Target: "DP-1", PositionX: intPtr(2549), PositionY: intPtr(51)}

	res := screen.Resolve(screen.Hyprland, testSnapshot(), plan)

	require.Len(t, res.Directives, 1)
	assert.Equal(t, 2500, res.Directives[0].X)
	assert.Equal(t, 100, res.Directives[0].Y)
}

func TestResolveOverlapPassesThrough(t *testing.T) {
	// Both outputs at 0x0: a user-specified overlap is kept verbatim.
	plan := screen.Plan{Target: "HDMI-A-1", PositionX: intPtr(0), PositionY: intPtr(0)}

	res := screen.Resolve(screen.Hyprland, testSnapshot(), plan)

	require.Len(t, res.Directives, 1)
	assert.Equal(t, 0, res.Directives[0].X)
	assert.Equal(t, 0, res.Directives[0].Y)
}

func TestSnapToGrid(t *testing.T) {
	assert.Equal(t, 0, screen.SnapToGrid(49))
	assert.Equal(t, 100, screen.SnapToGrid(50))
	assert.Equal(t, 100, screen.SnapToGrid(149))
	assert.Equal(t, -100, screen.SnapToGrid(-60))
	assert.Equal(t, 0, screen.SnapToGrid(-49))
	assert.Equal(t, 2500, screen.SnapToGrid(2549))
}

func TestPlanFromSettings(t *testing.T) {
	monitor := "DP-1"
	restore := false
	s := profile.ScreenSettings{
		Monitor:          &monitor,
		Width:            intPtr(1920),
		Height:           intPtr(1080),
		DisableOthers:    true,
		RestoreAfterExit: &restore,
	}

	plan := screen.PlanFromSettings(s)

	assert.Equal(t, "DP-1", plan.Target)
	assert.True(t, plan.DisableOthers)
	assert.False(t, plan.RestoreAfterExit, "explicit opt-out carries through")
	assert.False(t, plan.IsEmpty())

	assert.True(t, screen.PlanFromSettings(profile.ScreenSettings{}).IsEmpty())
}

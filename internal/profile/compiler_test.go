package profile_test

import (
	"testing"

	"codeberg.org/mutker/gamectl/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestCompileEmptyProfileEmitsNothing(t *testing.T) {
	c := profile.Compile(&profile.Profile{Name: "empty"})

	assert.Empty(t, c.Env, "defaults must not emit variables")
	assert.Empty(t, c.Wrappers)
	assert.Empty(t, c.Warnings)
}

func TestCompileIsDeterministic(t *testing.T) {
	p := &profile.Profile{
		Name: "witcher3",
		Upscaling: profile.UpscalingSettings{
			Upgrade:  true,
			SRPreset: strPtr("K"),
		},
		VKD3D: profile.VKD3DSettings{DXR12: true, SingleQueue: true},
		Wrappers: profile.WrapperSettings{
			Gamemode: true,
			MangoHud: profile.MangoHudSettings{Enabled: true},
			Gamescope: profile.GamescopeSettings{
				Enabled: true,
				Width:   intPtr(2560),
				Height:  intPtr(1440),
			},
		},
		CustomEnv: map[string]string{"WINEDEBUG": "-all"},
	}

	first := profile.Compile(p)
	second := profile.Compile(p)

	assert.Equal(t, first.Env, second.Env)
	assert.Equal(t, first.Wrappers, second.Wrappers)
	assert.Equal(t, first.Env.Sorted(), second.Env.Sorted(), "rendered form must be byte-identical")
}

func TestCompileWrapperOrderIsFixed(t *testing.T) {
	p := &profile.Profile{
		Name: "ordered",
		Wrappers: profile.WrapperSettings{
			DLSSSwapper:     true,
			Gamescope:       profile.GamescopeSettings{Enabled: true},
			MangoHud:        profile.MangoHudSettings{Enabled: true},
			Gamemode:        true,
			GamePerformance: true,
		},
	}

	c := profile.Compile(p)

	assert.Equal(t,
		[]string{"game-performance", "gamemoderun", "mangohud", "gamescope", "dlss-swapper"},
		c.Wrappers.Names(),
		"chain order is fixed regardless of field order")
}

func TestCompileRaytracingDisableWins(t *testing.T) {
	p := &profile.Profile{
		Name:  "rt",
		VKD3D: profile.VKD3DSettings{NoDXR: true, ForceDXR: true},
	}

	c := profile.Compile(p)

	assert.Equal(t, "nodxr", c.Env["VKD3D_CONFIG"])
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, "vkd3d.force_dxr", c.Warnings[0].Field)
}

func TestCompileDSRSupersedesInternalResolution(t *testing.T) {
	p := &profile.Profile{
		Name: "dsr",
		Wrappers: profile.WrapperSettings{
			Gamescope: profile.GamescopeSettings{
				Enabled:        true,
				Width:          intPtr(1920),
				Height:         intPtr(1080),
				InternalWidth:  intPtr(1280),
				InternalHeight: intPtr(720),
				DSREnabled:     true,
				DSRWidth:       intPtr(3840),
				DSRHeight:      intPtr(2160),
			},
		},
	}

	c := profile.Compile(p)

	require.Len(t, c.Wrappers, 1)
	flat := c.Wrappers.Flatten()
	assert.Contains(t, flat, "3840")
	assert.Contains(t, flat, "2160")
	assert.NotContains(t, flat, "1280", "plain internal width must be ignored, not combined")
	assert.NotContains(t, flat, "720")
	require.NotEmpty(t, c.Warnings)
}

func TestCompileDSRWithoutPairFallsBack(t *testing.T) {
	p := &profile.Profile{
		Name: "dsr-partial",
		Wrappers: profile.WrapperSettings{
			Gamescope: profile.GamescopeSettings{
				Enabled:        true,
				DSREnabled:     true,
				DSRWidth:       intPtr(3840),
				InternalWidth:  intPtr(1280),
				InternalHeight: intPtr(720),
			},
		},
	}

	c := profile.Compile(p)

	flat := c.Wrappers.Flatten()
	assert.Contains(t, flat, "1280")
	assert.NotContains(t, flat, "3840")
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, "gamescope.dsr_width", c.Warnings[0].Field)
}

func TestCompileGamescopeFragmentTerminated(t *testing.T) {
	p := &profile.Profile{
		Name: "gs",
		Wrappers: profile.WrapperSettings{
			Gamescope: profile.GamescopeSettings{
				Enabled:    true,
				VRR:        true,
				Borderless: true,
				Fullscreen: boolPtr(false),
				FrameLimit: intPtr(120),
			},
		},
	}

	c := profile.Compile(p)

	require.Len(t, c.Wrappers, 1)
	f := c.Wrappers[0]
	assert.Equal(t, "gamescope", f[0])
	assert.Equal(t, "--", f[len(f)-1], "gamescope fragment must end with the argv separator")
	assert.Contains(t, []string(f), "--adaptive-sync")
	assert.NotContains(t, []string(f), "-f", "explicit fullscreen opt-out")
}

func TestCompileMangoHudLimitDefaultSubstitution(t *testing.T) {
	p := &profile.Profile{
		Name: "hud",
		Wrappers: profile.WrapperSettings{
			MangoHud: profile.MangoHudSettings{Enabled: true, FPSLimitEnabled: true},
		},
	}

	c := profile.Compile(p)

	assert.Equal(t, "fps_limit=60", c.Env["MANGOHUD_CONFIG"])
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, "mangohud.fps_limit", c.Warnings[0].Field)
}

func TestCompileFrameLimiterOverridesVKD3DFrameRate(t *testing.T) {
	p := &profile.Profile{
		Name:  "cap",
		VKD3D: profile.VKD3DSettings{FrameRate: 144},
		Wrappers: profile.WrapperSettings{
			FrameLimiter: profile.FrameLimiterSettings{
				Enabled:          true,
				TargetFPS:        intPtr(60),
				SwapchainLatency: intPtr(2),
			},
		},
	}

	c := profile.Compile(p)

	assert.Equal(t, "60", c.Env["VKD3D_FRAME_RATE"])
	assert.Equal(t, "60", c.Env["DXVK_FRAME_RATE"])
	assert.Equal(t, "2", c.Env["VKD3D_SWAPCHAIN_LATENCY_FRAMES"])
}

func TestCompileSyncModeMapping(t *testing.T) {
	for mode, want := range map[string]string{
		"esync":  "PROTON_NO_FSYNC",
		"fsync":  "PROTON_NO_ESYNC",
		"ntsync": "WINEFSYNC_FUTEX2",
	} {
		p := &profile.Profile{
			Name:   "sync",
			Compat: profile.CompatSettings{SyncMode: strPtr(mode)},
		}
		c := profile.Compile(p)
		assert.Equal(t, "1", c.Env[want], "mode %s", mode)
	}
}

func TestCompileUnknownSyncModeWarns(t *testing.T) {
	p := &profile.Profile{
		Name:   "sync",
		Compat: profile.CompatSettings{SyncMode: strPtr("wsync")},
	}

	c := profile.Compile(p)

	assert.NotContains(t, c.Env, "PROTON_NO_ESYNC")
	assert.NotContains(t, c.Env, "PROTON_NO_FSYNC")
	require.Len(t, c.Warnings, 1)
}

func TestCompileCustomEnvWinsLast(t *testing.T) {
	p := &profile.Profile{
		Name:      "custom",
		RenderAPI: profile.RenderAPISettings{HUD: strPtr("fps")},
		CustomEnv: map[string]string{"DXVK_HUD": "full"},
	}

	c := profile.Compile(p)

	assert.Equal(t, "full", c.Env["DXVK_HUD"])
}

func TestCompilePrimeOffload(t *testing.T) {
	p := &profile.Profile{
		Name:        "prime",
		GPUBehavior: profile.GPUBehaviorSettings{Prime: true},
	}

	c := profile.Compile(p)

	assert.Equal(t, "1", c.Env["__NV_PRIME_RENDER_OFFLOAD"])
	assert.Equal(t, "NVIDIA_only", c.Env["__VK_LAYER_NV_optimus"])
	assert.Equal(t, "nvidia", c.Env["__GLX_VENDOR_LIBRARY_NAME"])
}

package profile

import "sort"

// Profile is a named bundle of per-category launch settings. Optional
// scalar fields are pointers so "unset" stays distinct from a zero value;
// unset fields contribute nothing at compile time.
type Profile struct {
	Name            string  `toml:"name"`
	IsTemplate      bool    `toml:"is_template,omitempty"`
	ExecutableMatch *string `toml:"executable_match,omitempty"`
	StoreID         *string `toml:"store_id,omitempty"`

	Upscaling   UpscalingSettings   `toml:"upscaling,omitempty"`
	RenderAPI   RenderAPISettings   `toml:"renderapi,omitempty"`
	VKD3D       VKD3DSettings       `toml:"vkd3d,omitempty"`
	GPUBehavior GPUBehaviorSettings `toml:"gpubehavior,omitempty"`
	Compat      CompatSettings      `toml:"compat,omitempty"`
	Wrappers    WrapperSettings     `toml:"wrappers,omitempty"`
	GPUProfile  GPUProfileSettings  `toml:"gpuprofile,omitempty"`
	Screen      ScreenSettings      `toml:"screen,omitempty"`

	CustomEnv  map[string]string `toml:"custom_env,omitempty"`
	CustomArgs *string           `toml:"custom_args,omitempty"`
}

// UpscalingSettings drives the DLSS override surface exposed by Proton
// and dxvk-nvapi.
type UpscalingSettings struct {
	Upgrade      bool    `toml:"upgrade,omitempty"`
	Indicator    bool    `toml:"indicator,omitempty"`
	NGXUpdater   bool    `toml:"ngx_updater,omitempty"`
	SROverride   bool    `toml:"sr_override,omitempty"`
	RROverride   bool    `toml:"rr_override,omitempty"`
	FGOverride   bool    `toml:"fg_override,omitempty"`
	SRPreset     *string `toml:"sr_preset,omitempty"`
	RRPreset     *string `toml:"rr_preset,omitempty"`
	FGMultiFrame *int    `toml:"fg_multi_frame,omitempty"`
}

type RenderAPISettings struct {
	HUD          *string `toml:"hud,omitempty"`
	NVAPI        bool    `toml:"nvapi,omitempty"`
	AsyncCompile bool    `toml:"async_compile,omitempty"`
	ShaderCache  *bool   `toml:"shader_cache,omitempty"` // default true
}

type VKD3DSettings struct {
	NoDXR          bool `toml:"no_dxr,omitempty"`
	ForceDXR       bool `toml:"force_dxr,omitempty"`
	DXR12          bool `toml:"dxr12,omitempty"`
	ForceStaticCBV bool `toml:"force_static_cbv,omitempty"`
	SingleQueue    bool `toml:"single_queue,omitempty"`
	NoUploadHVV    bool `toml:"no_upload_hvv,omitempty"`
	FrameRate      int  `toml:"frame_rate,omitempty"`
}

type GPUBehaviorSettings struct {
	ThreadedOptimization *string `toml:"threaded_optimization,omitempty"` // on/off/auto
	ShaderCacheSize      *uint64 `toml:"shader_cache_size,omitempty"`
	SkipCleanup          bool    `toml:"skip_cleanup,omitempty"`
	VSync                *string `toml:"vsync,omitempty"` // on/off
	Prime                bool    `toml:"prime,omitempty"`
	SmoothMotion         bool    `toml:"smooth_motion,omitempty"`
}

type CompatSettings struct {
	Verb           *string `toml:"verb,omitempty"`
	SyncMode       *string `toml:"sync_mode,omitempty"` // esync/fsync/ntsync
	EnableWayland  bool    `toml:"enable_wayland,omitempty"`
	EnableHDR      bool    `toml:"enable_hdr,omitempty"`
	IntegerScaling bool    `toml:"integer_scaling,omitempty"`
}

type MangoHudSettings struct {
	Enabled         bool    `toml:"enabled,omitempty"`
	FPSLimitEnabled bool    `toml:"fps_limit_enabled,omitempty"`
	FPSLimit        *int    `toml:"fps_limit,omitempty"`
	FPSLimiterMode  *string `toml:"fps_limiter_mode,omitempty"`
}

type FrameLimiterSettings struct {
	Enabled          bool `toml:"enabled,omitempty"`
	TargetFPS        *int `toml:"target_fps,omitempty"`
	SwapchainLatency *int `toml:"swapchain_latency,omitempty"`
}

type GamescopeSettings struct {
	Enabled        bool    `toml:"enabled,omitempty"`
	Width          *int    `toml:"width,omitempty"`
	Height         *int    `toml:"height,omitempty"`
	InternalWidth  *int    `toml:"internal_width,omitempty"`
	InternalHeight *int    `toml:"internal_height,omitempty"`
	DSREnabled     bool    `toml:"dsr_enabled,omitempty"`
	DSRWidth       *int    `toml:"dsr_width,omitempty"`
	DSRHeight      *int    `toml:"dsr_height,omitempty"`
	UpscaleFilter  *string `toml:"upscale_filter,omitempty"`
	FSRSharpness   *int    `toml:"fsr_sharpness,omitempty"`
	Fullscreen     *bool   `toml:"fullscreen,omitempty"` // default true
	Borderless     bool    `toml:"borderless,omitempty"`
	VRR            bool    `toml:"vrr,omitempty"`
	FrameLimit     *int    `toml:"framelimit,omitempty"`
	MangoApp       bool    `toml:"mangoapp,omitempty"`
	HDR            bool    `toml:"hdr,omitempty"`
}

type WrapperSettings struct {
	MangoHud        MangoHudSettings     `toml:"mangohud,omitempty"`
	Gamemode        bool                 `toml:"gamemode,omitempty"`
	GamePerformance bool                 `toml:"game_performance,omitempty"`
	DLSSSwapper     bool                 `toml:"dlss_swapper,omitempty"`
	FrameLimiter    FrameLimiterSettings `toml:"frame_limiter,omitempty"`
	Gamescope       GamescopeSettings    `toml:"gamescope,omitempty"`
}

type GPUProfileSettings struct {
	Name             *string `toml:"name,omitempty"`
	RestoreAfterExit *bool   `toml:"restore_after_exit,omitempty"` // default true
}

type ScreenSettings struct {
	Monitor          *string  `toml:"monitor,omitempty"`
	Width            *int     `toml:"width,omitempty"`
	Height           *int     `toml:"height,omitempty"`
	RefreshRate      *float64 `toml:"refresh_rate,omitempty"`
	PositionX        *int     `toml:"position_x,omitempty"`
	PositionY        *int     `toml:"position_y,omitempty"`
	Scale            *float64 `toml:"scale,omitempty"`
	DisableOthers    bool     `toml:"disable_others,omitempty"`
	RestoreAfterExit *bool    `toml:"restore_after_exit,omitempty"` // default true
}

// RestoreGPUProfile reports whether the previous GPU power profile should
// be reapplied after the session ends. False is an explicit opt-out.
func (p *Profile) RestoreGPUProfile() bool {
	return boolOr(p.GPUProfile.RestoreAfterExit, true)
}

// RestoreMonitors reports whether the pre-launch monitor layout should be
// reapplied after the session ends.
func (p *Profile) RestoreMonitors() bool {
	return boolOr(p.Screen.RestoreAfterExit, true)
}

// EnvironmentSet maps variable names to values, keys unique.
type EnvironmentSet map[string]string

// Sorted returns KEY=VALUE pairs in lexical key order, so rendering the
// same set twice is byte-identical.
func (e EnvironmentSet) Sorted() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+e[k])
	}

	return pairs
}

// Fragment is a single command prefix, e.g. ["gamescope", "-f", "--"].
type Fragment []string

// WrapperChain is an ordered sequence of command prefixes, outermost first.
type WrapperChain []Fragment

// Flatten concatenates all fragments into one argv prefix.
func (c WrapperChain) Flatten() []string {
	var out []string
	for _, f := range c {
		out = append(out, f...)
	}

	return out
}

// Names returns the leading executable of each fragment, outermost first.
func (c WrapperChain) Names() []string {
	names := make([]string, 0, len(c))
	for _, f := range c {
		if len(f) > 0 {
			names = append(names, f[0])
		}
	}

	return names
}

// Warning records a degraded field that compiled with a substituted default
type Warning struct {
	Field   string
	Message string
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}

	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}

	return *v
}

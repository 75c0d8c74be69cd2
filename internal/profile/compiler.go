package profile

import (
	"strconv"
	"strings"
)

// Compiled is the single compiled representation of a Profile. Both
// copy/paste command flavors and the supervisor consume this one value.
type Compiled struct {
	Env      EnvironmentSet
	Wrappers WrapperChain
	Warnings []Warning
}

const (
	defaultFPSLimit      = 60
	minFrameGenMultiples = 2
	maxFrameGenMultiples = 4
)

// Compile translates a Profile into environment variables and an ordered
// wrapper chain. It is pure: the same Profile always yields the same
// output, independent of the order fields were set. Fields left at their
// defaults emit nothing, so the ambient and in-game defaults stay in
// charge. Malformed combinations substitute a documented default and are
// reported as warnings, never as errors; the output feeds a command line,
// not a validated API boundary.
func Compile(p *Profile) Compiled {
	c := Compiled{Env: EnvironmentSet{}}

	c.compileUpscaling(&p.Upscaling)
	c.compileRenderAPI(&p.RenderAPI)
	c.compileVKD3D(&p.VKD3D)
	c.compileGPUBehavior(&p.GPUBehavior)
	c.compileCompat(&p.Compat)
	c.compileFrameLimiter(&p.Wrappers.FrameLimiter)
	c.compileMangoHudEnv(&p.Wrappers.MangoHud)

	// Custom variables win over every category contribution.
	for k, v := range p.CustomEnv {
		c.Env[k] = v
	}

	c.Wrappers = compileWrappers(&p.Wrappers, c.warn)

	return c
}

func (c *Compiled) warn(field, message string) {
	c.Warnings = append(c.Warnings, Warning{Field: field, Message: message})
}

func (c *Compiled) compileUpscaling(s *UpscalingSettings) {
	if s.Upgrade {
		c.Env["PROTON_DLSS_UPGRADE"] = "1"
	}
	if s.Indicator {
		c.Env["PROTON_DLSS_INDICATOR"] = "1"
	}
	if s.NGXUpdater {
		c.Env["PROTON_ENABLE_NGX_UPDATER"] = "1"
	}
	if s.SROverride {
		c.Env["DXVK_NVAPI_DRS_NGX_DLSS_SR_OVERRIDE"] = "1"
	}
	if s.RROverride {
		c.Env["DXVK_NVAPI_DRS_NGX_DLSS_RR_OVERRIDE"] = "1"
	}
	if s.FGOverride {
		c.Env["DXVK_NVAPI_DRS_NGX_DLSS_FG_OVERRIDE"] = "1"
	}
	if s.SRPreset != nil {
		c.Env["DXVK_NVAPI_DRS_NGX_DLSS_SR_PRESET"] = *s.SRPreset
	}
	if s.RRPreset != nil {
		c.Env["DXVK_NVAPI_DRS_NGX_DLSS_RR_PRESET"] = *s.RRPreset
	}
	if s.FGMultiFrame != nil {
		count := *s.FGMultiFrame
		if count < minFrameGenMultiples || count > maxFrameGenMultiples {
			clamped := clamp(count, minFrameGenMultiples, maxFrameGenMultiples)
			c.warn("upscaling.fg_multi_frame",
				"frame generation multiple "+strconv.Itoa(count)+" out of range, clamped to "+strconv.Itoa(clamped))
			count = clamped
		}
		c.Env["DXVK_NVAPI_DRS_NGX_DLSSG_MULTI_FRAME_COUNT"] = strconv.Itoa(count)
	}
}

func (c *Compiled) compileRenderAPI(s *RenderAPISettings) {
	if s.HUD != nil {
		c.Env["DXVK_HUD"] = *s.HUD
	}
	if s.NVAPI {
		c.Env["DXVK_ENABLE_NVAPI"] = "1"
	}
	if s.AsyncCompile {
		c.Env["DXVK_ASYNC"] = "1"
	}
	// Shader cache defaults to on; only the explicit opt-out emits.
	if !boolOr(s.ShaderCache, true) {
		c.Env["DXVK_SHADER_CACHE"] = "0"
	}
}

func (c *Compiled) compileVKD3D(s *VKD3DSettings) {
	var tokens []string

	// Disabling raytracing always wins over forcing it on.
	switch {
	case s.NoDXR:
		tokens = append(tokens, "nodxr")
		if s.ForceDXR {
			c.warn("vkd3d.force_dxr", "no_dxr takes precedence, force_dxr ignored")
		}
	case s.ForceDXR:
		tokens = append(tokens, "dxr")
	}
	if s.DXR12 {
		tokens = append(tokens, "dxr12")
	}
	if s.ForceStaticCBV {
		tokens = append(tokens, "force_static_cbv")
	}
	if s.SingleQueue {
		tokens = append(tokens, "single_queue")
	}
	if s.NoUploadHVV {
		tokens = append(tokens, "no_upload_hvv")
	}

	if len(tokens) > 0 {
		c.Env["VKD3D_CONFIG"] = strings.Join(tokens, ",")
	}
	if s.FrameRate > 0 {
		c.Env["VKD3D_FRAME_RATE"] = strconv.Itoa(s.FrameRate)
	}
}

func (c *Compiled) compileGPUBehavior(s *GPUBehaviorSettings) {
	if s.ThreadedOptimization != nil {
		val := "1"
		switch *s.ThreadedOptimization {
		case "on", "auto":
		case "off":
			val = "0"
		default:
			c.warn("gpubehavior.threaded_optimization",
				"unknown mode "+*s.ThreadedOptimization+", defaulting to on")
		}
		c.Env["__GL_THREADED_OPTIMIZATIONS"] = val
	}
	if s.ShaderCacheSize != nil {
		c.Env["__GL_SHADER_DISK_CACHE_SIZE"] = strconv.FormatUint(*s.ShaderCacheSize, 10)
	}
	if s.SkipCleanup {
		c.Env["__GL_SHADER_DISK_CACHE_SKIP_CLEANUP"] = "1"
	}
	if s.VSync != nil {
		if *s.VSync == "on" {
			c.Env["__GL_SYNC_TO_VBLANK"] = "1"
		} else {
			c.Env["__GL_SYNC_TO_VBLANK"] = "0"
		}
	}
	if s.Prime {
		c.Env["__NV_PRIME_RENDER_OFFLOAD"] = "1"
		c.Env["__VK_LAYER_NV_optimus"] = "NVIDIA_only"
		c.Env["__GLX_VENDOR_LIBRARY_NAME"] = "nvidia"
	}
	if s.SmoothMotion {
		c.Env["NVPRESENT_ENABLE_SMOOTH_MOTION"] = "1"
	}
}

func (c *Compiled) compileCompat(s *CompatSettings) {
	if s.Verb != nil {
		c.Env["PROTON_VERB"] = *s.Verb
	}
	if s.SyncMode != nil {
		switch *s.SyncMode {
		case "esync":
			c.Env["PROTON_NO_FSYNC"] = "1"
		case "fsync":
			c.Env["PROTON_NO_ESYNC"] = "1"
		case "ntsync":
			c.Env["WINEFSYNC_FUTEX2"] = "1"
		default:
			c.warn("compat.sync_mode", "unknown sync mode "+*s.SyncMode+", leaving defaults")
		}
	}
	if s.EnableWayland {
		c.Env["PROTON_ENABLE_WAYLAND"] = "1"
	}
	if s.EnableHDR {
		c.Env["PROTON_ENABLE_HDR"] = "1"
	}
	if s.IntegerScaling {
		c.Env["WINE_FULLSCREEN_INTEGER_SCALING"] = "1"
	}
}

func (c *Compiled) compileFrameLimiter(s *FrameLimiterSettings) {
	if !s.Enabled {
		return
	}

	if s.TargetFPS != nil {
		fps := strconv.Itoa(*s.TargetFPS)
		c.Env["DXVK_FRAME_RATE"] = fps
		// Overrides a plain vkd3d frame_rate; the limiter owns the cap.
		c.Env["VKD3D_FRAME_RATE"] = fps
	} else {
		c.warn("frame_limiter.target_fps", "frame limiter enabled without a target, no cap applied")
	}
	if s.SwapchainLatency != nil {
		c.Env["VKD3D_SWAPCHAIN_LATENCY_FRAMES"] = strconv.Itoa(*s.SwapchainLatency)
	}
}

func (c *Compiled) compileMangoHudEnv(s *MangoHudSettings) {
	if !s.Enabled || !s.FPSLimitEnabled {
		return
	}

	limit := intOr(s.FPSLimit, defaultFPSLimit)
	if s.FPSLimit == nil {
		c.warn("mangohud.fps_limit", "fps limit enabled without a value, defaulting to 60")
	}

	cfg := "fps_limit=" + strconv.Itoa(limit)
	if s.FPSLimiterMode != nil {
		switch *s.FPSLimiterMode {
		case "early", "late":
			cfg += ",fps_limit_method=" + *s.FPSLimiterMode
		default:
			c.warn("mangohud.fps_limiter_mode", "unknown limiter mode "+*s.FPSLimiterMode+", ignored")
		}
	}
	c.Env["MANGOHUD_CONFIG"] = cfg
}

// compileWrappers builds the chain in its fixed nesting order, outermost
// first: the scheduler wrapper and gamemode re-exec everything after them,
// mangohud must wrap the surface gamescope creates, gamescope must be the
// innermost graphical wrapper because the game attaches to its nested
// compositor, and the injector has to sit adjacent to the real command.
func compileWrappers(s *WrapperSettings, warn func(field, message string)) WrapperChain {
	var chain WrapperChain

	if s.GamePerformance {
		chain = append(chain, Fragment{"game-performance"})
	}
	if s.Gamemode {
		chain = append(chain, Fragment{"gamemoderun"})
	}
	if s.MangoHud.Enabled {
		chain = append(chain, Fragment{"mangohud"})
	}
	if s.Gamescope.Enabled {
		chain = append(chain, gamescopeFragment(&s.Gamescope, warn))
	}
	if s.DLSSSwapper {
		chain = append(chain, Fragment{"dlss-swapper"})
	}

	return chain
}

func gamescopeFragment(s *GamescopeSettings, warn func(field, message string)) Fragment {
	f := Fragment{"gamescope"}

	if s.Width != nil {
		f = append(f, "-W", strconv.Itoa(*s.Width))
	}
	if s.Height != nil {
		f = append(f, "-H", strconv.Itoa(*s.Height))
	}

	// A supersampled (DSR) resolution pair supersedes the plain internal
	// pair; the two are never combined.
	internalW, internalH := s.InternalWidth, s.InternalHeight
	if s.DSREnabled {
		if s.DSRWidth != nil && s.DSRHeight != nil {
			if internalW != nil || internalH != nil {
				warn("gamescope.internal_width", "DSR resolution set, internal resolution ignored")
			}
			internalW, internalH = s.DSRWidth, s.DSRHeight
		} else {
			warn("gamescope.dsr_width", "DSR enabled without a full resolution pair, using internal resolution")
		}
	}
	if internalW != nil {
		f = append(f, "-w", strconv.Itoa(*internalW))
	}
	if internalH != nil {
		f = append(f, "-h", strconv.Itoa(*internalH))
	}

	if s.UpscaleFilter != nil {
		f = append(f, "-F", *s.UpscaleFilter)
	}
	if s.FSRSharpness != nil {
		f = append(f, "--fsr-sharpness", strconv.Itoa(*s.FSRSharpness))
	}
	if boolOr(s.Fullscreen, true) {
		f = append(f, "-f")
	}
	if s.Borderless {
		f = append(f, "-b")
	}
	if s.VRR {
		f = append(f, "--adaptive-sync")
	}
	if s.FrameLimit != nil && *s.FrameLimit > 0 {
		f = append(f, "-r", strconv.Itoa(*s.FrameLimit))
	}
	if s.MangoApp {
		f = append(f, "--mangoapp")
	}
	if s.HDR {
		f = append(f, "--hdr-enabled")
	}

	return append(f, "--")
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}

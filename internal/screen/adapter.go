package screen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/logger"
)

// Adapter executes layout directives against the running compositor.
// Directives are atomic and idempotent: applying one twice leaves the
// same layout as applying it once.
type Adapter interface {
	Detect() Compositor
	ListMonitors(ctx context.Context) ([]Monitor, error)
	Apply(ctx context.Context, d Directive) error
}

type cliAdapter struct {
	timeout time.Duration
}

// NewAdapter returns an Adapter driving hyprctl or swaymsg, every call
// bounded by the given timeout.
func NewAdapter(timeout time.Duration) Adapter {
	return &cliAdapter{timeout: timeout}
}

func (a *cliAdapter) Detect() Compositor {
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return Hyprland
	}
	if os.Getenv("SWAYSOCK") != "" {
		return Sway
	}

	return Unsupported
}

func (a *cliAdapter) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errFactory.Wrap(errors.ErrTimeout, ctx.Err())
		}
		return nil, errFactory.WithData(errors.ErrExternalCallFailed, name+": "+err.Error())
	}

	return out, nil
}

type hyprlandMonitor struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	RefreshRate float64 `json:"refreshRate"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Scale       float64 `json:"scale"`
	Disabled    bool    `json:"disabled"`
	Focused     bool    `json:"focused"`
}

type swayOutput struct {
	Name    string  `json:"name"`
	Make    string  `json:"make"`
	Model   string  `json:"model"`
	Scale   float64 `json:"scale"`
	Active  bool    `json:"active"`
	Focused bool    `json:"focused"`
	Rect    struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"rect"`
	CurrentMode struct {
		Width   int `json:"width"`
		Height  int `json:"height"`
		Refresh int `json:"refresh"` // mHz
	} `json:"current_mode"`
}

func (a *cliAdapter) ListMonitors(ctx context.Context) ([]Monitor, error) {
	errFactory := errors.New()

	switch a.Detect() {
	case Hyprland:
		out, err := a.run(ctx, "hyprctl", "monitors", "all", "-j")
		if err != nil {
			return nil, err
		}

		var raw []hyprlandMonitor
		if err := json.Unmarshal(out, &raw); err != nil {
			return nil, errFactory.Wrap(errors.ErrExternalCallFailed, err)
		}

		monitors := make([]Monitor, 0, len(raw))
		for _, m := range raw {
			monitors = append(monitors, Monitor{
				ID:          m.ID,
				Name:        m.Name,
				Description: m.Description,
				Width:       m.Width,
				Height:      m.Height,
				RefreshRate: m.RefreshRate,
				X:           m.X,
				Y:           m.Y,
				Scale:       m.Scale,
				Active:      !m.Disabled,
				Focused:     m.Focused,
			})
		}

		return monitors, nil
	case Sway:
		out, err := a.run(ctx, "swaymsg", "-t", "get_outputs", "-r")
		if err != nil {
			return nil, err
		}

		var raw []swayOutput
		if err := json.Unmarshal(out, &raw); err != nil {
			return nil, errFactory.Wrap(errors.ErrExternalCallFailed, err)
		}

		monitors := make([]Monitor, 0, len(raw))
		for i, o := range raw {
			monitors = append(monitors, Monitor{
				ID:          i,
				Name:        o.Name,
				Description: o.Make + " " + o.Model,
				Width:       o.CurrentMode.Width,
				Height:      o.CurrentMode.Height,
				RefreshRate: float64(o.CurrentMode.Refresh) / 1000,
				X:           o.Rect.X,
				Y:           o.Rect.Y,
				Scale:       o.Scale,
				Active:      o.Active,
				Focused:     o.Focused,
			})
		}

		return monitors, nil
	default:
		return nil, errFactory.New(errors.ErrCompositorUnsupported)
	}
}

func (a *cliAdapter) Apply(ctx context.Context, d Directive) error {
	errFactory := errors.New()

	switch a.Detect() {
	case Hyprland:
		var spec string
		if d.Action == Disable {
			spec = fmt.Sprintf("%s,disable", d.Monitor)
		} else {
			spec = fmt.Sprintf("%s,%dx%d@%.0f,%dx%d,%.1f",
				d.Monitor, d.Width, d.Height, d.RefreshRate, d.X, d.Y, d.Scale)
		}
		logger.Debug().Str("directive", spec).Msg("Applying hyprctl monitor keyword")

		_, err := a.run(ctx, "hyprctl", "keyword", "monitor", spec)
		return err
	case Sway:
		var args []string
		if d.Action == Disable {
			args = []string{"output", d.Monitor, "disable"}
		} else {
			args = []string{
				"output", d.Monitor, "enable",
				"mode", fmt.Sprintf("%dx%d@%.3fHz", d.Width, d.Height, d.RefreshRate),
				"position", fmt.Sprintf("%d", d.X), fmt.Sprintf("%d", d.Y),
				"scale", fmt.Sprintf("%.1f", d.Scale),
			}
		}
		logger.Debug().Strs("args", args).Msg("Applying swaymsg output command")

		_, err := a.run(ctx, "swaymsg", args...)
		return err
	default:
		return errFactory.New(errors.ErrCompositorUnsupported)
	}
}

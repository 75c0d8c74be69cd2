package screen

import (
	"fmt"

	"codeberg.org/mutker/gamectl/internal/profile"
)

// Compositor identifies the display server in control of monitor layout
type Compositor int

const (
	Unsupported Compositor = iota
	Hyprland
	Sway
)

func (c Compositor) String() string {
	switch c {
	case Hyprland:
		return "Hyprland"
	case Sway:
		return "Sway"
	default:
		return "Unsupported"
	}
}

// Monitor is a read-only hardware snapshot of one output.
type Monitor struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	RefreshRate float64 `json:"refresh_rate"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Scale       float64 `json:"scale"`
	Active      bool    `json:"active"`
	Focused     bool    `json:"focused"`
}

// Mode renders the monitor's current mode as WxH@Hz.
func (m Monitor) Mode() string {
	return fmt.Sprintf("%dx%d@%.0f", m.Width, m.Height, m.RefreshRate)
}

// DirectiveAction is what a directive does to one output
type DirectiveAction int

const (
	// Configure enables the output and applies mode, position and scale
	Configure DirectiveAction = iota
	// Disable turns the output off
	Disable
)

// Directive is one atomic, idempotent compositor instruction.
type Directive struct {
	Monitor     string
	Action      DirectiveAction
	Width       int
	Height      int
	RefreshRate float64
	X           int
	Y           int
	Scale       float64
}

func configureDirective(m Monitor) Directive {
	return Directive{
		Monitor:     m.Name,
		Action:      Configure,
		Width:       m.Width,
		Height:      m.Height,
		RefreshRate: m.RefreshRate,
		X:           m.X,
		Y:           m.Y,
		Scale:       m.Scale,
	}
}

// Plan is the desired monitor layout for a session: a target output plus
// optional overrides of its descriptor fields.
type Plan struct {
	Target           string
	Width            *int
	Height           *int
	RefreshRate      *float64
	PositionX        *int
	PositionY        *int
	Scale            *float64
	DisableOthers    bool
	RestoreAfterExit bool
}

// PlanFromSettings maps a profile's screen category onto a Plan.
func PlanFromSettings(s profile.ScreenSettings) Plan {
	plan := Plan{
		Width:            s.Width,
		Height:           s.Height,
		RefreshRate:      s.RefreshRate,
		PositionX:        s.PositionX,
		PositionY:        s.PositionY,
		Scale:            s.Scale,
		DisableOthers:    s.DisableOthers,
		RestoreAfterExit: true,
	}
	if s.Monitor != nil {
		plan.Target = *s.Monitor
	}
	if s.RestoreAfterExit != nil {
		plan.RestoreAfterExit = *s.RestoreAfterExit
	}

	return plan
}

// IsEmpty reports whether the plan requests any layout change at all.
func (p Plan) IsEmpty() bool {
	return p.Target == "" && p.Width == nil && p.Height == nil &&
		p.RefreshRate == nil && p.PositionX == nil && p.PositionY == nil &&
		p.Scale == nil && !p.DisableOthers
}

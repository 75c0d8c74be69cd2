package screen

// GridUnit is the snap unit for interactive positioning. Positions are
// rounded to the nearest multiple so adjacent monitors line up stably.
// Overlapping layouts the user asked for pass through verbatim; the
// planner does not auto-resolve them.
const GridUnit = 100

// Resolution is the planner's output: the directives to apply before
// launch and the directives that restore the pre-change layout afterwards.
type Resolution struct {
	Unsupported bool
	Target      *Monitor
	Directives  []Directive
	Restore     []Directive
}

// Resolve reconciles a desired plan against the detected hardware. An
// unsupported compositor short-circuits to a no-op resolution; a target
// that names no live monitor falls back to the primary output rather
// than failing.
func Resolve(compositor Compositor, snapshot []Monitor, plan Plan) Resolution {
	if compositor == Unsupported {
		return Resolution{Unsupported: true}
	}
	if plan.IsEmpty() {
		return Resolution{}
	}

	target := findTarget(snapshot, plan.Target)
	if target == nil {
		// No active outputs at all; nothing to reconcile against.
		return Resolution{}
	}

	res := Resolution{Target: target}

	d := configureDirective(*target)
	changed := false
	if plan.Width != nil && plan.Height != nil {
		d.Width, d.Height = *plan.Width, *plan.Height
		changed = true
	}
	if plan.RefreshRate != nil {
		d.RefreshRate = *plan.RefreshRate
		changed = true
	}
	if plan.PositionX != nil {
		d.X = SnapToGrid(*plan.PositionX)
		changed = true
	}
	if plan.PositionY != nil {
		d.Y = SnapToGrid(*plan.PositionY)
		changed = true
	}
	if plan.Scale != nil {
		d.Scale = *plan.Scale
		changed = true
	}
	if changed {
		res.Directives = append(res.Directives, d)
		res.Restore = append(res.Restore, configureDirective(*target))
	}

	if plan.DisableOthers {
		for _, m := range snapshot {
			if !m.Active || m.Name == target.Name {
				continue
			}
			res.Directives = append(res.Directives, Directive{Monitor: m.Name, Action: Disable})
			res.Restore = append(res.Restore, configureDirective(m))
		}
	}

	return res
}

// SnapToGrid rounds a coordinate to the nearest grid unit.
func SnapToGrid(v int) int {
	half := GridUnit / 2
	if v >= 0 {
		return (v + half) / GridUnit * GridUnit
	}

	return -((-v + half) / GridUnit * GridUnit)
}

// findTarget picks the named monitor, else the focused one, else the
// first active one.
func findTarget(snapshot []Monitor, name string) *Monitor {
	if name != "" {
		for i := range snapshot {
			if snapshot[i].Name == name && snapshot[i].Active {
				return &snapshot[i]
			}
		}
	}
	for i := range snapshot {
		if snapshot[i].Focused && snapshot[i].Active {
			return &snapshot[i]
		}
	}
	for i := range snapshot {
		if snapshot[i].Active {
			return &snapshot[i]
		}
	}

	return nil
}

package action

import (
	"log/slog"
	"slices"

	"scene-engine/scene"
)

// Manager dispatches triggers to registered actions in registration order.
type Manager struct {
	// Cursor overrides the scene hover cursor over the owner.
	Cursor string

	actions []*Action
	logger  *slog.Logger
}

var _ scene.ActionManager = (*Manager)(nil)

// NewManager returns an empty manager; a nil logger uses slog.Default.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Register adds a and returns it for chaining.
func (m *Manager) Register(a *Action) *Action {
	m.actions = append(m.actions, a)
	m.logger.Debug("action registered", "trigger", a.trigger.String())
	return a
}

// Unregister removes a and reports whether it was registered.
func (m *Manager) Unregister(a *Action) bool {
	i := slices.Index(m.actions, a)
	if i < 0 {
		return false
	}
	m.actions = slices.Delete(m.actions, i, i+1)
	return true
}

func (m *Manager) Actions() []*Action { return m.actions }

// ProcessTrigger executes every action registered for trigger. Intersection
// actions are driven by the scene directly and never run from here.
func (m *Manager) ProcessTrigger(trigger scene.Trigger, evt scene.ActionEvent) {
	if trigger == scene.TriggerIntersectionEnter || trigger == scene.TriggerIntersectionExit {
		return
	}
	// actions may unregister themselves while running
	for _, a := range slices.Clone(m.actions) {
		if a.trigger != trigger || !a.matchesKey(evt) {
			continue
		}
		a.Execute(evt)
	}
}

func (m *Manager) HasSpecificTrigger(trigger scene.Trigger) bool {
	return m.HasSpecificTriggers(trigger)
}

func (m *Manager) HasSpecificTriggers(triggers ...scene.Trigger) bool {
	for _, a := range m.actions {
		if slices.Contains(triggers, a.trigger) {
			return true
		}
	}
	return false
}

func (m *Manager) HasPointerTriggers() bool {
	return slices.ContainsFunc(m.actions, func(a *Action) bool { return a.trigger.IsPointer() })
}

func (m *Manager) HasPickTriggers() bool {
	return slices.ContainsFunc(m.actions, func(a *Action) bool { return a.trigger.IsPick() })
}

func (m *Manager) IntersectionActions() []scene.IntersectionAction {
	var out []scene.IntersectionAction
	for _, a := range m.actions {
		if a.target != nil &&
			(a.trigger == scene.TriggerIntersectionEnter || a.trigger == scene.TriggerIntersectionExit) {
			out = append(out, a)
		}
	}
	return out
}

func (m *Manager) HoverCursor() string { return m.Cursor }

package action

import (
	"scene-engine/math"
	"scene-engine/scene"
)

// Command is an undoable change an action can apply to the scene.
type Command interface {
	Execute()
	Undo()
	Description() string
}

// History keeps bounded undo and redo stacks of executed commands.
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
}

func NewHistory(maxDepth int) *History {
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  maxDepth,
	}
}

// Do executes cmd and pushes it on the undo stack, dropping the redo stack.
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	h.redoStack = h.redoStack[:0]
}

func (h *History) Undo() bool {
	if len(h.undoStack) == 0 {
		return false
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	return true
}

func (h *History) Redo() bool {
	if len(h.redoStack) == 0 {
		return false
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	return true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// NewCommand returns an action that builds a command from the event and runs
// it through history (directly when history is nil).
func NewCommand(trigger scene.Trigger, history *History, build func(scene.ActionEvent) Command) *Action {
	return New(trigger, func(evt scene.ActionEvent) {
		cmd := build(evt)
		if cmd == nil {
			return
		}
		if history != nil {
			history.Do(cmd)
			return
		}
		cmd.Execute()
	})
}

// MoveCommand sets a mesh position.
type MoveCommand struct {
	Mesh   *scene.Mesh
	OldPos math.Vec3
	NewPos math.Vec3
}

func NewMoveCommand(m *scene.Mesh, newPos math.Vec3) *MoveCommand {
	return &MoveCommand{Mesh: m, OldPos: m.Transform.Position, NewPos: newPos}
}

func (c *MoveCommand) Execute()            { c.Mesh.SetPosition(c.NewPos) }
func (c *MoveCommand) Undo()               { c.Mesh.SetPosition(c.OldPos) }
func (c *MoveCommand) Description() string { return "Move " + c.Mesh.Name }

// RotateCommand sets a mesh rotation.
type RotateCommand struct {
	Mesh   *scene.Mesh
	OldRot math.Quaternion
	NewRot math.Quaternion
}

func NewRotateCommand(m *scene.Mesh, newRot math.Quaternion) *RotateCommand {
	return &RotateCommand{Mesh: m, OldRot: m.Transform.Rotation, NewRot: newRot}
}

func (c *RotateCommand) Execute()            { c.Mesh.SetRotation(c.NewRot) }
func (c *RotateCommand) Undo()               { c.Mesh.SetRotation(c.OldRot) }
func (c *RotateCommand) Description() string { return "Rotate " + c.Mesh.Name }

// ScaleCommand sets a mesh scale.
type ScaleCommand struct {
	Mesh     *scene.Mesh
	OldScale math.Vec3
	NewScale math.Vec3
}

func NewScaleCommand(m *scene.Mesh, newScale math.Vec3) *ScaleCommand {
	return &ScaleCommand{Mesh: m, OldScale: m.Transform.Scale, NewScale: newScale}
}

func (c *ScaleCommand) Execute()            { c.Mesh.SetScale(c.NewScale) }
func (c *ScaleCommand) Undo()               { c.Mesh.SetScale(c.OldScale) }
func (c *ScaleCommand) Description() string { return "Scale " + c.Mesh.Name }

// VisibilityCommand toggles Mesh.IsVisible.
type VisibilityCommand struct {
	Mesh    *scene.Mesh
	Visible bool
}

func NewToggleVisibilityCommand(m *scene.Mesh) *VisibilityCommand {
	return &VisibilityCommand{Mesh: m, Visible: !m.IsVisible}
}

func (c *VisibilityCommand) Execute()            { c.Mesh.IsVisible = c.Visible }
func (c *VisibilityCommand) Undo()               { c.Mesh.IsVisible = !c.Visible }
func (c *VisibilityCommand) Description() string { return "Toggle " + c.Mesh.Name }

// DisposeCommand queues a mesh for disposal at the end of the frame. It
// cannot be undone.
type DisposeCommand struct {
	Mesh *scene.Mesh
}

func (c *DisposeCommand) Execute() {
	if s := c.Mesh.Scene(); s != nil {
		s.QueueDispose(c.Mesh)
	}
}
func (c *DisposeCommand) Undo()               {}
func (c *DisposeCommand) Description() string { return "Dispose " + c.Mesh.Name }

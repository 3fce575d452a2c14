package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// Pointer buttons as reported to the input pipeline.
const (
	MouseLeft   = int(glfw.MouseButtonLeft)
	MouseRight  = int(glfw.MouseButtonRight)
	MouseMiddle = int(glfw.MouseButtonMiddle)
)

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	cursors map[string]*glfw.Cursor
	cursor  string
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:      1280,
		Height:     720,
		Title:      "Scene Viewer",
		Resizable:  true,
		VSync:      true,
		Fullscreen: false,
	}
}

// NewWindow opens a window with an OpenGL 4.1 core context made current on
// the calling thread.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.StencilBits, 8)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle:  handle,
		Width:   config.Width,
		Height:  config.Height,
		Title:   config.Title,
		cursors: make(map[string]*glfw.Cursor),
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// ContentScale is the ratio between framebuffer pixels and window coordinates.
func (w *Window) ContentScale() float32 {
	fw, _ := w.Handle.GetFramebufferSize()
	ww, _ := w.Handle.GetSize()
	if ww == 0 {
		return 1
	}
	return float32(fw) / float32(ww)
}

func (w *Window) Destroy() {
	for _, c := range w.cursors {
		c.Destroy()
	}
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// SetCursor switches to a standard cursor shape by name; "" restores the arrow.
func (w *Window) SetCursor(name string) {
	if name == w.cursor {
		return
	}
	w.cursor = name

	shape := glfw.ArrowCursor
	switch name {
	case "":
		w.Handle.SetCursor(nil)
		return
	case "pointer", "hand":
		shape = glfw.HandCursor
	case "crosshair":
		shape = glfw.CrosshairCursor
	case "text":
		shape = glfw.IBeamCursor
	}

	c, ok := w.cursors[name]
	if !ok {
		c = glfw.CreateStandardCursor(shape)
		w.cursors[name] = c
	}
	w.Handle.SetCursor(c)
}

// A nil callback passed to the Set*Callback methods removes the handler.
type CursorPosCallback func(x, y float64)

type MouseButtonCallback func(button int, pressed bool)

type ScrollCallback func(xoff, yoff float64)

// KeyCallback receives key presses and releases; repeats are dropped.
type KeyCallback func(key int, pressed bool)

func (w *Window) SetCursorPosCallback(cb CursorPosCallback) {
	if cb == nil {
		w.Handle.SetCursorPosCallback(nil)
		return
	}
	w.Handle.SetCursorPosCallback(func(win *glfw.Window, x, y float64) {
		cb(x, y)
	})
}

func (w *Window) SetMouseButtonCallback(cb MouseButtonCallback) {
	if cb == nil {
		w.Handle.SetMouseButtonCallback(nil)
		return
	}
	w.Handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			cb(int(button), true)
		case glfw.Release:
			cb(int(button), false)
		}
	})
}

func (w *Window) SetScrollCallback(cb ScrollCallback) {
	if cb == nil {
		w.Handle.SetScrollCallback(nil)
		return
	}
	w.Handle.SetScrollCallback(func(win *glfw.Window, xoff, yoff float64) {
		cb(xoff, yoff)
	})
}

func (w *Window) SetKeyCallback(cb KeyCallback) {
	if cb == nil {
		w.Handle.SetKeyCallback(nil)
		return
	}
	w.Handle.SetKeyCallback(func(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			cb(int(key), true)
		case glfw.Release:
			cb(int(key), false)
		}
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	KeySpace  = int(glfw.KeySpace)
	KeyEscape = int(glfw.KeyEscape)
	KeyEnter  = int(glfw.KeyEnter)
	KeyTab    = int(glfw.KeyTab)
	KeyDelete = int(glfw.KeyDelete)
	KeyRight  = int(glfw.KeyRight)
	KeyLeft   = int(glfw.KeyLeft)
	KeyDown   = int(glfw.KeyDown)
	KeyUp     = int(glfw.KeyUp)
	KeyA      = int(glfw.KeyA)
	KeyB      = int(glfw.KeyB)
	KeyD      = int(glfw.KeyD)
	KeyF      = int(glfw.KeyF)
	KeyO      = int(glfw.KeyO)
	KeyP      = int(glfw.KeyP)
	KeyR      = int(glfw.KeyR)
	KeyS      = int(glfw.KeyS)
	KeyW      = int(glfw.KeyW)
	KeyF1     = int(glfw.KeyF1)
	KeyF2     = int(glfw.KeyF2)
	KeyF3     = int(glfw.KeyF3)
	KeyF5     = int(glfw.KeyF5)
	KeyF9     = int(glfw.KeyF9)
)

// Package opengl is the OpenGL 4.1 backend: an engine the scene renders
// through and a drawer for the rendering groups.
package opengl

import (
	"log/slog"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-engine/core"
	"scene-engine/scene"
)

// Engine implements scene.Engine on a GLFW window. The window's GL context
// must be current on the calling goroutine.
type Engine struct {
	window  *core.Window
	logger  *slog.Logger
	stencil bool

	targets map[*scene.RenderTargetTexture]*Framebuffer
	bound   *Framebuffer
}

var _ scene.Engine = (*Engine)(nil)

// NewEngine loads the GL entry points. Must be called after the GLFW window
// context is made current.
func NewEngine(window *core.Window, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := gl.Init(); err != nil {
		return nil, err
	}
	logger.Info("opengl initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)

	return &Engine{
		window:  window,
		logger:  logger,
		targets: make(map[*scene.RenderTargetTexture]*Framebuffer),
	}, nil
}

// RenderSize is the bound render target's size, else the window framebuffer.
func (e *Engine) RenderSize() (int, int) {
	if e.bound != nil {
		return int(e.bound.Width), int(e.bound.Height)
	}
	return e.window.GetFramebufferSize()
}

// HardwareScalingLevel converts cursor coordinates to framebuffer pixels on
// high-DPI displays.
func (e *Engine) HardwareScalingLevel() float32 {
	if s := e.window.ContentScale(); s > 0 {
		return 1 / s
	}
	return 1
}

func (e *Engine) SetViewport(vp core.Viewport) {
	w, h := e.RenderSize()
	px := vp.ToGlobal(float32(w), float32(h))
	gl.Viewport(int32(px.X), int32(px.Y), int32(px.Width), int32(px.Height))
}

func (e *Engine) Clear(color core.Color, backBuffer, depth, stencil bool) {
	var mask uint32
	if backBuffer {
		gl.ClearColor(color.R, color.G, color.B, color.A)
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		gl.DepthMask(true)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if stencil {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (e *Engine) SetDepthBuffer(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (e *Engine) StencilBuffer() bool { return e.stencil }

func (e *Engine) SetStencilBuffer(enabled bool) {
	e.stencil = enabled
	if enabled {
		gl.Enable(gl.STENCIL_TEST)
	} else {
		gl.Disable(gl.STENCIL_TEST)
	}
}

// BindFramebuffer redirects drawing into rt, creating its framebuffer on
// first use.
func (e *Engine) BindFramebuffer(rt *scene.RenderTargetTexture) {
	fb, ok := e.targets[rt]
	if !ok {
		var err error
		fb, err = newFramebuffer(rt.Width, rt.Height)
		if err != nil {
			e.logger.Error("render target: "+err.Error(), "target", rt.Name)
			return
		}
		e.targets[rt] = fb
		rt.Framebuffer = fb
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.FBO)
	gl.Viewport(0, 0, fb.Width, fb.Height)
	e.bound = fb
}

func (e *Engine) UnbindFramebuffer(*scene.RenderTargetTexture) {
	e.RestoreDefaultFramebuffer()
}

func (e *Engine) RestoreDefaultFramebuffer() {
	e.bound = nil
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	w, h := e.window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(w), int32(h))
}

// ReleaseRenderTarget frees the framebuffer of a disposed render target.
func (e *Engine) ReleaseRenderTarget(rt *scene.RenderTargetTexture) {
	if fb, ok := e.targets[rt]; ok {
		fb.Destroy()
		delete(e.targets, rt)
		rt.Framebuffer = nil
	}
}

func (e *Engine) Destroy() {
	for rt, fb := range e.targets {
		fb.Destroy()
		rt.Framebuffer = nil
	}
	clear(e.targets)
}

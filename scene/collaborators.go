package scene

import (
	"time"

	"scene-engine/core"
	"scene-engine/math"
)

// Engine is the GPU backend the frame orchestrator drives.
type Engine interface {
	// RenderSize is the drawable size in pixels.
	RenderSize() (width, height int)
	HardwareScalingLevel() float32
	SetViewport(vp core.Viewport)
	Clear(color core.Color, backBuffer, depth, stencil bool)
	SetDepthBuffer(enabled bool)
	StencilBuffer() bool
	SetStencilBuffer(enabled bool)
	BindFramebuffer(rt *RenderTargetTexture)
	UnbindFramebuffer(rt *RenderTargetTexture)
	RestoreDefaultFramebuffer()
}

// RenderingGroupDispatcher collects what the visibility pass selected and
// draws it once per camera pass.
type RenderingGroupDispatcher interface {
	Reset()
	Dispatch(sm *SubMesh)
	DispatchParticles(ps *ParticleSystem)
	Render(ctx *FrameContext)
}

type PhysicsEngine interface {
	Step(deltaSeconds float32)
}

// Animatable is advanced once per frame with the scene animation clock.
// Returning false removes it from the scene.
type Animatable interface {
	Animate(now time.Duration) bool
}

type AudioListener interface {
	Update(position, forward, up math.Vec3)
}

type PostProcessManager interface {
	PrepareFrame(camera *Camera) bool
	FinalizeFrame(intermediate bool, camera *Camera)
}

type RenderPipelineManager interface {
	Update()
}

type DepthRenderer interface {
	DepthMap() *RenderTargetTexture
}

// Disposable can be queued with Scene.QueueDispose.
type Disposable interface {
	Dispose()
}

package scene

import (
	"fmt"
	"time"

	"scene-engine/math"
)

// Render draws one frame. It fails before doing any work when the scene is
// disposed, has no engine or has no camera; every other missing piece is
// skipped.
func (s *Scene) Render() error {
	if s.disposed {
		return ErrDisposed
	}
	if s.engine == nil {
		return ErrNoEngine
	}
	if len(s.ActiveCameras) == 0 && s.ActiveCamera == nil {
		return fmt.Errorf("render: %w", ErrNoActiveCamera)
	}

	engine := s.engine
	f := &s.frame
	now := s.clock.Now()
	s.stats.frameDuration.BeginMonitoring(now)

	// 1. instrumentation and per-frame buffers
	s.stats.fetchNewFrame()
	f.meshesForIntersections = f.meshesForIntersections[:0]
	f.renderTargets = f.renderTargets[:0]

	// 2. scene-level every-frame trigger
	if s.ActionManager != nil {
		s.ActionManager.ProcessTrigger(TriggerEveryFrame, NewSceneActionEvent(s, nil))
	}

	// 3. animations
	s.advanceTime(now)
	if s.AnimationsEnabled {
		s.animate()
	}

	// 4. physics
	if s.PhysicsEnabled && s.Physics != nil {
		s.Physics.Step(float32(s.deltaTime.Seconds()))
	}

	// 5.
	s.OnBeforeRender.Notify(s)

	// 6. custom render targets, each with its own camera
	s.stats.renderTargetsDuration.BeginMonitoring(s.clock.Now())
	if s.RenderTargetsEnabled && len(s.CustomRenderTargets) > 0 {
		current := s.ActiveCamera
		for _, rt := range s.CustomRenderTargets {
			if !rt.ShouldRender() {
				continue
			}
			camera := rt.ActiveCamera
			if camera == nil {
				camera = s.defaultCamera()
			}
			s.renderID++
			s.ActiveCamera = camera
			engine.SetViewport(camera.Viewport)
			s.updateTransformMatrix(camera)
			rt.Render(&FrameContext{Scene: s, Camera: camera, Intermediate: true, RenderID: s.renderID})
		}
		s.renderID++
		engine.RestoreDefaultFramebuffer()
		s.ActiveCamera = current
	}
	s.stats.renderTargetsDuration.EndMonitoring(s.clock.Now(), false)

	// 7. procedural textures
	if s.ProceduralTexturesEnabled {
		ctx := &FrameContext{Scene: s, Camera: s.defaultCamera(), Intermediate: true, RenderID: s.renderID}
		for _, pt := range s.proceduralTextures {
			if pt.ShouldRender() {
				pt.Render(ctx)
			}
		}
	}

	// 8. clear
	engine.Clear(s.ClearColor, s.AutoClear || s.ForceWireframe, true, true)

	// 9. shadow maps and depth map join the per-camera render-target queue
	if s.ShadowsEnabled {
		for _, l := range s.lights {
			g := l.ShadowGenerator
			if !l.Enabled || g == nil || indexOf(s.textures, g.ShadowMap) < 0 {
				continue
			}
			f.renderTargets = pushNoDuplicate(f.renderTargets, g.ShadowMap)
		}
	}
	if s.DepthRenderer != nil {
		if depthMap := s.DepthRenderer.DepthMap(); depthMap != nil {
			f.renderTargets = pushNoDuplicate(f.renderTargets, depthMap)
		}
	}

	// 10.
	if s.PostProcessesEnabled && s.RenderPipelineManager != nil {
		s.RenderPipelineManager.Update()
	}

	// 11. cameras; depth and stencil (not color) are cleared between them
	if len(s.ActiveCameras) > 0 {
		for i, camera := range s.ActiveCameras {
			if i > 0 {
				engine.Clear(s.ClearColor, false, true, true)
			}
			s.processSubCameras(camera)
		}
	} else {
		s.processSubCameras(s.ActiveCamera)
	}

	// 12.
	s.checkIntersections()

	// 13.
	s.updateAudioListener()

	// 14.
	s.OnAfterRender.Notify(s)

	// 15.
	s.sweepDisposals()

	s.checkIsReady()
	s.stats.frameDuration.EndMonitoring(s.clock.Now(), true)
	return nil
}

// defaultCamera is the camera used outside a camera pass.
func (s *Scene) defaultCamera() *Camera {
	if s.ActiveCamera != nil {
		return s.ActiveCamera
	}
	if len(s.ActiveCameras) > 0 {
		return s.ActiveCameras[0]
	}
	return nil
}

// advanceTime updates the clamped frame delta from the scene clock.
func (s *Scene) advanceTime(now time.Time) {
	var delta time.Duration
	if !s.lastFrame.IsZero() {
		delta = now.Sub(s.lastFrame)
	}
	s.lastFrame = now
	s.deltaTime = math.Clamp(delta, s.MinDeltaTime, s.MaxDeltaTime)
	s.animationRatio = float32(s.deltaTime) / float32(time.Millisecond) * 60 / 1000
}

// animate advances the animation clock and every animatable; animatables
// returning false are dropped.
func (s *Scene) animate() {
	if len(s.animatables) == 0 {
		return
	}
	s.animationTime += time.Duration(float32(s.deltaTime) * s.AnimationTimeScale)

	kept := s.animatables[:0]
	for _, a := range s.animatables {
		if a.Animate(s.animationTime) {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(s.animatables); i++ {
		s.animatables[i] = nil
	}
	s.animatables = kept
}

// processSubCameras renders camera, or each of its rig cameras followed by
// restoring camera as the active one.
func (s *Scene) processSubCameras(camera *Camera) {
	if len(camera.RigCameras) == 0 {
		s.renderForCamera(camera)
		return
	}
	for _, rig := range camera.RigCameras {
		s.renderForCamera(rig)
	}
	s.ActiveCamera = camera
	s.updateTransformMatrix(camera)
	camera.Update()
}

func (s *Scene) renderForCamera(camera *Camera) {
	engine := s.engine
	f := &s.frame
	s.ActiveCamera = camera

	engine.SetViewport(camera.Viewport)
	s.renderID++
	s.updateTransformMatrix(camera)
	ctx := &FrameContext{Scene: s, Camera: camera, RenderID: s.renderID}

	s.OnBeforeCameraRender.Notify(camera)

	s.stats.evaluateActiveMeshesDuration.BeginMonitoring(s.clock.Now())
	s.evaluateActiveMeshes(ctx)
	s.stats.evaluateActiveMeshesDuration.EndMonitoring(s.clock.Now(), false)

	s.applySoftwareSkinning()

	// render targets always precede the main draw
	s.stats.renderTargetsDuration.BeginMonitoring(s.clock.Now())
	needsRestore := false
	for _, rt := range camera.CustomRenderTargets {
		f.renderTargets = pushNoDuplicate(f.renderTargets, rt)
	}
	if s.RenderTargetsEnabled && len(f.renderTargets) > 0 {
		for _, rt := range f.renderTargets {
			if !rt.ShouldRender() {
				continue
			}
			s.renderID++
			rtCamera := camera
			if rt.ActiveCamera != nil {
				rtCamera = rt.ActiveCamera
			}
			rt.Render(&FrameContext{Scene: s, Camera: rtCamera, Intermediate: true, RenderID: s.renderID})
		}
		s.renderID++
		needsRestore = true
	}

	stencilState := engine.StencilBuffer()
	renderHighlights := false
	if s.RenderTargetsEnabled {
		for _, hl := range s.HighlightLayers {
			if !hl.ShouldRender() || !highlightAppliesTo(hl, camera) {
				continue
			}
			renderHighlights = true
			if main := hl.MainTexture(); main != nil && main.ShouldRender() {
				s.renderID++
				main.Render(&FrameContext{Scene: s, Camera: camera, Intermediate: true, RenderID: s.renderID})
				needsRestore = true
			}
		}
	}
	if needsRestore {
		engine.RestoreDefaultFramebuffer()
	}
	s.stats.renderTargetsDuration.EndMonitoring(s.clock.Now(), false)

	if s.PostProcessesEnabled && s.PostProcessManager != nil {
		s.PostProcessManager.PrepareFrame(camera)
	}

	s.stats.renderDuration.BeginMonitoring(s.clock.Now())
	ctx.RenderID = s.renderID

	s.renderLayers(ctx, true)

	if renderHighlights {
		engine.SetStencilBuffer(true)
	}
	if s.Dispatcher != nil {
		s.Dispatcher.Render(ctx)
	}
	if renderHighlights {
		engine.SetStencilBuffer(stencilState)
	}

	if s.BoundingBoxRenderer != nil {
		s.BoundingBoxRenderer.Render(ctx)
	}
	for _, er := range f.edgesRenderers {
		er.Render(ctx)
	}
	if s.LensFlaresEnabled {
		for _, lf := range s.LensFlareSystems {
			if lf.IsEnabled() && lf.LayerMask()&camera.LayerMask != 0 {
				lf.Render(ctx)
			}
		}
	}

	s.renderLayers(ctx, false)

	if renderHighlights {
		engine.SetDepthBuffer(false)
		for _, hl := range s.HighlightLayers {
			if hl.ShouldRender() {
				hl.Render(ctx)
			}
		}
		engine.SetDepthBuffer(true)
	}
	s.stats.renderDuration.EndMonitoring(s.clock.Now(), false)

	if s.PostProcessesEnabled && s.PostProcessManager != nil {
		s.PostProcessManager.FinalizeFrame(camera.IsIntermediate, camera)
	}

	camera.Update()
	f.renderTargets = f.renderTargets[:0]

	s.OnAfterCameraRender.Notify(camera)
}

// renderLayers draws the background or foreground layers visible to the
// context camera with depth writes off.
func (s *Scene) renderLayers(ctx *FrameContext, background bool) {
	if len(s.Layers) == 0 {
		return
	}
	s.engine.SetDepthBuffer(false)
	for _, layer := range s.Layers {
		if layer.IsBackground() == background && layer.LayerMask()&ctx.Camera.LayerMask != 0 {
			layer.Render(ctx)
		}
	}
	s.engine.SetDepthBuffer(true)
}

func highlightAppliesTo(hl HighlightLayer, camera *Camera) bool {
	target := hl.Camera()
	switch {
	case target == nil:
		return true
	case len(target.RigCameras) == 0:
		return target == camera
	default:
		return indexOf(target.RigCameras, camera) >= 0
	}
}

func (s *Scene) updateAudioListener() {
	if !s.AudioEnabled || s.AudioListener == nil {
		return
	}
	listener := s.defaultCamera()
	if len(s.ActiveCameras) > 0 {
		listener = s.ActiveCameras[0]
	}
	if listener == nil {
		return
	}
	s.AudioListener.Update(listener.GlobalPosition(), listener.GetForward(), listener.Up)
}

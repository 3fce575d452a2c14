package scene

import (
	"log/slog"
	"time"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/octree"
)

const (
	DefaultMinDeltaTime          = time.Millisecond
	DefaultMaxDeltaTime          = time.Second
	DefaultDragMovementThreshold = 10
	DefaultLongPressDelay        = 500 * time.Millisecond
	DefaultHoverCursor           = "pointer"
)

// Options configures a new Scene. Zero fields take defaults.
type Options struct {
	Logger *slog.Logger
	Clock  core.Clock
}

// Scene owns every entity collection, the per-frame state and the
// observables collaborators subscribe to. It is not safe for concurrent
// use; render and input run on the same goroutine.
type Scene struct {
	ClearColor     core.Color
	AutoClear      bool
	ForceWireframe bool
	// ForceShowBoundingBoxes draws the box of every active mesh.
	ForceShowBoundingBoxes bool

	ShadowsEnabled            bool
	ParticlesEnabled          bool
	RenderTargetsEnabled      bool
	ProceduralTexturesEnabled bool
	LensFlaresEnabled         bool
	SkeletonsEnabled          bool
	AudioEnabled              bool
	AnimationsEnabled         bool
	PhysicsEnabled            bool
	PostProcessesEnabled      bool
	SpritesEnabled            bool

	MinDeltaTime       time.Duration
	MaxDeltaTime       time.Duration
	AnimationTimeScale float32

	// Pointer settings read by the input pipeline.
	ConstantlyUpdateMeshUnderPointer bool
	HoverCursor                      string
	DragMovementThreshold            float32
	LongPressDelay                   time.Duration

	ActiveCamera *Camera
	// ActiveCameras, when non-empty, are rendered in order instead of
	// ActiveCamera.
	ActiveCameras          []*Camera
	CameraToUseForPointers *Camera

	ActionManager         ActionManager
	Physics               PhysicsEngine
	AudioListener         AudioListener
	PostProcessManager    PostProcessManager
	RenderPipelineManager RenderPipelineManager
	DepthRenderer         DepthRenderer
	BoundingBoxRenderer   BoundingBoxRenderer
	Dispatcher            RenderingGroupDispatcher

	CustomRenderTargets []*RenderTargetTexture
	Layers              []Layer
	LensFlareSystems    []LensFlareSystem
	HighlightLayers     []HighlightLayer

	// Pointer state maintained by the input pipeline.
	PointerX, PointerY float32
	MeshUnderPointer   *Mesh

	OnNewMeshAdded       core.Observable[*Mesh]
	OnMeshRemoved        core.Observable[*Mesh]
	OnNewCameraAdded     core.Observable[*Camera]
	OnCameraRemoved      core.Observable[*Camera]
	OnReady              core.Observable[*Scene]
	OnBeforeRender       core.Observable[*Scene]
	OnAfterRender        core.Observable[*Scene]
	OnBeforeCameraRender core.Observable[*Camera]
	OnAfterCameraRender  core.Observable[*Camera]
	OnPrePointer         core.Observable[*PointerInfoPre]
	OnPointer            core.Observable[*PointerInfo]
	OnPreKeyboard        core.Observable[*KeyboardInfoPre]
	OnKeyboard           core.Observable[*KeyboardInfo]
	OnDispose            core.Observable[*Scene]

	engine Engine
	logger *slog.Logger
	clock  core.Clock

	meshes             []*Mesh
	cameras            []*Camera
	lights             []*Light
	skeletons          []*Skeleton
	particleSystems    []*ParticleSystem
	spriteManagers     []*SpriteManager
	textures           []*RenderTargetTexture
	proceduralTextures []*ProceduralTexture
	animatables        []Animatable

	nextUniqueID int
	renderID     int

	selectionOctree   *octree.Octree[*Mesh]
	spatialIndexDirty bool

	frame frameState

	toBeDisposed []Disposable

	lastFrame      time.Time
	deltaTime      time.Duration
	animationTime  time.Duration
	animationRatio float32

	stats sceneStats

	disposed bool
}

// frameState is rebuilt for each camera pass. Slices are truncated, not
// reallocated, between passes.
type frameState struct {
	transformMatrix math.Mat4
	frustumPlanes   []math.Plane

	activeMeshes           []*Mesh
	activeParticleSystems  []*ParticleSystem
	activeSkeletons        []*Skeleton
	softwareSkinnedMeshes  []*Mesh
	renderTargets          []*RenderTargetTexture
	meshesForIntersections []*Mesh
	edgesRenderers         []EdgesRenderer
	candidates             []*Mesh
	subMeshCandidates      []*SubMesh
}

// NewScene creates an empty scene drawn by engine. engine may be nil for
// scenes that are only queried (picking needs a render size, so tests pass a
// fake).
func NewScene(engine Engine, opts Options) *Scene {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}

	s := &Scene{
		ClearColor: core.ColorScene,
		AutoClear:  true,

		ShadowsEnabled:            true,
		ParticlesEnabled:          true,
		RenderTargetsEnabled:      true,
		ProceduralTexturesEnabled: true,
		LensFlaresEnabled:         true,
		SkeletonsEnabled:          true,
		AudioEnabled:              true,
		AnimationsEnabled:         true,
		PhysicsEnabled:            true,
		PostProcessesEnabled:      true,
		SpritesEnabled:            true,

		MinDeltaTime:       DefaultMinDeltaTime,
		MaxDeltaTime:       DefaultMaxDeltaTime,
		AnimationTimeScale: 1,

		HoverCursor:           DefaultHoverCursor,
		DragMovementThreshold: DefaultDragMovementThreshold,
		LongPressDelay:        DefaultLongPressDelay,

		engine: engine,
		logger: opts.Logger,
		clock:  opts.Clock,
	}
	s.logger.Debug("scene created")
	return s
}

func (s *Scene) Engine() Engine { return s.engine }

func (s *Scene) Logger() *slog.Logger { return s.logger }

func (s *Scene) Clock() core.Clock { return s.clock }

// RenderID is the id of the current (or last) render pass.
func (s *Scene) RenderID() int { return s.renderID }

// DeltaTime is the clamped time between the last two frames.
func (s *Scene) DeltaTime() time.Duration { return s.deltaTime }

// AnimationRatio is DeltaTime relative to a 60 fps frame.
func (s *Scene) AnimationRatio() float32 { return s.animationRatio }

// AnimationTime is the accumulated, scaled animation clock.
func (s *Scene) AnimationTime() time.Duration { return s.animationTime }

func (s *Scene) IsDisposed() bool { return s.disposed }

// TransformMatrix is the view-projection of the current camera pass.
func (s *Scene) TransformMatrix() math.Mat4 { return s.frame.transformMatrix }

// FrustumPlanes are the planes of the current camera pass.
func (s *Scene) FrustumPlanes() []math.Plane { return s.frame.frustumPlanes }

func (s *Scene) getUniqueID() int {
	id := s.nextUniqueID
	s.nextUniqueID++
	return id
}

// --- Meshes ---

func (s *Scene) Meshes() []*Mesh { return s.meshes }

// AddMesh registers m, assigns its handle and notifies OnNewMeshAdded.
func (s *Scene) AddMesh(m *Mesh) {
	if m.scene == s && indexOf(s.meshes, m) >= 0 {
		return
	}
	m.scene = s
	m.UniqueID = s.getUniqueID()
	s.meshes = append(s.meshes, m)
	s.MarkSpatialIndexDirty()
	s.OnNewMeshAdded.Notify(m)
}

// RemoveMesh unregisters m and reports its former index, or -1.
func (s *Scene) RemoveMesh(m *Mesh) int {
	i := indexOf(s.meshes, m)
	if i < 0 {
		return -1
	}
	s.meshes = removeAt(s.meshes, i)
	if s.MeshUnderPointer == m {
		s.MeshUnderPointer = nil
	}
	s.MarkSpatialIndexDirty()
	s.OnMeshRemoved.Notify(m)
	return i
}

func (s *Scene) GetMeshByID(id string) *Mesh {
	for _, m := range s.meshes {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *Scene) GetMeshByUniqueID(uniqueID int) *Mesh {
	for _, m := range s.meshes {
		if m.UniqueID == uniqueID {
			return m
		}
	}
	return nil
}

func (s *Scene) GetMeshByName(name string) *Mesh {
	for _, m := range s.meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// --- Cameras ---

func (s *Scene) Cameras() []*Camera { return s.cameras }

// AddCamera registers c. The first camera added becomes the active camera.
func (s *Scene) AddCamera(c *Camera) {
	if indexOf(s.cameras, c) >= 0 {
		return
	}
	c.scene = s
	c.UniqueID = s.getUniqueID()
	s.cameras = append(s.cameras, c)
	if s.ActiveCamera == nil {
		s.ActiveCamera = c
	}
	s.OnNewCameraAdded.Notify(c)
}

func (s *Scene) RemoveCamera(c *Camera) int {
	i := indexOf(s.cameras, c)
	if i < 0 {
		return -1
	}
	s.cameras = removeAt(s.cameras, i)
	if j := indexOf(s.ActiveCameras, c); j >= 0 {
		s.ActiveCameras = removeAt(s.ActiveCameras, j)
	}
	if s.ActiveCamera == c {
		s.ActiveCamera = nil
		if len(s.cameras) > 0 {
			s.ActiveCamera = s.cameras[0]
		}
	}
	s.OnCameraRemoved.Notify(c)
	return i
}

func (s *Scene) GetCameraByName(name string) *Camera {
	for _, c := range s.cameras {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Other collections ---

func (s *Scene) Lights() []*Light { return s.lights }

func (s *Scene) AddLight(l *Light) {
	if indexOf(s.lights, l) < 0 {
		s.lights = append(s.lights, l)
	}
}

func (s *Scene) RemoveLight(l *Light) int {
	i := indexOf(s.lights, l)
	if i >= 0 {
		s.lights = removeAt(s.lights, i)
	}
	return i
}

func (s *Scene) Skeletons() []*Skeleton { return s.skeletons }

func (s *Scene) AddSkeleton(sk *Skeleton) {
	if indexOf(s.skeletons, sk) < 0 {
		s.skeletons = append(s.skeletons, sk)
	}
}

func (s *Scene) ParticleSystems() []*ParticleSystem { return s.particleSystems }

func (s *Scene) AddParticleSystem(ps *ParticleSystem) {
	if indexOf(s.particleSystems, ps) < 0 {
		s.particleSystems = append(s.particleSystems, ps)
	}
}

func (s *Scene) RemoveParticleSystem(ps *ParticleSystem) int {
	i := indexOf(s.particleSystems, ps)
	if i >= 0 {
		s.particleSystems = removeAt(s.particleSystems, i)
	}
	return i
}

func (s *Scene) SpriteManagers() []*SpriteManager { return s.spriteManagers }

func (s *Scene) AddSpriteManager(sm *SpriteManager) {
	if indexOf(s.spriteManagers, sm) < 0 {
		s.spriteManagers = append(s.spriteManagers, sm)
	}
}

// Textures lists every render target created on this scene, including
// shadow maps.
func (s *Scene) Textures() []*RenderTargetTexture { return s.textures }

func (s *Scene) AddTexture(rt *RenderTargetTexture) {
	if indexOf(s.textures, rt) < 0 {
		s.textures = append(s.textures, rt)
	}
}

func (s *Scene) RemoveTexture(rt *RenderTargetTexture) int {
	i := indexOf(s.textures, rt)
	if i >= 0 {
		s.textures = removeAt(s.textures, i)
	}
	if j := indexOf(s.CustomRenderTargets, rt); j >= 0 {
		s.CustomRenderTargets = removeAt(s.CustomRenderTargets, j)
	}
	return i
}

func (s *Scene) ProceduralTextures() []*ProceduralTexture { return s.proceduralTextures }

func (s *Scene) AddProceduralTexture(pt *ProceduralTexture) {
	if indexOf(s.proceduralTextures, pt) < 0 {
		s.proceduralTextures = append(s.proceduralTextures, pt)
	}
}

// AddAnimatable appends a driver advanced on every frame while animations
// are enabled.
func (s *Scene) AddAnimatable(a Animatable) {
	s.animatables = append(s.animatables, a)
}

func (s *Scene) RemoveAnimatable(a Animatable) {
	for i, cur := range s.animatables {
		if cur == a {
			s.animatables = append(s.animatables[:i], s.animatables[i+1:]...)
			return
		}
	}
}

func (s *Scene) Animatables() []Animatable { return s.animatables }

// --- Selection index ---

// MarkSpatialIndexDirty schedules a rebuild of the selection octree before
// its next use.
func (s *Scene) MarkSpatialIndexDirty() { s.spatialIndexDirty = true }

// WorldExtents returns the world bounds of every enabled mesh, or two zero
// vectors when there is none.
func (s *Scene) WorldExtents() (math.Vec3, math.Vec3) {
	var (
		min, max math.Vec3
		found    bool
	)
	for _, m := range s.meshes {
		if !m.IsEnabled() {
			continue
		}
		m.ComputeWorldMatrix()
		box := m.boundingInfo.Box
		if !found {
			min, max, found = box.MinimumWorld, box.MaximumWorld, true
			continue
		}
		min = min.Min(box.MinimumWorld)
		max = max.Max(box.MaximumWorld)
	}
	return min, max
}

// CreateOrUpdateSelectionOctree builds the selection index over the current
// world extents. Later structural changes rebuild it lazily with the same
// capacity and depth.
func (s *Scene) CreateOrUpdateSelectionOctree(maxCapacity, maxDepth int) *octree.Octree[*Mesh] {
	if s.selectionOctree == nil {
		s.selectionOctree = octree.New(func(m *Mesh) (math.Vec3, math.Vec3) {
			b := m.boundingInfo.Box
			return b.MinimumWorld, b.MaximumWorld
		}, maxCapacity, maxDepth)
	} else {
		s.selectionOctree.MaxCapacity = maxCapacity
		s.selectionOctree.MaxDepth = maxDepth
	}
	s.rebuildSelectionOctree()
	return s.selectionOctree
}

func (s *Scene) rebuildSelectionOctree() {
	min, max := s.WorldExtents()
	for _, m := range s.meshes {
		m.ComputeWorldMatrix()
	}
	s.selectionOctree.Update(min, max, s.meshes)
	s.spatialIndexDirty = false
	s.logger.Debug("selection octree rebuilt", "entities", len(s.meshes))
}

// SelectionOctree returns the up-to-date selection index.
func (s *Scene) SelectionOctree() (*octree.Octree[*Mesh], error) {
	if s.selectionOctree == nil {
		return nil, ErrNoSpatialIndex
	}
	if s.spatialIndexDirty {
		s.rebuildSelectionOctree()
	}
	return s.selectionOctree, nil
}

// --- Readiness ---

// IsReady reports whether every enabled mesh with sub-meshes is ready.
func (s *Scene) IsReady() bool {
	for _, m := range s.meshes {
		if !m.IsEnabled() || len(m.SubMeshes) == 0 {
			continue
		}
		if !m.IsReady() {
			return false
		}
	}
	return true
}

// ExecuteWhenReady runs fn once the scene is ready, immediately if it
// already is. Otherwise readiness is checked after every frame.
func (s *Scene) ExecuteWhenReady(fn func()) {
	s.OnReady.AddOnce(func(*Scene, *core.EventState) { fn() })
	s.checkIsReady()
}

func (s *Scene) checkIsReady() {
	if !s.OnReady.HasObservers() || !s.IsReady() {
		return
	}
	s.OnReady.Notify(s)
	s.OnReady.Clear()
}

// --- Disposal ---

// QueueDispose defers d.Dispose to the end of the current (or next) frame.
func (s *Scene) QueueDispose(d Disposable) {
	if d == nil {
		return
	}
	s.toBeDisposed = append(s.toBeDisposed, d)
}

// PendingDisposals is the number of queued disposals.
func (s *Scene) PendingDisposals() int { return len(s.toBeDisposed) }

func (s *Scene) sweepDisposals() {
	// Disposal may queue more work; it runs on the next frame.
	queue := s.toBeDisposed
	s.toBeDisposed = nil
	for i, d := range queue {
		d.Dispose()
		queue[i] = nil
	}
	if len(queue) > 0 {
		s.logger.Debug("disposed queued objects", "count", len(queue))
	}
}

// Dispose releases every entity. Later Render calls return ErrDisposed.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.OnDispose.Notify(s)

	s.sweepDisposals()
	for len(s.meshes) > 0 {
		m := s.meshes[0]
		m.Dispose()
		s.RemoveMesh(m)
	}
	for _, ps := range s.particleSystems {
		ps.Dispose()
	}
	for len(s.textures) > 0 {
		rt := s.textures[0]
		rt.Dispose()
		s.RemoveTexture(rt)
	}
	for _, sm := range s.spriteManagers {
		sm.Sprites = nil
	}
	s.particleSystems = nil
	s.spriteManagers = nil
	s.proceduralTextures = nil
	s.skeletons = nil
	s.lights = nil
	s.animatables = nil
	s.cameras = nil
	s.ActiveCamera = nil
	s.ActiveCameras = nil
	s.selectionOctree = nil
	s.frame = frameState{}

	s.OnNewMeshAdded.Clear()
	s.OnMeshRemoved.Clear()
	s.OnNewCameraAdded.Clear()
	s.OnCameraRemoved.Clear()
	s.OnReady.Clear()
	s.OnBeforeRender.Clear()
	s.OnAfterRender.Clear()
	s.OnBeforeCameraRender.Clear()
	s.OnAfterCameraRender.Clear()
	s.OnPrePointer.Clear()
	s.OnPointer.Clear()
	s.OnPreKeyboard.Clear()
	s.OnKeyboard.Clear()
	s.OnDispose.Clear()

	s.disposed = true
	s.logger.Debug("scene disposed")
}

func indexOf[T comparable](list []T, v T) int {
	for i, cur := range list {
		if cur == v {
			return i
		}
	}
	return -1
}

func removeAt[T any](list []T, i int) []T {
	copy(list[i:], list[i+1:])
	var zero T
	list[len(list)-1] = zero
	return list[:len(list)-1]
}

// pushNoDuplicate appends v unless it is already present.
func pushNoDuplicate[T comparable](list []T, v T) []T {
	if indexOf(list, v) >= 0 {
		return list
	}
	return append(list, v)
}

package main

import (
	"log/slog"
	"time"

	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"

	"scene-engine/action"
	"scene-engine/animation"
	"scene-engine/core"
	"scene-engine/ecs"
	sceneio "scene-engine/io"
	"scene-engine/math"
	"scene-engine/scene"
)

var (
	colorIdle  = core.Color{R: 0.70, G: 0.72, B: 0.78, A: 1}
	colorHover = core.Color{R: 1.00, G: 0.78, B: 0.30, A: 1}
	colorHit   = core.Color{R: 0.90, G: 0.25, B: 0.20, A: 1}
)

// demo is the showcase scene: pickable boxes with hover and click actions,
// a patrolling box with intersection triggers and entities handled through
// the ECS world. Picked meshes are selected; Delete disposes the selection.
type demo struct {
	scene     *scene.Scene
	camera    *scene.OrbitCamera
	sun       *scene.Light
	world     donburi.World
	history   *action.History
	selection *action.Selection
	logger    *slog.Logger

	boxes  []*scene.Mesh
	patrol *scene.Mesh
	fire   *scene.ParticleSystem
}

func buildDemo(s *scene.Scene, world donburi.World, logger *slog.Logger) *demo {
	d := &demo{
		scene:     s,
		world:     world,
		history:   action.NewHistory(64),
		selection: action.NewSelection(),
		logger:    logger,
	}
	d.selection.Attach(s)
	d.camera = scene.NewOrbitCamera("orbit", math.NewVec3(0, 0.5, 0), 12, s)
	d.sun = scene.NewDirectionalLight("sun", math.NewVec3(-0.3, -1, -0.4), s)

	ground := scene.NewTiledGround("ground", 30, 6, s)
	ground.SetPosition(math.NewVec3(0, -0.5, 0))
	ground.IsPickable = false

	for i, x := range []float32{-4, -2, 0, 2, 4} {
		d.addPickableBox(i, x)
	}
	d.addPatrol()
	d.addECSEntities()
	d.addEffects()
	d.registerKeys()
	return d
}

func newMaterial(name string, albedo core.Color) *scene.StandardMaterial {
	mat := scene.NewStandardMaterial(name)
	mat.Albedo = albedo
	return mat
}

// addPickableBox wires hover tint, click hop and right-click undoable scale.
func (d *demo) addPickableBox(i int, x float32) {
	box := scene.NewBox("box"+string(rune('A'+i)), 1, d.scene)
	box.SetPosition(math.NewVec3(x, 0, 0))
	mat := newMaterial(box.Name, colorIdle)
	box.Material = mat

	am := action.NewManager(d.logger)
	am.Cursor = "hand"
	am.Register(action.New(scene.TriggerPointerOver, func(scene.ActionEvent) {
		animation.Play(d.scene, animation.ColorTo(mat, colorHover, 150*time.Millisecond, nil))
	}))
	am.Register(action.New(scene.TriggerPointerOut, func(scene.ActionEvent) {
		animation.Play(d.scene, animation.ColorTo(mat, colorIdle, 300*time.Millisecond, nil))
	}))
	am.Register(action.New(scene.TriggerLeftPick, func(scene.ActionEvent) {
		base := math.NewVec3(x, 0, 0)
		up := animation.MoveTo(box, base.Add(math.NewVec3(0, 1.5, 0)), 250*time.Millisecond, ease.OutQuad)
		up.OnEnd = func() {
			animation.Play(d.scene, animation.MoveTo(box, base, 400*time.Millisecond, ease.OutBounce))
		}
		animation.Play(d.scene, up)
	}))
	am.Register(action.NewCommand(scene.TriggerRightPick, d.history, func(scene.ActionEvent) action.Command {
		scale := box.Transform.Scale.Mul(1.25)
		if scale.X > 2 {
			scale = math.Vec3One
		}
		return action.NewScaleCommand(box, scale)
	}))
	am.Register(action.New(scene.TriggerLongPress, func(scene.ActionEvent) {
		d.history.Do(action.NewToggleVisibilityCommand(box))
	}))
	box.ActionManager = am
	d.boxes = append(d.boxes, box)
}

// addPatrol adds a box sweeping across the row; it flashes while it
// overlaps any of the pickable boxes.
func (d *demo) addPatrol() {
	d.patrol = scene.NewBox("patrol", 0.5, d.scene)
	d.patrol.SetPosition(math.NewVec3(-6, 1.2, 0))
	mat := newMaterial("patrol", core.ColorWhite)
	mat.EmissiveColor = core.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}
	d.patrol.Material = mat

	am := action.NewManager(d.logger)
	for _, target := range d.boxes {
		am.Register(action.NewIntersection(scene.TriggerIntersectionEnter, target, false, func(scene.ActionEvent) {
			mat.Albedo = colorHit
			d.logger.Debug("patrol entered", "mesh", target.Name)
		}))
		am.Register(action.NewIntersection(scene.TriggerIntersectionExit, target, false, func(scene.ActionEvent) {
			mat.Albedo = core.ColorWhite
		}))
	}
	d.patrol.ActionManager = am

	sweep := animation.MoveTo(d.patrol, math.NewVec3(6, 0.2, 0), 6*time.Second, ease.InOutSine)
	sweep.Loop = true
	animation.Play(d.scene, sweep)

	spin := animation.RotateTo(d.patrol, math.QuaternionFromAxisAngle(math.Vec3Up, 3), 6*time.Second, nil)
	spin.Loop = true
	animation.Play(d.scene, spin)
}

// addECSEntities puts two spheres under the ECS dispatcher. A system
// subscribed to trigger events fades the picked sphere and logs hovers.
func (d *demo) addECSEntities() {
	for i, z := range []float32{-3, 3} {
		sphere := scene.NewSphere("orb"+string(rune('1'+i)), 1, 24, d.scene)
		sphere.SetPosition(math.NewVec3(0, 0.5, z))
		sphere.Material = newMaterial(sphere.Name, core.Color{R: 0.3, G: 0.5, B: 0.9, A: 1})
		dispatcher := ecs.Attach(d.world, sphere, scene.TriggerPick, scene.TriggerPointerOver)
		dispatcher.Cursor = "crosshair"
	}

	ecs.TriggerEventType.Subscribe(d.world, func(w donburi.World, e ecs.TriggerEvent) {
		m := ecs.MeshOf(w, e.Entity)
		if m == nil {
			return
		}
		switch e.Trigger {
		case scene.TriggerPointerOver:
			d.logger.Debug("orb hovered", "mesh", m.Name)
		case scene.TriggerPick:
			target := float32(0.3)
			if m.Visibility < 1 {
				target = 1
			}
			animation.Play(d.scene, animation.FadeTo(m, target, 400*time.Millisecond, ease.InOutQuad))
		}
	})
}

func (d *demo) addEffects() {
	torus := scene.NewTorus("torus", 1, 0.25, 32, d.scene)
	torus.SetPosition(math.NewVec3(0, 3, -5))
	torus.Material = newMaterial("torus", core.Color{R: 0.8, G: 0.6, B: 0.9, A: 1})
	torus.RenderingGroupID = 1
	pulse := animation.ScaleTo(torus, math.NewVec3(1.3, 1.3, 1.3), time.Second, ease.InOutSine)
	pulse.Loop = true
	animation.Play(d.scene, pulse)

	d.fire = scene.NewParticleSystem("fire", 400, d.scene)
	d.fire.EmitterPosition = math.NewVec3(-6, -0.5, -3)
	d.fire.Direction = math.Vec3Up
	d.fire.Spread = 0.3
	d.fire.Rate = 120
	d.fire.MinLife, d.fire.MaxLife = 0.6, 1.4
	d.fire.MinSpeed, d.fire.MaxSpeed = 1, 2.5
	d.fire.MinSize, d.fire.MaxSize = 0.1, 0.3
	d.fire.StartColor = core.Color{R: 1, G: 0.7, B: 0.2, A: 1}
	d.fire.EndColor = core.Color{R: 0.6, G: 0.1, B: 0, A: 0}
	d.fire.BlendMode = scene.BlendAdditive
	d.fire.Start()

	trees := scene.NewSpriteManager("markers", 8, 64, d.scene)
	for i := 0; i < 4; i++ {
		sp := trees.NewSprite("marker")
		sp.Position = math.NewVec3(float32(i*2-3), 2, 3)
		sp.Width, sp.Height = 0.5, 0.5
		sp.Color = core.Color{R: 0.4, G: 1, B: 0.6, A: 0.8}
		sp.IsPickable = true
	}
}

// registerKeys installs the scene-level keyboard actions.
func (d *demo) registerKeys() {
	am := action.NewManager(d.logger)
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyF, func(scene.ActionEvent) {
		d.scene.ForceWireframe = !d.scene.ForceWireframe
	}))
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyB, func(scene.ActionEvent) {
		d.scene.ForceShowBoundingBoxes = !d.scene.ForceShowBoundingBoxes
	}))
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyO, func(scene.ActionEvent) {
		if d.fire.IsStarted() {
			d.fire.Stop()
		} else {
			d.fire.Start()
		}
	}))
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyR, func(scene.ActionEvent) {
		if !d.history.Undo() {
			d.logger.Info("nothing to undo")
		}
	}))
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyDelete, func(scene.ActionEvent) {
		for _, cmd := range d.selection.DisposeCommands() {
			cmd.Execute()
		}
	}))
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyEscape, func(scene.ActionEvent) {
		d.selection.Clear()
	}))

	// arrow keys orbit the camera
	orbit := map[int][2]float32{
		core.KeyLeft:  {-0.1, 0},
		core.KeyRight: {0.1, 0},
		core.KeyUp:    {0, 0.1},
		core.KeyDown:  {0, -0.1},
	}
	for key, delta := range orbit {
		am.Register(action.NewKey(scene.TriggerKeyDown, key, func(scene.ActionEvent) {
			d.camera.Orbit(delta[0], delta[1])
		}))
	}
	d.scene.ActionManager = am

	d.scene.OnPointer.AddWithMask(func(pi *scene.PointerInfo, _ *core.EventState) {
		d.camera.Zoom(-pi.Event.DeltaY * 0.5)
	}, uint32(scene.PointerWheel))
}

func (d *demo) registerDayNightKey(dn *DayNight) {
	am, ok := d.scene.ActionManager.(*action.Manager)
	if !ok {
		return
	}
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyP, func(scene.ActionEvent) {
		dn.Active = !dn.Active
		d.logger.Info("day/night", "running", dn.Active, "time", dn.TimeOfDay())
	}))
}

// registerLayoutKeys saves the layout on F5 and restores it on F9.
func (d *demo) registerLayoutKeys(path string) {
	am, ok := d.scene.ActionManager.(*action.Manager)
	if !ok {
		return
	}
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyF5, func(scene.ActionEvent) {
		if err := sceneio.SaveScene(path, sceneio.Capture(d.scene, "viewer")); err != nil {
			d.logger.Error("layout save failed: " + err.Error())
			return
		}
		d.logger.Info("layout saved", "path", path)
	}))
	am.Register(action.NewKey(scene.TriggerKeyDown, core.KeyF9, func(scene.ActionEvent) {
		file, err := sceneio.LoadScene(path)
		if err != nil {
			d.logger.Error("layout load failed: " + err.Error())
			return
		}
		if err := sceneio.Apply(file, d.scene); err != nil {
			d.logger.Error("layout apply failed: " + err.Error())
		}
	}))
}

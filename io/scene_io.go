package io

import (
	"encoding/json"
	"fmt"
	"os"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/scene"
)

// FormatVersion is written to every saved layout.
const FormatVersion = "1.0"

// SceneFile is the top-level structure of the .gorscene layout format.
type SceneFile struct {
	Version  string        `json:"version"`
	Name     string        `json:"name"`
	Camera   CameraData    `json:"camera"`
	Lights   []LightData   `json:"lights"`
	Objects  []ObjectData  `json:"objects"`
	Settings SceneSettings `json:"settings"`
}

type CameraData struct {
	Position [3]float32 `json:"position"`
	Target   [3]float32 `json:"target"`
	FOV      float32    `json:"fov"`
	Near     float32    `json:"near"`
	Far      float32    `json:"far"`
}

type LightData struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"` // "directional", "point", "spot"
	Position  [3]float32 `json:"position"`
	Direction [3]float32 `json:"direction"`
	Color     [4]float32 `json:"color"`
	Intensity float32    `json:"intensity"`
	Range     float32    `json:"range,omitempty"`
	SpotAngle float32    `json:"spot_angle,omitempty"`
	Enabled   bool       `json:"enabled"`
}

// ObjectData is one mesh entity. Objects are matched to existing meshes by
// ID; unmatched objects are created from MeshType.
type ObjectData struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Position [3]float32    `json:"position"`
	Rotation [4]float32    `json:"rotation"` // quaternion (x,y,z,w)
	Scale    [3]float32    `json:"scale"`
	Visible  bool          `json:"visible"`
	Pickable bool          `json:"pickable"`
	MeshType string        `json:"mesh_type,omitempty"` // "box", "sphere", "torus", "plane", "ground", "obj"
	Size     float32       `json:"size,omitempty"`
	MeshFile string        `json:"mesh_file,omitempty"` // for "obj"
	Material *MaterialData `json:"material,omitempty"`
}

type MaterialData struct {
	Name     string     `json:"name"`
	Albedo   [4]float32 `json:"albedo"`
	Emissive [4]float32 `json:"emissive"`
	Alpha    float32    `json:"alpha"`
	Unlit    bool       `json:"unlit,omitempty"`
}

type SceneSettings struct {
	ClearColor [4]float32 `json:"clear_color"`
	AutoClear  bool       `json:"auto_clear"`
}

// SaveScene serializes a layout to a .gorscene JSON file.
func SaveScene(path string, file *SceneFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScene deserializes a .gorscene JSON file.
func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	file := &SceneFile{}
	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	return file, nil
}

// NewDefaultSceneFile returns a layout with a camera and one sun.
func NewDefaultSceneFile(name string) *SceneFile {
	return &SceneFile{
		Version: FormatVersion,
		Name:    name,
		Camera: CameraData{
			Position: [3]float32{0, 2, 5},
			FOV:      0.8,
			Near:     0.1,
			Far:      1000,
		},
		Lights: []LightData{{
			Name:      "sun",
			Type:      "directional",
			Direction: [3]float32{0.5, -1, -0.5},
			Color:     [4]float32{1, 1, 1, 1},
			Intensity: 0.8,
			Enabled:   true,
		}},
		Settings: SceneSettings{
			ClearColor: ColorToArray(core.ColorScene),
			AutoClear:  true,
		},
	}
}

// Capture snapshots the camera, lights, root meshes and clear settings of s.
func Capture(s *scene.Scene, name string) *SceneFile {
	file := &SceneFile{
		Version: FormatVersion,
		Name:    name,
		Settings: SceneSettings{
			ClearColor: ColorToArray(s.ClearColor),
			AutoClear:  s.AutoClear,
		},
	}
	if cam := s.ActiveCamera; cam != nil {
		file.Camera = CameraData{
			Position: Vec3ToArray(cam.Position),
			Target:   Vec3ToArray(cam.Target),
			FOV:      cam.FOV,
			Near:     cam.MinZ,
			Far:      cam.MaxZ,
		}
	}
	for _, l := range s.Lights() {
		file.Lights = append(file.Lights, LightData{
			Name:      l.Name,
			Type:      lightTypeName(l.Type),
			Position:  Vec3ToArray(l.Position),
			Direction: Vec3ToArray(l.Direction),
			Color:     ColorToArray(l.Color),
			Intensity: l.Intensity,
			Range:     l.Range,
			SpotAngle: l.SpotAngle,
			Enabled:   l.Enabled,
		})
	}
	for _, m := range s.Meshes() {
		if m.Parent != nil || m.IsDisposed() {
			continue
		}
		obj := ObjectData{
			ID:       m.ID,
			Name:     m.Name,
			Position: Vec3ToArray(m.Transform.Position),
			Rotation: QuatToArray(m.Transform.Rotation),
			Scale:    Vec3ToArray(m.Transform.Scale),
			Visible:  m.IsVisible,
			Pickable: m.IsPickable,
		}
		if mat, ok := m.Material.(*scene.StandardMaterial); ok {
			obj.Material = &MaterialData{
				Name:     mat.Name,
				Albedo:   ColorToArray(mat.Albedo),
				Emissive: ColorToArray(mat.EmissiveColor),
				Alpha:    mat.Alpha,
				Unlit:    mat.Unlit,
			}
		}
		file.Objects = append(file.Objects, obj)
	}
	return file
}

// Apply restores file into s. Existing meshes and lights are updated in
// place; missing ones are created. Objects that match nothing and carry no
// known MeshType are skipped with a warning.
func Apply(file *SceneFile, s *scene.Scene) error {
	logger := s.Logger()

	cam := s.ActiveCamera
	if cam == nil {
		cam = scene.NewCamera("camera", math.Vec3Zero, s)
	}
	cam.Position = ArrayToVec3(file.Camera.Position)
	cam.Target = ArrayToVec3(file.Camera.Target)
	if file.Camera.FOV > 0 {
		cam.FOV = file.Camera.FOV
	}
	if file.Camera.Near > 0 && file.Camera.Far > file.Camera.Near {
		cam.MinZ, cam.MaxZ = file.Camera.Near, file.Camera.Far
	}

	for _, ld := range file.Lights {
		applyLight(ld, s)
	}

	for _, obj := range file.Objects {
		m := s.GetMeshByID(obj.ID)
		if m == nil {
			var err error
			m, err = createObject(obj, s)
			if err != nil {
				return fmt.Errorf("object %q: %w", obj.ID, err)
			}
			if m == nil {
				logger.Warn("layout object skipped", "id", obj.ID, "mesh_type", obj.MeshType)
				continue
			}
		}
		m.SetPosition(ArrayToVec3(obj.Position))
		m.SetRotation(ArrayToQuat(obj.Rotation))
		m.SetScale(ArrayToVec3(obj.Scale))
		m.IsVisible = obj.Visible
		m.IsPickable = obj.Pickable
		if obj.Material != nil {
			mat, ok := m.Material.(*scene.StandardMaterial)
			if !ok {
				mat = scene.NewStandardMaterial(obj.Material.Name)
				m.Material = mat
			}
			mat.Albedo = ArrayToColor(obj.Material.Albedo)
			mat.EmissiveColor = ArrayToColor(obj.Material.Emissive)
			mat.Alpha = obj.Material.Alpha
			mat.Unlit = obj.Material.Unlit
		}
	}

	s.ClearColor = ArrayToColor(file.Settings.ClearColor)
	s.AutoClear = file.Settings.AutoClear
	logger.Debug("layout applied", "name", file.Name, "objects", len(file.Objects))
	return nil
}

func createObject(obj ObjectData, s *scene.Scene) (*scene.Mesh, error) {
	size := obj.Size
	if size <= 0 {
		size = 1
	}
	var m *scene.Mesh
	switch obj.MeshType {
	case "box":
		m = scene.NewBox(obj.Name, size, s)
	case "sphere":
		m = scene.NewSphere(obj.Name, size, 24, s)
	case "torus":
		m = scene.NewTorus(obj.Name, size, size/4, 32, s)
	case "plane":
		m = scene.NewPlane(obj.Name, size, s)
	case "ground":
		m = scene.NewTiledGround(obj.Name, size, 8, s)
	case "obj":
		meshes, err := ImportOBJ(obj.MeshFile, s)
		if err != nil {
			return nil, err
		}
		// the first object carries the layout transform, the rest follow it
		m = meshes[0]
		for _, child := range meshes[1:] {
			m.AddChild(&child.Node)
		}
	default:
		return nil, nil
	}
	m.ID = obj.ID
	return m, nil
}

func applyLight(ld LightData, s *scene.Scene) {
	var l *scene.Light
	for _, existing := range s.Lights() {
		if existing.Name == ld.Name {
			l = existing
			break
		}
	}
	if l == nil {
		l = scene.NewDirectionalLight(ld.Name, ArrayToVec3(ld.Direction), s)
	}
	l.Type = lightType(ld.Type)
	l.Position = ArrayToVec3(ld.Position)
	l.Direction = ArrayToVec3(ld.Direction).Normalize()
	l.Color = ArrayToColor(ld.Color)
	l.Intensity = ld.Intensity
	l.Range = ld.Range
	l.SpotAngle = ld.SpotAngle
	l.Enabled = ld.Enabled
}

func lightTypeName(t int) string {
	switch t {
	case scene.LightTypePoint:
		return "point"
	case scene.LightTypeSpot:
		return "spot"
	}
	return "directional"
}

func lightType(name string) int {
	switch name {
	case "point":
		return scene.LightTypePoint
	case "spot":
		return scene.LightTypeSpot
	}
	return scene.LightTypeDirectional
}

func Vec3ToArray(v math.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func ArrayToVec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func ColorToArray(c core.Color) [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

func ArrayToColor(a [4]float32) core.Color {
	return core.Color{R: a[0], G: a[1], B: a[2], A: a[3]}
}

func QuatToArray(q math.Quaternion) [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

func ArrayToQuat(a [4]float32) math.Quaternion {
	return math.Quaternion{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}

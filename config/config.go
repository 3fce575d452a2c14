// Package config loads scene and viewer options from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"scene-engine/core"
	"scene-engine/scene"
)

// ErrUnknownFormat is returned for files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("config: unknown file format")

type Features struct {
	Shadows            bool `yaml:"shadows" toml:"shadows"`
	Particles          bool `yaml:"particles" toml:"particles"`
	Sprites            bool `yaml:"sprites" toml:"sprites"`
	RenderTargets      bool `yaml:"render_targets" toml:"render_targets"`
	ProceduralTextures bool `yaml:"procedural_textures" toml:"procedural_textures"`
	LensFlares         bool `yaml:"lens_flares" toml:"lens_flares"`
	Skeletons          bool `yaml:"skeletons" toml:"skeletons"`
	Audio              bool `yaml:"audio" toml:"audio"`
	Animations         bool `yaml:"animations" toml:"animations"`
	Physics            bool `yaml:"physics" toml:"physics"`
	PostProcesses      bool `yaml:"post_processes" toml:"post_processes"`
}

// Octree controls the selection index built over the scene meshes.
type Octree struct {
	Enabled     bool `yaml:"enabled" toml:"enabled"`
	MaxCapacity int  `yaml:"max_capacity" toml:"max_capacity"`
	MaxDepth    int  `yaml:"max_depth" toml:"max_depth"`
}

type Pointer struct {
	// DragThreshold is in pixels.
	DragThreshold  float32 `yaml:"drag_threshold" toml:"drag_threshold"`
	// LongPressDelay is in milliseconds.
	LongPressDelay int     `yaml:"long_press_delay" toml:"long_press_delay"`

	ConstantlyUpdateMeshUnderPointer bool   `yaml:"constantly_update_mesh_under_pointer" toml:"constantly_update_mesh_under_pointer"`
	HoverCursor                      string `yaml:"hover_cursor" toml:"hover_cursor"`
}

type Window struct {
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	Title  string `yaml:"title" toml:"title"`
	VSync  bool   `yaml:"vsync" toml:"vsync"`
}

// Options is the on-disk configuration of a scene and its viewer.
type Options struct {
	Features   Features   `yaml:"features" toml:"features"`
	AutoClear  bool       `yaml:"auto_clear" toml:"auto_clear"`
	ClearColor [4]float32 `yaml:"clear_color" toml:"clear_color"`

	// Delta time bounds in milliseconds.
	MinDeltaTime       int     `yaml:"min_delta_time" toml:"min_delta_time"`
	MaxDeltaTime       int     `yaml:"max_delta_time" toml:"max_delta_time"`
	AnimationTimeScale float32 `yaml:"animation_time_scale" toml:"animation_time_scale"`

	Octree  Octree  `yaml:"octree" toml:"octree"`
	Pointer Pointer `yaml:"pointer" toml:"pointer"`
	Window  Window  `yaml:"window" toml:"window"`
}

// Default mirrors the defaults of a freshly created scene.
func Default() Options {
	c := core.ColorScene
	return Options{
		Features: Features{
			Shadows:            true,
			Particles:          true,
			Sprites:            true,
			RenderTargets:      true,
			ProceduralTextures: true,
			LensFlares:         true,
			Skeletons:          true,
			Audio:              true,
			Animations:         true,
			Physics:            true,
			PostProcesses:      true,
		},
		AutoClear:          true,
		ClearColor:         [4]float32{c.R, c.G, c.B, c.A},
		MinDeltaTime:       int(scene.DefaultMinDeltaTime / time.Millisecond),
		MaxDeltaTime:       int(scene.DefaultMaxDeltaTime / time.Millisecond),
		AnimationTimeScale: 1,
		Octree:             Octree{MaxCapacity: 64, MaxDepth: 2},
		Pointer: Pointer{
			DragThreshold:  scene.DefaultDragMovementThreshold,
			LongPressDelay: int(scene.DefaultLongPressDelay / time.Millisecond),
			HoverCursor:    scene.DefaultHoverCursor,
		},
		Window: Window{Width: 1280, Height: 720, Title: "Scene Viewer", VSync: true},
	}
}

type format int

const (
	formatYAML format = iota
	formatTOML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads path on top of Default, so keys missing from the file keep
// their default value.
func Load(path string) (Options, error) {
	opts := Default()
	f, err := formatOf(path)
	if err != nil {
		return opts, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config: %w", err)
	}
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, &opts)
	case formatTOML:
		err = toml.Unmarshal(data, &opts)
	}
	if err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return opts, nil
}

// Save writes opts to path, creating its directory if needed.
func Save(path string, opts Options) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	switch f {
	case formatYAML:
		data, err = yaml.Marshal(opts)
	case formatTOML:
		data, err = toml.Marshal(opts)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Apply copies the scene settings into s. Non-positive durations and
// thresholds leave the scene value untouched.
func (o Options) Apply(s *scene.Scene) {
	s.ShadowsEnabled = o.Features.Shadows
	s.ParticlesEnabled = o.Features.Particles
	s.SpritesEnabled = o.Features.Sprites
	s.RenderTargetsEnabled = o.Features.RenderTargets
	s.ProceduralTexturesEnabled = o.Features.ProceduralTextures
	s.LensFlaresEnabled = o.Features.LensFlares
	s.SkeletonsEnabled = o.Features.Skeletons
	s.AudioEnabled = o.Features.Audio
	s.AnimationsEnabled = o.Features.Animations
	s.PhysicsEnabled = o.Features.Physics
	s.PostProcessesEnabled = o.Features.PostProcesses

	s.AutoClear = o.AutoClear
	s.ClearColor = core.Color{R: o.ClearColor[0], G: o.ClearColor[1], B: o.ClearColor[2], A: o.ClearColor[3]}

	if o.MinDeltaTime > 0 {
		s.MinDeltaTime = time.Duration(o.MinDeltaTime) * time.Millisecond
	}
	if o.MaxDeltaTime > 0 {
		s.MaxDeltaTime = time.Duration(o.MaxDeltaTime) * time.Millisecond
	}
	if o.AnimationTimeScale > 0 {
		s.AnimationTimeScale = o.AnimationTimeScale
	}

	if o.Pointer.DragThreshold > 0 {
		s.DragMovementThreshold = o.Pointer.DragThreshold
	}
	if o.Pointer.LongPressDelay > 0 {
		s.LongPressDelay = time.Duration(o.Pointer.LongPressDelay) * time.Millisecond
	}
	s.ConstantlyUpdateMeshUnderPointer = o.Pointer.ConstantlyUpdateMeshUnderPointer
	s.HoverCursor = o.Pointer.HoverCursor

	if o.Octree.Enabled {
		s.CreateOrUpdateSelectionOctree(o.Octree.MaxCapacity, o.Octree.MaxDepth)
	}
}

package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/core"
	"scene-engine/scene"
)

func newScene() *scene.Scene {
	return scene.NewScene(nil, scene.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestDefaultMatchesNewScene(t *testing.T) {
	s := newScene()
	want := newScene()

	Default().Apply(s)

	assert.Equal(t, want.ClearColor, s.ClearColor)
	assert.Equal(t, want.MinDeltaTime, s.MinDeltaTime)
	assert.Equal(t, want.MaxDeltaTime, s.MaxDeltaTime)
	assert.Equal(t, want.DragMovementThreshold, s.DragMovementThreshold)
	assert.Equal(t, want.LongPressDelay, s.LongPressDelay)
	assert.Equal(t, want.HoverCursor, s.HoverCursor)
	assert.True(t, s.ParticlesEnabled)
	assert.True(t, s.AutoClear)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"yaml", "scene.yaml", "features:\n  particles: false\npointer:\n  long_press_delay: 750\nclear_color: [0, 0, 0, 1]\n"},
		{"yml", "scene.yml", "features:\n  particles: false\npointer:\n  long_press_delay: 750\nclear_color: [0, 0, 0, 1]\n"},
		{"toml", "scene.toml", "clear_color = [0.0, 0.0, 0.0, 1.0]\n\n[features]\nparticles = false\n\n[pointer]\nlong_press_delay = 750\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			opts, err := Load(path)
			require.NoError(t, err)
			assert.False(t, opts.Features.Particles)
			assert.Equal(t, 750, opts.Pointer.LongPressDelay)
			assert.Equal(t, [4]float32{0, 0, 0, 1}, opts.ClearColor)

			// untouched keys
			assert.Equal(t, float32(10), opts.Pointer.DragThreshold)
			assert.Equal(t, 64, opts.Octree.MaxCapacity)
			assert.Equal(t, "pointer", opts.Pointer.HoverCursor)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "viewer"+ext)
			opts := Default()
			opts.Window.Title = "round trip"
			opts.Octree.Enabled = true
			opts.AnimationTimeScale = 0.5

			require.NoError(t, Save(path, opts))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, opts, got)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "scene.json"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("features = ["), 0644))
	opts, err := Load(bad)
	assert.Error(t, err)
	assert.Equal(t, Default(), opts)

	assert.ErrorIs(t, Save(filepath.Join(dir, "scene.ini"), Default()), ErrUnknownFormat)
}

func TestApply(t *testing.T) {
	s := newScene()
	scene.NewBox("box", 1, s)

	opts := Default()
	opts.Features.Shadows = false
	opts.AutoClear = false
	opts.ClearColor = [4]float32{1, 0, 0, 1}
	opts.MinDeltaTime = 0
	opts.MaxDeltaTime = 250
	opts.Pointer.DragThreshold = 4
	opts.Pointer.LongPressDelay = 300
	opts.Pointer.HoverCursor = "hand"
	opts.Pointer.ConstantlyUpdateMeshUnderPointer = true
	opts.Octree = Octree{Enabled: true, MaxCapacity: 8, MaxDepth: 1}
	opts.Apply(s)

	assert.False(t, s.ShadowsEnabled)
	assert.False(t, s.AutoClear)
	assert.Equal(t, core.ColorRed, s.ClearColor)
	assert.Equal(t, scene.DefaultMinDeltaTime, s.MinDeltaTime, "zero keeps the scene value")
	assert.Equal(t, 250*time.Millisecond, s.MaxDeltaTime)
	assert.Equal(t, float32(4), s.DragMovementThreshold)
	assert.Equal(t, 300*time.Millisecond, s.LongPressDelay)
	assert.Equal(t, "hand", s.HoverCursor)
	assert.True(t, s.ConstantlyUpdateMeshUnderPointer)

	_, err := s.SelectionOctree()
	assert.NoError(t, err)
}

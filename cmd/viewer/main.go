// Command viewer opens a window on a showcase scene rendered through the
// OpenGL backend. Pointer and keyboard input go through the scene input
// pipeline; -config points at a YAML or TOML file that is re-applied
// whenever it changes.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"scene-engine/config"
	"scene-engine/core"
	"scene-engine/input"
	"scene-engine/internal/opengl"
	sceneio "scene-engine/io"
	"scene-engine/renderer"
	"scene-engine/scene"
)

func main() {
	configPath := flag.String("config", "", "scene options file (.yaml, .yml or .toml)")
	modelPath := flag.String("model", "", "optional glTF or OBJ model to load into the scene")
	layoutPath := flag.String("layout", "viewer.gorscene", "layout file saved with F5 and restored with F9")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *modelPath, *layoutPath, logger); err != nil {
		logger.Error("viewer: " + err.Error())
		os.Exit(1)
	}
}

func loadOptions(path string, logger *slog.Logger) config.Options {
	if path == "" {
		return config.Default()
	}
	opts, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("config not found, writing defaults", "path", path)
		if err := config.Save(path, opts); err != nil {
			logger.Warn("failed to write default config: " + err.Error())
		}
		return opts
	}
	if err != nil {
		logger.Warn("using default options: " + err.Error())
	}
	return opts
}

func loadModel(path string, s *scene.Scene) error {
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		meshes, err := sceneio.ImportOBJ(path, s)
		if err != nil {
			return err
		}
		s.Logger().Info("model loaded", "path", path, "meshes", len(meshes))
		return nil
	}
	result, err := scene.ImportGLTF(path, s)
	if err != nil {
		return err
	}
	s.Logger().Info("model loaded", "path", path, "meshes", len(result.Meshes))
	return nil
}

func run(configPath, modelPath, layoutPath string, logger *slog.Logger) error {
	opts := loadOptions(configPath, logger)

	windowConfig := core.DefaultWindowConfig()
	windowConfig.Width = opts.Window.Width
	windowConfig.Height = opts.Window.Height
	windowConfig.Title = opts.Window.Title
	windowConfig.VSync = opts.Window.VSync

	window, err := core.NewWindow(windowConfig)
	if err != nil {
		return err
	}
	defer window.Destroy()

	engine, err := opengl.NewEngine(window, logger)
	if err != nil {
		return err
	}
	defer engine.Destroy()

	drawer, err := opengl.NewDrawer(logger)
	if err != nil {
		return err
	}
	defer drawer.Destroy()

	clock := core.SystemClock{}
	s := scene.NewScene(engine, scene.Options{Logger: logger, Clock: clock})
	rendering := renderer.NewManager(drawer, logger)
	s.Dispatcher = rendering
	opts.Apply(s)

	world := donburi.NewWorld()
	demo := buildDemo(s, world, logger)
	dayNight := NewDayNight(s, demo.sun, drawer)
	s.AddAnimatable(dayNight)
	demo.registerDayNightKey(dayNight)
	demo.registerLayoutKeys(layoutPath)

	s.OnMeshRemoved.Add(func(m *scene.Mesh, _ *core.EventState) {
		if m.Geometry != nil {
			drawer.ReleaseGeometry(m.Geometry)
		}
	})

	if modelPath != "" {
		if err := loadModel(modelPath, s); err != nil {
			logger.Error("failed to load model: " + err.Error())
		}
	}

	timers := core.NewTimerQueue(clock)
	pipeline := input.NewPipeline(s, input.Options{Scheduler: timers, Logger: logger})
	pipeline.Attach(window)
	defer s.Dispose()

	var reloads <-chan config.Options
	if configPath != "" {
		watcher, err := watchConfig(configPath, logger)
		if err != nil {
			logger.Warn("config hot reload disabled: " + err.Error())
		} else {
			defer watcher.Close()
			reloads = watcher.Updates
		}
	}

	var status statusLine
	frames := 0
	lastTitle := time.Now()

	for !window.ShouldClose() {
		window.PollEvents()
		timers.Run()

		select {
		case next := <-reloads:
			next.Apply(s)
			logger.Info("config reloaded", "path", configPath)
		default:
		}

		if err := s.Render(); err != nil {
			logger.Error("render failed: " + err.Error())
		}
		events.ProcessAllEvents(world)
		window.SwapBuffers()

		frames++
		if now := time.Now(); now.Sub(lastTitle) >= time.Second {
			stats := rendering.Stats()
			status.Clear()
			status.Add("%s", opts.Window.Title)
			status.Add("FPS %d", frames)
			status.Add("meshes %d/%d", s.ActiveMeshCount(), len(s.Meshes()))
			status.Add("draws %d in %d groups", stats.SubMeshes, stats.Groups)
			status.Add("particles %.0f", s.ActiveParticlesCounter().Last())
			status.Add("%s", dayNight.TimeOfDay())
			if over := pipeline.PointerOverMesh(); over != nil {
				status.Add("over %s", over.Name)
			}
			if active := demo.selection.Active(); active != nil {
				status.Add("selected %d (%s)", demo.selection.Len(), active.Name)
			}
			window.SetTitle(status.String())
			frames = 0
			lastTitle = now
		}
	}
	return nil
}

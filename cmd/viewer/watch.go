package main

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"scene-engine/config"
)

// configWatcher reloads a config file whenever it is written. Reloaded
// options are delivered on Updates and must be applied on the render
// goroutine.
type configWatcher struct {
	Updates <-chan config.Options

	watcher *fsnotify.Watcher
	path    string
	updates chan config.Options
	done    chan struct{}
	logger  *slog.Logger
}

func watchConfig(path string, logger *slog.Logger) (*configWatcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace the file, which drops a watch on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	cw := &configWatcher{
		watcher: w,
		path:    path,
		updates: make(chan config.Options, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	cw.Updates = cw.updates
	go cw.run()
	return cw, nil
}

func (cw *configWatcher) run() {
	for {
		select {
		case <-cw.done:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != cw.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			opts, err := config.Load(cw.path)
			if err != nil {
				cw.logger.Error("config reload failed: " + err.Error())
				continue
			}
			cw.publish(opts)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("config watcher: " + err.Error())
		}
	}
}

// publish keeps only the newest pending options.
func (cw *configWatcher) publish(opts config.Options) {
	select {
	case <-cw.updates:
	default:
	}
	cw.updates <- opts
}

func (cw *configWatcher) Close() error {
	close(cw.done)
	return cw.watcher.Close()
}

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is how long the watcher waits after the last file
// event before re-loading. Editors and config management tools write files in
// bursts; the quiet period collapses a burst into one reload.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher re-loads a configuration file whenever it changes and delivers the
// resulting snapshots on a channel. It lets long-lived embedders pick up
// rotated credentials or tuning changes without a restart.
type Watcher struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	fsw     *fsnotify.Watcher
	updates chan *Config

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Watch starts watching path for changes. Each successful re-load (with
// environment overrides applied, matching LoadWithEnvOverrides) is delivered
// on Updates; a change that fails to load or validate is logged and dropped,
// leaving the previous snapshot in effect. A nil logger means slog.Default().
func Watch(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory rather than the file: editors and tools that
	// write-then-rename would leave a file watch pointing at a dead inode.
	path = filepath.Clean(path)
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:     path,
		logger:   logger,
		debounce: DefaultDebounceInterval,
		fsw:      fsw,
		updates:  make(chan *Config, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.run()

	logger.Debug("configuration watcher started", "path", path)
	return w, nil
}

// Updates returns the channel snapshots are delivered on. It is closed when
// the watcher stops.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Close stops the watcher and closes the updates channel.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fsw.Close()
		<-w.doneCh
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	defer close(w.updates)

	var pending *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("configuration file event", "path", event.Name, "op", event.Op.String())
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("configuration watcher error", "error", err)

		case <-fire:
			cfg, err := LoadWithEnvOverrides(w.path)
			if err != nil {
				w.logger.Error("configuration reload failed", "path", w.path, "error", err)
				continue
			}
			w.logger.Info("configuration reloaded", "path", w.path)
			select {
			case w.updates <- cfg:
			case <-w.stopCh:
				return
			}
		}
	}
}

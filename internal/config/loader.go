package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay collapses the burst of events editors produce on save.
const reloadDelay = 100 * time.Millisecond

// Loader holds the current configuration and reloads it when the file changes.
type Loader struct {
	path string

	mu       sync.RWMutex
	cfg      *Config
	onChange []func(*Config)

	watcher *fsnotify.Watcher
	errs    chan error
}

// NewLoader creates a loader for path.
func NewLoader(path string) *Loader {
	return &Loader{path: path, errs: make(chan error, 1)}
}

// Load reads the configuration and makes it current.
func (l *Loader) Load() (*Config, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()

	return cfg, nil
}

// Config returns the current configuration, or nil before Load.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.cfg
}

// OnChange registers fn to run with every successfully reloaded configuration.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.onChange = append(l.onChange, fn)
}

// Errors reports reload failures. A failed reload keeps the previous configuration.
func (l *Loader) Errors() <-chan error {
	return l.errs
}

// Watch reloads the file whenever it is written until ctx is done. The
// directory is watched so that editors replacing the file are noticed.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		_ = watcher.Close()

		return fmt.Errorf("watch %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.watcher = watcher
	l.mu.Unlock()

	go l.loop(ctx, watcher)

	return nil
}

func (l *Loader) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	var timer *time.Timer

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(l.path) || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(reloadDelay, l.reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			l.report(err)
		}
	}
}

func (l *Loader) reload() {
	cfg, err := Load(l.path)
	if err != nil {
		l.report(fmt.Errorf("reload config: %w", err))

		return
	}

	l.mu.Lock()
	l.cfg = cfg
	callbacks := slices.Clone(l.onChange)
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

func (l *Loader) report(err error) {
	select {
	case l.errs <- err:
	default:
	}
}

// Close stops watching.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher == nil {
		return nil
	}

	err := l.watcher.Close()
	l.watcher = nil

	return err
}

package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/dshills/ghostwriter/internal/logging"
)

// debounceDelay coalesces the bursts of write events editors produce when
// saving a file.
const debounceDelay = 100 * time.Millisecond

// Handler receives the freshly loaded config after a change.
type Handler func(Config)

// Watcher reloads the config file when it changes on disk and notifies
// subscribers with the parsed result. Unparseable edits are logged and
// skipped; the previous config stays in effect.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher
	log  *log.Logger

	mu       sync.Mutex
	handlers []Handler
	timer    *time.Timer
	closed   bool

	done chan struct{}
}

// NewWatcher starts watching the config file's directory. Watching the
// directory rather than the file survives the rename-and-replace save
// strategy most editors use.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path: path,
		fsw:  fsw,
		log:  logging.New("config"),
		done: make(chan struct{}),
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	go w.loop()
	return w, nil
}

// OnChange registers a handler for reloaded configs.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Close stops watching. Idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "error", err)
		}
	}
}

// scheduleReload debounces reloads so one save triggers one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed, keeping previous", "error", err)
		return
	}
	w.log.Info("config reloaded", "path", w.path)

	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		h(cfg)
	}
}

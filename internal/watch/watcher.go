package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dirmerge/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Event struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Watcher watches directory trees recursively, following directories
// created after it started.
type Watcher struct {
	fw      *fsnotify.Watcher
	skip    func(path string) bool
	eventCh chan Event
	doneCh  chan struct{}
}

// New creates a watcher. skip, when set, filters out paths such as the
// temporary files written while merging.
func New(bufferSize int, skip func(path string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		fw:      fw,
		skip:    skip,
		eventCh: make(chan Event, bufferSize),
		doneCh:  make(chan struct{}),
	}, nil
}

// Add starts watching dir and every directory below it.
func (w *Watcher) Add(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if _, err := os.Stat(absDir); err != nil {
		return fmt.Errorf("directory not found: %w", err)
	}

	if err := w.addRecursive(absDir); err != nil {
		return err
	}

	logger.Log.Info("watching",
		zap.String("dir", absDir))
	return nil
}

// Start begins delivering events.
func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if err := w.fw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			logger.Log.Debug("watching directory",
				zap.String("path", path))
		}

		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.eventCh)

	for {
		select {
		case <-w.doneCh:
			logger.Log.Info("watcher stopping")
			return

		case fsEvent, ok := <-w.fw.Events:
			if !ok {
				return
			}

			if !fsEvent.Op.Has(fsnotify.Create) && !fsEvent.Op.Has(fsnotify.Write) &&
				!fsEvent.Op.Has(fsnotify.Remove) && !fsEvent.Op.Has(fsnotify.Rename) {
				continue
			}
			if w.skip != nil && w.skip(fsEvent.Name) {
				continue
			}

			if fsEvent.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(fsEvent.Name); err != nil {
						logger.Log.Warn("failed to watch new directory",
							zap.String("path", fsEvent.Name),
							zap.Error(err))
					}
				}
			}

			event := Event{
				Path:      fsEvent.Name,
				Op:        fsEvent.Op,
				Timestamp: time.Now(),
			}

			select {
			case w.eventCh <- event:
			default:
				logger.Log.Warn("event channel is full, dropping event",
					zap.String("path", fsEvent.Name))
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			logger.Log.Error("watcher error",
				zap.Error(err))
		}
	}
}

func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

func (w *Watcher) Stop() {
	close(w.doneCh)
	_ = w.fw.Close()
}

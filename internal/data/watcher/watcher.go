// Package watcher notifies the interactive surface when the timeline file
// changes on disk.
package watcher

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keepsake-labs/chronoline/internal/util"
)

// debounceWindow collapses editor write bursts into one reload
const debounceWindow = 200 * time.Millisecond

// FileWatcher watches a single timeline file and emits a debounced signal
// per change burst.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	target  string
	events  chan struct{}
	stop    chan struct{}
}

// New creates a watcher for the given file. The parent directory is
// watched so replace-by-rename saves are still observed.
func New(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		target:  abs,
		events:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	go fw.processEvents()
	return fw, nil
}

// Events returns the change notification channel
func (fw *FileWatcher) Events() <-chan struct{} {
	return fw.events
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	close(fw.stop)
	return fw.watcher.Close()
}

func (fw *FileWatcher) processEvents() {
	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-fw.stop:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.matches(event) {
				continue
			}
			util.LogDebugf("Timeline file changed: %s (%s)", event.Name, event.Op)
			if debounce == nil {
				debounce = time.NewTimer(debounceWindow)
				fire = debounce.C
			} else {
				debounce.Reset(debounceWindow)
			}

		case <-fire:
			debounce = nil
			fire = nil
			select {
			case fw.events <- struct{}{}:
			default:
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogWarnf("File watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) matches(event fsnotify.Event) bool {
	if event.Name != fw.target {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

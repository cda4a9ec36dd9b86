package state

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultWatchDebounce coalesces the write+rename pair produced by one save.
const DefaultWatchDebounce = 100 * time.Millisecond

// Watch reports changes to the state file made by this or any other process.
// The returned channel receives one value per burst of writes and is closed
// when ctx is cancelled. The parent directory is watched because saves
// replace the file by rename.
func (s *Store) Watch(ctx context.Context, debounce time.Duration, logger *logrus.Entry) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	changes := make(chan struct{}, 1)
	target := filepath.Base(s.path)

	var (
		mu      sync.Mutex
		timer   *time.Timer
		stopped bool
	)
	notify := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		select {
		case changes <- struct{}{}:
		default:
			// A change is already pending for the consumer
		}
	}

	go func() {
		defer close(changes)
		defer watcher.Close()
		defer func() {
			mu.Lock()
			stopped = true
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if logger != nil {
					logger.Debugf("state file event: %s op=%v", event.Name, event.Op)
				}

				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, notify)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if logger != nil {
					logger.WithError(err).Warn("State watcher error")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes, nil
}

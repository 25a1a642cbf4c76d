package acl

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// FileWatcher polls an ACL file for changes and triggers Manager.Reload,
// unchanged in idiom from the teacher's acl.FileWatcher: a ticking poll
// loop plus a debounce timer so a multi-write save doesn't trigger one
// reload per write.
type FileWatcher struct {
	filePath     string
	manager      *Manager
	logger       *slog.Logger
	pollInterval time.Duration
	debounce     time.Duration
	lastModTime  time.Time
	lastSize     int64
	stopCh       chan struct{}
	stoppedCh    chan struct{}
	mu           sync.Mutex
	running      bool
}

// NewFileWatcher constructs a FileWatcher for filePath. Zero pollInterval/
// debounce fall back to the teacher's 100ms/200ms defaults.
func NewFileWatcher(filePath string, manager *Manager, pollInterval, debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	if pollInterval == 0 {
		pollInterval = 100 * time.Millisecond
	}
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		filePath:     filePath,
		manager:      manager,
		logger:       logger,
		pollInterval: pollInterval,
		debounce:     debounce,
		lastModTime:  info.ModTime(),
		lastSize:     info.Size(),
		stopCh:       make(chan struct{}),
		stoppedCh:    make(chan struct{}),
	}, nil
}

// Start begins polling in a background goroutine.
func (w *FileWatcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()
	go w.watchLoop()
}

// Stop halts polling and waits for the goroutine to exit.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *FileWatcher) watchLoop() {
	defer close(w.stoppedCh)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var pendingReload bool
	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		case <-ticker.C:
			changed, err := w.checkFileChanged()
			if err != nil {
				w.logger.Error("acl watch: stat failed", "error", err)
				continue
			}
			if changed {
				pendingReload = true
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.NewTimer(w.debounce)
				debounceCh = debounceTimer.C
			}
		case <-debounceCh:
			if pendingReload {
				if err := w.manager.Reload(); err != nil {
					w.logger.Error("acl watch: reload failed", "error", err)
				}
				pendingReload = false
			}
			debounceTimer = nil
			debounceCh = nil
		}
	}
}

func (w *FileWatcher) checkFileChanged() (bool, error) {
	info, err := os.Stat(w.filePath)
	if err != nil {
		return false, err
	}
	if !info.ModTime().Equal(w.lastModTime) || info.Size() != w.lastSize {
		w.lastModTime = info.ModTime()
		w.lastSize = info.Size()
		return true, nil
	}
	return false, nil
}

// IsRunning reports whether the watch loop is active.
func (w *FileWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

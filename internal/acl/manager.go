package acl

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/schema"
)

// Manager owns the live Config/Evaluator pair and reloads it from a YAML
// file on demand, per the teacher's acl.Manager, trimmed of the teacher's
// Raft replication plumbing (replication/CDC is out of scope here) and
// rule-by-index CRUD API (no administrative wire surface exists in this
// core; rules are edited in the YAML file and picked up by Reload).
type Manager struct {
	mu        sync.RWMutex
	evaluator *Evaluator
	filePath  string
	logger    *slog.Logger
	registry  *schema.Registry

	reloadCount atomic.Uint64
	lastReload  time.Time
	lastError   error
}

// NewManager loads filePath (if non-empty) or starts from an empty,
// default-deny Config, per the teacher's NewManager.
func NewManager(filePath string, registry *schema.Registry, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{filePath: filePath, logger: logger, registry: registry, lastReload: time.Now()}

	config := NewConfig()
	if filePath != "" {
		loaded, err := LoadFile(filePath, registry)
		if err != nil {
			return nil, errs.Wrap(errs.KindOperationsError, "loading ACL file", err)
		}
		config = loaded
	}
	m.evaluator = NewEvaluator(config, dn.Comparator(registry))
	m.logger.Info("acl loaded", "file", filePath, "rules", len(config.Rules))
	return m, nil
}

// Reload re-reads the ACL file and atomically swaps the evaluator, per
// the teacher's Manager.Reload; a load or validation failure leaves the
// previous Config in effect.
func (m *Manager) Reload() error {
	if m.filePath == "" {
		return errs.New(errs.KindOperationsError, "no ACL file configured")
	}
	config, err := LoadFile(m.filePath, m.registry)
	if err != nil {
		m.mu.Lock()
		m.lastError = err
		m.mu.Unlock()
		m.logger.Error("acl reload failed", "error", err)
		return err
	}

	m.mu.Lock()
	m.evaluator = NewEvaluator(config, dn.Comparator(m.registry))
	m.lastReload = time.Now()
	m.lastError = nil
	m.mu.Unlock()
	m.reloadCount.Add(1)
	m.logger.Info("acl reloaded", "rules", len(config.Rules))
	return nil
}

// Evaluator returns the current Evaluator, safe for concurrent use while
// Reload may be running on another goroutine.
func (m *Manager) Evaluator() *Evaluator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.evaluator
}

// Watch starts a FileWatcher polling the manager's file for changes,
// returning nil if the manager has no file configured.
func (m *Manager) Watch(pollInterval, debounce time.Duration) (*FileWatcher, error) {
	if m.filePath == "" {
		return nil, nil
	}
	return NewFileWatcher(m.filePath, m, pollInterval, debounce, m.logger)
}

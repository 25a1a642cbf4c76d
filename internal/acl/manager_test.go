package acl

import (
	"os"
	"testing"
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/schema"
)

func TestNewManagerLoadsFile(t *testing.T) {
	path := writeACLFile(t, `
version: 1
defaultPolicy: deny
rules:
  - target: "*"
    subject: "cn=admin,dc=example,dc=com"
    rights: [all]
`)
	registry := schema.Bootstrap()
	mgr, err := NewManager(path, registry, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if len(mgr.Evaluator().Config().Rules) != 1 {
		t.Fatalf("expected 1 rule loaded")
	}
}

func TestNewManagerWithoutFileStartsEmpty(t *testing.T) {
	registry := schema.Bootstrap()
	mgr, err := NewManager("", registry, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if len(mgr.Evaluator().Config().Rules) != 0 {
		t.Error("expected no rules without a configured file")
	}
	ctx := &AccessContext{Principal: dn.DN{}, Target: dn.MustParse("dc=example,dc=com"), Operation: Read}
	if mgr.Evaluator().CheckAccess(ctx) {
		t.Error("expected default-deny with no rules")
	}
}

func TestManagerReloadSwapsEvaluator(t *testing.T) {
	path := writeACLFile(t, `
version: 1
rules:
  - target: "*"
    subject: anonymous
    rights: [read]
`)
	registry := schema.Bootstrap()
	mgr, err := NewManager(path, registry, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	before := mgr.Evaluator()

	if err := os.WriteFile(path, []byte(`
version: 1
defaultPolicy: allow
rules: []
`), 0o600); err != nil {
		t.Fatalf("rewriting fixture: %v", err)
	}
	if err := mgr.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	after := mgr.Evaluator()
	if before == after {
		t.Error("expected Reload to install a new Evaluator")
	}
	if !after.Config().DefaultAllow {
		t.Error("expected the reloaded Config to default-allow")
	}
}

func TestManagerReloadWithoutFileErrors(t *testing.T) {
	registry := schema.Bootstrap()
	mgr, err := NewManager("", registry, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.Reload(); err == nil {
		t.Error("expected Reload without a configured file to error")
	}
}

func TestManagerReloadKeepsPreviousConfigOnError(t *testing.T) {
	path := writeACLFile(t, `
version: 1
rules:
  - target: "*"
    subject: anonymous
    rights: [read]
`)
	registry := schema.Bootstrap()
	mgr, err := NewManager(path, registry, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	before := mgr.Evaluator()

	if err := os.WriteFile(path, []byte("not: [valid"), 0o600); err != nil {
		t.Fatalf("corrupting fixture: %v", err)
	}
	if err := mgr.Reload(); err == nil {
		t.Error("expected Reload to fail on invalid YAML")
	}
	if mgr.Evaluator() != before {
		t.Error("expected the previous Evaluator to remain active after a failed reload")
	}
}

func TestManagerWatchWithoutFileReturnsNil(t *testing.T) {
	registry := schema.Bootstrap()
	mgr, err := NewManager("", registry, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	watcher, err := mgr.Watch(10*time.Millisecond, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if watcher != nil {
		t.Error("expected Watch without a configured file to return a nil watcher")
	}
}

func TestManagerWatchReloadsOnChange(t *testing.T) {
	path := writeACLFile(t, `
version: 1
rules: []
`)
	registry := schema.Bootstrap()
	mgr, err := NewManager(path, registry, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	watcher, err := mgr.Watch(5*time.Millisecond, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	watcher.Start()
	defer watcher.Stop()

	time.Sleep(10 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`
version: 1
defaultPolicy: allow
rules: []
`), 0o600); err != nil {
		t.Fatalf("rewriting fixture: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mgr.Evaluator().Config().DefaultAllow {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("expected watcher to pick up the file change within the deadline")
}

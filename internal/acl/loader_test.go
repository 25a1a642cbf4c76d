package acl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/obadir/oba/internal/schema"
)

func writeACLFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acl.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadFileParsesRules(t *testing.T) {
	path := writeACLFile(t, `
version: 1
defaultPolicy: deny
rules:
  - target: "*"
    subject: "cn=admin,dc=example,dc=com"
    rights: [read, write, add, delete, search, compare]
  - target: "ou=users,dc=example,dc=com"
    scope: subtree
    subject: authenticated
    rights: [read, search]
    attributes: [cn, mail]
  - target: "*"
    subject: anonymous
    rights: [read]
    attributes: [userPassword]
    deny: true
`)
	registry := schema.Bootstrap()
	config, err := LoadFile(path, registry)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if config.DefaultAllow {
		t.Error("expected deny default policy")
	}
	if len(config.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(config.Rules))
	}
	if !config.Rules[0].TargetAny {
		t.Error("expected first rule's target to be wildcard")
	}
	if config.Rules[0].Subject != SubjectDN {
		t.Error("expected first rule's subject to be a literal DN")
	}
	if config.Rules[1].Subject != SubjectAuthenticated {
		t.Error("expected second rule's subject to be authenticated")
	}
	if !config.Rules[2].Deny {
		t.Error("expected third rule to be a deny rule")
	}
}

func TestLoadFileRejectsMissingRights(t *testing.T) {
	path := writeACLFile(t, `
version: 1
rules:
  - target: "*"
    subject: anonymous
`)
	registry := schema.Bootstrap()
	if _, err := LoadFile(path, registry); err == nil {
		t.Error("expected an error for a rule with no rights")
	}
}

func TestLoadFileRejectsInvalidDefaultPolicy(t *testing.T) {
	path := writeACLFile(t, `
version: 1
defaultPolicy: maybe
rules: []
`)
	registry := schema.Bootstrap()
	if _, err := LoadFile(path, registry); err == nil {
		t.Error("expected an error for an invalid defaultPolicy")
	}
}

func TestLoadFileMissingFile(t *testing.T) {
	registry := schema.Bootstrap()
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), registry); err == nil {
		t.Error("expected an error for a missing file")
	}
}

package interceptor

import (
	"testing"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/nexus"
	"github.com/obadir/oba/internal/partition"
	"github.com/obadir/oba/internal/schema"
)

func newExceptionFixture(t *testing.T) (*nexus.Nexus, *partition.Partition) {
	t.Helper()
	registry := schema.Bootstrap()
	suffix := dn.MustParse("o=example")
	p := partition.NewPartition(suffix, registry, "replica1", nil)
	nx := nexus.New(registry)
	if err := nx.Mount(suffix, p); err != nil {
		t.Fatalf("mount: %v", err)
	}
	mustAdd(t, p, "o=example", map[string][]string{"objectClass": {"top", "organization"}, "o": {"example"}})
	return nx, p
}

func mustAdd(t *testing.T, p *partition.Partition, dnText string, attrs map[string][]string) {
	t.Helper()
	e := entry.New(dn.MustParse(dnText))
	for name, values := range attrs {
		for _, v := range values {
			e.Add(name, entry.NewTextValue(v))
		}
	}
	if err := p.Add(e); err != nil {
		t.Fatalf("add %s: %v", dnText, err)
	}
}

func TestExceptionStageRejectsAddWithMissingParent(t *testing.T) {
	nx, _ := newExceptionFixture(t)
	stage := NewExceptionStage(nx)

	ctx := &OperationContext{Op: OpAdd, Target: dn.MustParse("cn=bob,ou=users,o=example")}
	err := stage.Handle(ctx, func() error { t.Fatal("did not expect next() to be called"); return nil })
	if !errs.Is(err, errs.KindNoSuchObject) {
		t.Fatalf("expected KindNoSuchObject, got %v", err)
	}
}

func TestExceptionStageAllowsAddUnderExistingParent(t *testing.T) {
	nx, _ := newExceptionFixture(t)
	stage := NewExceptionStage(nx)

	ctx := &OperationContext{Op: OpAdd, Target: dn.MustParse("cn=bob,o=example")}
	called := false
	if err := stage.Handle(ctx, func() error { called = true; return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected next() to be called")
	}
}

func TestExceptionStageRejectsDuplicateAdd(t *testing.T) {
	nx, p := newExceptionFixture(t)
	mustAdd(t, p, "cn=bob,o=example", map[string][]string{"objectClass": {"top", "person"}, "cn": {"bob"}, "sn": {"bobsen"}})
	stage := NewExceptionStage(nx)

	ctx := &OperationContext{Op: OpAdd, Target: dn.MustParse("cn=bob,o=example")}
	err := stage.Handle(ctx, func() error { t.Fatal("did not expect next() to be called"); return nil })
	if !errs.Is(err, errs.KindEntryAlreadyExists) {
		t.Fatalf("expected KindEntryAlreadyExists, got %v", err)
	}
}

func TestExceptionStageRejectsDeleteOfMissingEntry(t *testing.T) {
	nx, _ := newExceptionFixture(t)
	stage := NewExceptionStage(nx)

	ctx := &OperationContext{Op: OpDelete, Target: dn.MustParse("cn=missing,o=example")}
	err := stage.Handle(ctx, func() error { t.Fatal("did not expect next() to be called"); return nil })
	if !errs.Is(err, errs.KindNoSuchObject) {
		t.Fatalf("expected KindNoSuchObject, got %v", err)
	}
}

func TestExceptionStageAllowsDeleteOfExistingEntry(t *testing.T) {
	nx, p := newExceptionFixture(t)
	mustAdd(t, p, "cn=bob,o=example", map[string][]string{"objectClass": {"top", "person"}, "cn": {"bob"}, "sn": {"bobsen"}})
	stage := NewExceptionStage(nx)

	ctx := &OperationContext{Op: OpDelete, Target: dn.MustParse("cn=bob,o=example")}
	called := false
	if err := stage.Handle(ctx, func() error { called = true; return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected next() to be called")
	}
}

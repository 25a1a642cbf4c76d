package acl

import (
	"testing"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/schema"
)

func newTestEvaluator(t *testing.T, config *Config) *Evaluator {
	t.Helper()
	registry := schema.Bootstrap()
	return NewEvaluator(config, dn.Comparator(registry))
}

func TestEvaluatorDefaultDeny(t *testing.T) {
	config := NewConfig()
	eval := newTestEvaluator(t, config)
	ctx := &AccessContext{
		Principal: dn.MustParse("uid=alice,ou=users,dc=example,dc=com"),
		Target:    dn.MustParse("uid=bob,ou=users,dc=example,dc=com"),
		Operation: Read,
	}
	if eval.CheckAccess(ctx) {
		t.Error("expected default-deny with no matching rule")
	}
}

func TestEvaluatorFirstMatchWins(t *testing.T) {
	config := NewConfig()
	config.AddRule(&Rule{TargetAny: true, Subject: SubjectAnonymous, Rights: Read, Deny: true})
	config.AddRule(&Rule{TargetAny: true, Subject: SubjectAny, Rights: Read})
	eval := newTestEvaluator(t, config)

	anonCtx := &AccessContext{Principal: dn.DN{}, Target: dn.MustParse("dc=example,dc=com"), Operation: Read}
	if eval.CheckAccess(anonCtx) {
		t.Error("expected anonymous read to be denied by the first matching rule")
	}

	authCtx := &AccessContext{
		Principal: dn.MustParse("uid=alice,ou=users,dc=example,dc=com"),
		Target:    dn.MustParse("dc=example,dc=com"),
		Operation: Read,
	}
	if !eval.CheckAccess(authCtx) {
		t.Error("expected authenticated read to fall through to the allow-any rule")
	}
}

func TestEvaluatorCheckAttributeAccess(t *testing.T) {
	config := NewConfig()
	config.AddRule(&Rule{
		TargetAny:  true,
		Subject:    SubjectAny,
		Rights:     Read,
		Attributes: []string{"cn", "mail"},
	})
	eval := newTestEvaluator(t, config)
	ctx := &AccessContext{
		Principal: dn.DN{},
		Target:    dn.MustParse("uid=bob,ou=users,dc=example,dc=com"),
		Operation: Read,
	}
	if !eval.CheckAttributeAccess(ctx, "cn") {
		t.Error("expected cn to be readable")
	}
	if eval.CheckAttributeAccess(ctx, "userPassword") {
		t.Error("expected userPassword to fall through to default-deny")
	}
}

func TestEvaluatorFilterAttributeNames(t *testing.T) {
	config := NewConfig()
	config.AddRule(&Rule{TargetAny: true, Subject: SubjectAny, Rights: Read, Attributes: []string{"cn", "mail"}})
	eval := newTestEvaluator(t, config)
	ctx := &AccessContext{Principal: dn.DN{}, Target: dn.MustParse("uid=bob,ou=users,dc=example,dc=com")}

	got := eval.FilterAttributeNames(ctx, []string{"cn", "mail", "userPassword"})
	if len(got) != 2 || got[0] != "cn" || got[1] != "mail" {
		t.Errorf("expected [cn mail], got %v", got)
	}
}

func TestEvaluatorSetConfig(t *testing.T) {
	eval := newTestEvaluator(t, NewConfig())
	replacement := NewConfig()
	replacement.DefaultAllow = true
	eval.SetConfig(replacement)
	if eval.Config() != replacement {
		t.Error("expected SetConfig to replace the active Config")
	}
}

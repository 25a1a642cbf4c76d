package filter

import (
	"testing"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/schema"
)

func aliceEntry() *entry.Entry {
	e := entry.New(dn.MustParse("cn=alice,o=example"))
	e.Add("objectClass", entry.NewTextValue("person"))
	e.Add("cn", entry.NewTextValue("alice"))
	e.Add("sn", entry.NewTextValue("Smith"))
	return e
}

func TestEvaluateEquality(t *testing.T) {
	r := schema.Bootstrap()
	e := aliceEntry()
	f, _ := Parse("(cn=ALICE)")
	if !Evaluate(Normalize(f, r), e, r) {
		t.Fatal("expected case-insensitive equality match")
	}
	f2, _ := Parse("(cn=bob)")
	if Evaluate(Normalize(f2, r), e, r) {
		t.Fatal("expected no match")
	}
}

func TestEvaluateAndOrNot(t *testing.T) {
	r := schema.Bootstrap()
	e := aliceEntry()
	f, _ := Parse("(&(cn=alice)(sn=smith))")
	if !Evaluate(Normalize(f, r), e, r) {
		t.Fatal("expected AND match")
	}
	f2, _ := Parse("(|(cn=nobody)(sn=smith))")
	if !Evaluate(Normalize(f2, r), e, r) {
		t.Fatal("expected OR match")
	}
	f3, _ := Parse("(!(cn=nobody))")
	if !Evaluate(Normalize(f3, r), e, r) {
		t.Fatal("expected NOT match")
	}
}

func TestEvaluateSubstring(t *testing.T) {
	r := schema.Bootstrap()
	e := aliceEntry()
	f, _ := Parse("(sn=Sm*th)")
	if !Evaluate(Normalize(f, r), e, r) {
		t.Fatal("expected substring match")
	}
}

func TestEvaluatePresence(t *testing.T) {
	r := schema.Bootstrap()
	e := aliceEntry()
	f, _ := Parse("(description=*)")
	if Evaluate(Normalize(f, r), e, r) {
		t.Fatal("expected no match: attribute absent")
	}
}

func TestNormalizeUndefinedAttributeIsContradiction(t *testing.T) {
	r := schema.Bootstrap()
	f, _ := Parse("(bogusAttr=x)")
	n := Normalize(f, r)
	if n.Type != Contradiction {
		t.Fatalf("expected Contradiction, got %v", n.Type)
	}
	if Evaluate(n, aliceEntry(), r) {
		t.Fatal("contradiction must never match")
	}
}

func TestEvaluateOrdering(t *testing.T) {
	r := schema.Bootstrap()
	e := aliceEntry()
	f, _ := Parse("(sn>=Aaa)")
	if !Evaluate(Normalize(f, r), e, r) {
		t.Fatal("expected ordering match")
	}
	f2, _ := Parse("(sn<=Aaa)")
	if Evaluate(Normalize(f2, r), e, r) {
		t.Fatal("expected no ordering match")
	}
}

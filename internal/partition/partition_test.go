package partition

import (
	"testing"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/schema"
)

func newTestPartition(t *testing.T) *Partition {
	t.Helper()
	registry := schema.Bootstrap()
	suffix := dn.MustParse("o=example")
	return NewPartition(suffix, registry, "replica1", nil)
}

func mustEntry(t *testing.T, dnText string, attrs map[string][]string) *entry.Entry {
	t.Helper()
	e := entry.New(dn.MustParse(dnText))
	for name, values := range attrs {
		for _, v := range values {
			e.Add(name, entry.NewTextValue(v))
		}
	}
	return e
}

// TestAddLookupDelete exercises spec.md §8 scenario S1.
func TestAddLookupDelete(t *testing.T) {
	p := newTestPartition(t)

	root := mustEntry(t, "o=example", map[string][]string{
		"objectClass": {"top", "organization"},
		"o":           {"example"},
	})
	if err := p.Add(root); err != nil {
		t.Fatalf("add suffix root: %v", err)
	}

	alice := mustEntry(t, "cn=alice,o=example", map[string][]string{
		"objectClass": {"top", "person"},
		"cn":          {"alice"},
		"sn":          {"smith"},
	})
	if err := p.Add(alice); err != nil {
		t.Fatalf("add alice: %v", err)
	}

	got, err := p.Lookup(dn.MustParse("cn=alice,o=example"), nil)
	if err != nil {
		t.Fatalf("lookup alice: %v", err)
	}
	if sn := got.Get("sn"); sn == nil || sn.Values[0].String() != "smith" {
		t.Fatalf("expected sn=smith, got %+v", sn)
	}

	if err := p.Delete(dn.MustParse("o=example")); !errs.Is(err, errs.KindNotAllowedOnNonLeaf) {
		t.Fatalf("expected notAllowedOnNonLeaf deleting non-leaf suffix, got %v", err)
	}

	if err := p.Delete(dn.MustParse("cn=alice,o=example")); err != nil {
		t.Fatalf("delete alice: %v", err)
	}
	if err := p.Delete(dn.MustParse("o=example")); err != nil {
		t.Fatalf("delete suffix root: %v", err)
	}
	if p.HasEntry(dn.MustParse("o=example")) {
		t.Fatal("suffix root should be gone")
	}
}

// TestIndexedEqualitySearch exercises spec.md §8 scenario S2's data
// setup and the Equality cardinality estimator Optimize relies on.
func TestIndexedEqualitySearch(t *testing.T) {
	p := newTestPartition(t)
	root := mustEntry(t, "o=example", map[string][]string{
		"objectClass": {"top", "organization"}, "o": {"example"},
	})
	if err := p.Add(root); err != nil {
		t.Fatalf("add suffix root: %v", err)
	}
	for i := 0; i < 100; i++ {
		name := "user0" + pad2(i)
		e := mustEntry(t, "cn="+name+",o=example", map[string][]string{
			"objectClass": {"top", "person"},
			"cn":          {name},
			"sn":          {"lname"},
		})
		if err := p.Add(e); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	oid := p.registry.CanonicalOID("cn")
	norm := p.registry.NormalizeEquality("cn", []byte("user042"))
	if got := p.Equality(oid, norm); got != 1 {
		t.Fatalf("expected exactly 1 candidate for cn=user042, got %d", got)
	}

	oidSN := p.registry.CanonicalOID("sn")
	normSN := p.registry.NormalizeEquality("sn", []byte("lname"))
	if got := p.Equality(oidSN, normSN); got != 100 {
		t.Fatalf("expected 100 candidates for sn=lname, got %d", got)
	}

	normNone := p.registry.NormalizeEquality("cn", []byte("nosuch"))
	if got := p.Equality(oid, normNone); got != 0 {
		t.Fatalf("expected 0 candidates for cn=nosuch, got %d", got)
	}
}

func pad2(i int) string {
	if i < 10 {
		return "0" + itoa(i)
	}
	return itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// TestRenamePreservesUUID exercises spec.md §8 scenario S3.
func TestRenamePreservesUUID(t *testing.T) {
	p := newTestPartition(t)
	root := mustEntry(t, "o=example", map[string][]string{
		"objectClass": {"top", "organization"}, "o": {"example"},
	})
	if err := p.Add(root); err != nil {
		t.Fatalf("add suffix root: %v", err)
	}
	bob := mustEntry(t, "cn=bob,o=example", map[string][]string{
		"objectClass": {"top", "person"}, "cn": {"bob"}, "sn": {"jones"},
	})
	if err := p.Add(bob); err != nil {
		t.Fatalf("add bob: %v", err)
	}
	before, err := p.Lookup(dn.MustParse("cn=bob,o=example"), nil)
	if err != nil {
		t.Fatalf("lookup bob: %v", err)
	}
	uuid1 := before.Get("entryUUID").Values[0].String()

	newRDN := dn.RDN{{Type: "cn", Value: "bobby"}}
	if err := p.Rename(dn.MustParse("cn=bob,o=example"), newRDN, true); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if p.HasEntry(dn.MustParse("cn=bob,o=example")) {
		t.Fatal("old dn should no longer resolve")
	}
	after, err := p.Lookup(dn.MustParse("cn=bobby,o=example"), nil)
	if err != nil {
		t.Fatalf("lookup bobby: %v", err)
	}
	if got := after.Get("entryUUID").Values[0].String(); got != uuid1 {
		t.Fatalf("uuid changed: before=%s after=%s", uuid1, got)
	}
	if a := after.Get("cn"); a != nil {
		for _, v := range a.Values {
			if v.String() == "bob" {
				t.Fatal("deleteOldRdnAttr=true should have removed cn=bob")
			}
		}
	}
}

// TestLookupByUUID confirms the uuid index survives a rename.
func TestLookupByUUID(t *testing.T) {
	p := newTestPartition(t)
	root := mustEntry(t, "o=example", map[string][]string{
		"objectClass": {"top", "organization"}, "o": {"example"},
	})
	if err := p.Add(root); err != nil {
		t.Fatalf("add suffix root: %v", err)
	}
	carol := mustEntry(t, "cn=carol,o=example", map[string][]string{
		"objectClass": {"top", "person"}, "cn": {"carol"}, "sn": {"day"},
	})
	if err := p.Add(carol); err != nil {
		t.Fatalf("add carol: %v", err)
	}
	got, err := p.Lookup(dn.MustParse("cn=carol,o=example"), nil)
	if err != nil {
		t.Fatalf("lookup carol: %v", err)
	}
	uuidText := got.Get("entryUUID").Values[0].String()

	byUUID, err := p.LookupByUUID(uuidText)
	if err != nil {
		t.Fatalf("lookup by uuid: %v", err)
	}
	if byUUID.DN.String() != "cn=carol,o=example" {
		t.Fatalf("expected cn=carol,o=example, got %s", byUUID.DN.String())
	}

	newRDN := dn.RDN{{Type: "cn", Value: "carolyn"}}
	if err := p.Rename(dn.MustParse("cn=carol,o=example"), newRDN, true); err != nil {
		t.Fatalf("rename: %v", err)
	}
	afterRename, err := p.LookupByUUID(uuidText)
	if err != nil {
		t.Fatalf("lookup by uuid after rename: %v", err)
	}
	if afterRename.DN.String() != "cn=carolyn,o=example" {
		t.Fatalf("expected cn=carolyn,o=example after rename, got %s", afterRename.DN.String())
	}

	if err := p.Delete(dn.MustParse("cn=carolyn,o=example")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := p.LookupByUUID(uuidText); !errs.Is(err, errs.KindNoSuchObject) {
		t.Fatalf("expected noSuchObject after delete, got %v", err)
	}
}

// TestMoveUpdatesSubLevel exercises spec.md §8 scenario S4.
func TestMoveUpdatesSubLevel(t *testing.T) {
	p := newTestPartition(t)
	root := mustEntry(t, "o=example", map[string][]string{
		"objectClass": {"top", "organization"}, "o": {"example"},
	})
	if err := p.Add(root); err != nil {
		t.Fatalf("add suffix root: %v", err)
	}
	ouA := mustEntry(t, "ou=a,o=example", map[string][]string{
		"objectClass": {"top", "organizationalUnit"}, "ou": {"a"},
	})
	ouB := mustEntry(t, "ou=b,o=example", map[string][]string{
		"objectClass": {"top", "organizationalUnit"}, "ou": {"b"},
	})
	if err := p.Add(ouA); err != nil {
		t.Fatalf("add ou=a: %v", err)
	}
	if err := p.Add(ouB); err != nil {
		t.Fatalf("add ou=b: %v", err)
	}
	x := mustEntry(t, "cn=x,ou=a,o=example", map[string][]string{
		"objectClass": {"top", "person"}, "cn": {"x"}, "sn": {"x"},
	})
	if err := p.Add(x); err != nil {
		t.Fatalf("add cn=x: %v", err)
	}

	aID, err := p.Resolve(dn.MustParse("ou=a,o=example"))
	if err != nil {
		t.Fatalf("resolve ou=a: %v", err)
	}
	bID, err := p.Resolve(dn.MustParse("ou=b,o=example"))
	if err != nil {
		t.Fatalf("resolve ou=b: %v", err)
	}
	xID, err := p.Resolve(dn.MustParse("cn=x,ou=a,o=example"))
	if err != nil {
		t.Fatalf("resolve cn=x: %v", err)
	}
	if !containsID(p.subtreeIDs(aID), xID) {
		t.Fatal("expected sub_level(ou=a) to contain x before move")
	}
	if containsID(p.subtreeIDs(bID), xID) {
		t.Fatal("expected sub_level(ou=b) to not contain x before move")
	}

	if err := p.Move(dn.MustParse("cn=x,ou=a,o=example"), dn.MustParse("ou=b,o=example")); err != nil {
		t.Fatalf("move: %v", err)
	}

	if containsID(p.subtreeIDs(aID), xID) {
		t.Fatal("expected sub_level(ou=a) to no longer contain x after move")
	}
	if !containsID(p.subtreeIDs(bID), xID) {
		t.Fatal("expected sub_level(ou=b) to contain x after move")
	}
	moved, err := p.Lookup(dn.MustParse("cn=x,ou=b,o=example"), nil)
	if err != nil {
		t.Fatalf("lookup moved entry: %v", err)
	}
	if moved.DN.String() != "cn=x,ou=b,o=example" {
		t.Fatalf("expected moved entry's stored DN to be updated, got %s", moved.DN.String())
	}
}

func containsID(ids []ID, target ID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

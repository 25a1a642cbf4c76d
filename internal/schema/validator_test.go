package schema

import "testing"

type fakeEntry map[string][][]byte

func (f fakeEntry) AttributeNames() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	return names
}

func (f fakeEntry) RawValues(attr string) [][]byte { return f[attr] }

func TestValidateEntryRequiresStructuralObjectClass(t *testing.T) {
	v := NewValidator(Bootstrap())
	e := fakeEntry{"objectclass": {[]byte("top")}}
	if err := v.ValidateEntry(e); err == nil {
		t.Fatalf("expected error for entry with only abstract objectClass")
	}
}

func TestValidateEntryRequiresMustAttributes(t *testing.T) {
	v := NewValidator(Bootstrap())
	e := fakeEntry{"objectclass": {[]byte("person")}, "sn": {[]byte("Smith")}}
	if err := v.ValidateEntry(e); err == nil {
		t.Fatalf("expected error for missing cn")
	}
}

func TestValidateEntryRejectsUndeclaredAttribute(t *testing.T) {
	v := NewValidator(Bootstrap())
	e := fakeEntry{
		"objectclass": {[]byte("person")},
		"cn":          {[]byte("John Smith")},
		"sn":          {[]byte("Smith")},
		"o":           {[]byte("Example Corp")},
	}
	if err := v.ValidateEntry(e); err == nil {
		t.Fatalf("expected error for attribute not allowed by objectClass")
	}
}

func TestValidateEntryAcceptsWellFormedEntry(t *testing.T) {
	v := NewValidator(Bootstrap())
	e := fakeEntry{
		"objectclass": {[]byte("person")},
		"cn":          {[]byte("John Smith")},
		"sn":          {[]byte("Smith")},
	}
	if err := v.ValidateEntry(e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateEntryRejectsMultipleValuesOnSingleValued(t *testing.T) {
	v := NewValidator(Bootstrap())
	e := fakeEntry{
		"objectclass": {[]byte("organization"), []byte("dcObject")},
		"o":           {[]byte("Example")},
		"dc":          {[]byte("example"), []byte("other")},
	}
	if err := v.ValidateEntry(e); err == nil {
		t.Fatalf("expected error for multi-valued single-valued attribute")
	}
}

func TestValidateEntryNilRegistryIsNoOp(t *testing.T) {
	v := NewValidator(nil)
	if err := v.ValidateEntry(fakeEntry{}); err != nil {
		t.Fatalf("nil registry should never reject: %v", err)
	}
}

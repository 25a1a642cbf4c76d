package entry

import (
	"testing"
	"time"
)

func TestCSNGeneratorMonotonicSequence(t *testing.T) {
	g := NewCSNGenerator("replica-1")
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	first := g.Next(now)
	second := g.Next(now)
	if second.Seq <= first.Seq {
		t.Fatalf("expected strictly increasing sequence, got %d then %d", first.Seq, second.Seq)
	}
	if first.ReplicaID != "replica-1" {
		t.Fatalf("unexpected replica id: %q", first.ReplicaID)
	}
}

func TestEntryUUIDIsUnique(t *testing.T) {
	a := NewEntryUUID()
	b := NewEntryUUID()
	if string(a.Raw()) == string(b.Raw()) {
		t.Fatalf("expected distinct UUIDs")
	}
}

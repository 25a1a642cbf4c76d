package filter

import "testing"

// fakeEstimator lets tests control cardinalities without a real partition.
type fakeEstimator struct {
	universe int64
	presence map[string]int64
	equality map[string]int64 // key: attrOID + "\x00" + value
}

func (f *fakeEstimator) Universe() int64 { return f.universe }
func (f *fakeEstimator) Presence(attrOID string) int64 {
	return f.presence[attrOID]
}
func (f *fakeEstimator) Equality(attrOID string, normValue []byte) int64 {
	return f.equality[attrOID+"\x00"+string(normValue)]
}

func TestOptimizeAndOrdersBySelectivity(t *testing.T) {
	est := &fakeEstimator{
		universe: 1000,
		equality: map[string]int64{
			"cn\x00alice": 1,
			"sn\x00smith": 500,
		},
	}
	f := NewAnd(NewEquality("sn", []byte("smith")), NewEquality("cn", []byte("alice")))
	f.Children[0].AttributeOID = "sn"
	f.Children[1].AttributeOID = "cn"
	opt := Optimize(f, est)
	if opt.Children[0].AttributeOID != "cn" {
		t.Fatalf("expected cn (more selective) first, got %+v", opt.Children[0])
	}
	if opt.Estimate != 1 {
		t.Fatalf("AND estimate should be bound by most selective child, got %d", opt.Estimate)
	}
}

func TestOptimizeOrSumsEstimates(t *testing.T) {
	est := &fakeEstimator{universe: 1000, equality: map[string]int64{"cn\x00a": 3, "cn\x00b": 7}}
	f := NewOr(NewEquality("cn", []byte("a")), NewEquality("cn", []byte("b")))
	f.Children[0].AttributeOID, f.Children[1].AttributeOID = "cn", "cn"
	opt := Optimize(f, est)
	if opt.Estimate != 10 {
		t.Fatalf("expected sum 10, got %d", opt.Estimate)
	}
}

func TestOptimizeNotComplementsUniverse(t *testing.T) {
	est := &fakeEstimator{universe: 1000, presence: map[string]int64{"cn": 200}}
	f := NewNot(NewPresent("cn"))
	f.Child.AttributeOID = "cn"
	opt := Optimize(f, est)
	if opt.Estimate != 800 {
		t.Fatalf("expected 800, got %d", opt.Estimate)
	}
}

func TestOptimizeSubstringNoPrefixIsFullScan(t *testing.T) {
	est := &fakeEstimator{universe: 1000}
	f := NewSubstring("cn", &Substrings{Any: [][]byte{[]byte("mid")}})
	f.AttributeOID = "cn"
	opt := Optimize(f, est)
	if opt.UseIndex {
		t.Fatal("substring with no initial literal should not claim index use")
	}
	if opt.Estimate != 1000 {
		t.Fatalf("expected full-scan estimate, got %d", opt.Estimate)
	}
}

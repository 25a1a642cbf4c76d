package filter

import "testing"

func TestParseLeafKinds(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Type
	}{
		{"equality", "(cn=alice)", Equality},
		{"presence", "(cn=*)", Present},
		{"substring", "(cn=al*ce)", Substring},
		{"ge", "(cn>=a)", GreaterOrEqual},
		{"le", "(cn<=z)", LessOrEqual},
		{"approx", "(cn~=alice)", ApproxMatch},
		{"extensible", "(cn:caseExactMatch:=alice)", ExtensibleMatch},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f, err := Parse(c.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.in, err)
			}
			if f.Type != c.want {
				t.Fatalf("Parse(%q).Type = %v, want %v", c.in, f.Type, c.want)
			}
		})
	}
}

func TestParseComposite(t *testing.T) {
	f, err := Parse("(&(objectClass=person)(|(sn=smith)(sn=jones))(!(cn=bob)))")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Type != And || len(f.Children) != 3 {
		t.Fatalf("got %+v", f)
	}
	if f.Children[1].Type != Or || len(f.Children[1].Children) != 2 {
		t.Fatalf("or child: %+v", f.Children[1])
	}
	if f.Children[2].Type != Not {
		t.Fatalf("not child: %+v", f.Children[2])
	}
}

func TestParseSubstringDecomposition(t *testing.T) {
	f, err := Parse("(cn=al*ic*e)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(f.Sub.Initial) != "al" || string(f.Sub.Final) != "e" {
		t.Fatalf("got sub=%+v", f.Sub)
	}
	if len(f.Sub.Any) != 1 || string(f.Sub.Any[0]) != "ic" {
		t.Fatalf("got any=%+v", f.Sub.Any)
	}
}

func TestParseHexEscape(t *testing.T) {
	f, err := Parse(`(cn=\28test\29)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(f.Value) != "(test)" {
		t.Fatalf("got %q", f.Value)
	}
}

func TestParseExtensibleDNFlag(t *testing.T) {
	f, err := Parse("(cn:dn:caseExactMatch:=alice)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !f.DNAttributes || f.MatchingRule != "caseExactMatch" {
		t.Fatalf("got %+v", f)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "(cn=alice", "(=alice)", "()"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error, got none", in)
		}
	}
}

package acl

import "testing"

func TestRightHas(t *testing.T) {
	rights := Read | SearchRight
	if !rights.Has(Read) {
		t.Error("expected Read to be present")
	}
	if !rights.Has(SearchRight) {
		t.Error("expected SearchRight to be present")
	}
	if rights.Has(Write) {
		t.Error("did not expect Write to be present")
	}
	if !All.Has(CompareRight) {
		t.Error("expected All to include CompareRight")
	}
}

func TestRuleAppliesToAttribute(t *testing.T) {
	tests := []struct {
		name     string
		attrs    []string
		query    string
		expected bool
	}{
		{"empty list matches everything", nil, "cn", true},
		{"wildcard matches everything", []string{"*"}, "userPassword", true},
		{"exact match", []string{"cn", "mail"}, "mail", true},
		{"case insensitive match", []string{"cn", "Mail"}, "MAIL", true},
		{"no match", []string{"cn", "mail"}, "userPassword", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &Rule{Attributes: tt.attrs}
			if got := rule.AppliesToAttribute(tt.query); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewConfigDefaultsToDeny(t *testing.T) {
	config := NewConfig()
	if config.DefaultAllow {
		t.Error("expected new Config to default-deny")
	}
	if len(config.Rules) != 0 {
		t.Error("expected new Config to start with no rules")
	}
}

func TestConfigAddRulePreservesOrder(t *testing.T) {
	config := NewConfig()
	first := &Rule{Rights: Read}
	second := &Rule{Rights: Write}
	config.AddRule(first)
	config.AddRule(second)
	if len(config.Rules) != 2 || config.Rules[0] != first || config.Rules[1] != second {
		t.Error("expected rules to retain insertion order")
	}
}

package acl

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/schema"
)

// fileConfig is the on-disk YAML shape, per the teacher's acl.FileConfig,
// now parsed with gopkg.in/yaml.v3 instead of the teacher's hand-rolled
// line-by-line tokenizer.
type fileConfig struct {
	Version       int        `yaml:"version"`
	DefaultPolicy string     `yaml:"defaultPolicy"`
	Rules         []fileRule `yaml:"rules"`
}

type fileRule struct {
	Target     string   `yaml:"target"`
	Scope      string   `yaml:"scope"`
	Subject    string   `yaml:"subject"`
	Rights     []string `yaml:"rights"`
	Attributes []string `yaml:"attributes"`
	Deny       bool     `yaml:"deny"`
}

// LoadFile reads and parses an ACL YAML file against registry, per the
// teacher's acl.LoadFromFile/ParseACLYAML, restored as the Access Control
// interceptor's rule source (SPEC_FULL.md, Supplemented Features).
func LoadFile(filePath string, registry *schema.Registry) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errs.Wrap(errs.KindOperationsError, "reading ACL file", err)
	}

	var fc fileConfig
	fc.Version = 1
	fc.DefaultPolicy = "deny"
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errs.Wrap(errs.KindOperationsError, "parsing ACL YAML", err)
	}
	if fc.Version < 1 {
		return nil, errs.New(errs.KindOperationsError, "acl: version must be >= 1")
	}

	config := NewConfig()
	switch strings.ToLower(fc.DefaultPolicy) {
	case "allow":
		config.DefaultAllow = true
	case "deny", "":
		config.DefaultAllow = false
	default:
		return nil, errs.New(errs.KindOperationsError, "acl: defaultPolicy must be allow or deny, got "+fc.DefaultPolicy)
	}

	cmp := dn.Comparator(registry)
	for i, fr := range fc.Rules {
		rule, err := convertRule(&fr, cmp)
		if err != nil {
			return nil, errs.Wrap(errs.KindOperationsError, fmt.Sprintf("acl: rule %d", i), err)
		}
		config.AddRule(rule)
	}
	if problems := ValidateConfig(config); len(problems) > 0 {
		return nil, errs.New(errs.KindOperationsError, fmt.Sprintf("acl: %s: %v", filePath, problems[0]))
	}
	return config, nil
}

func convertRule(fr *fileRule, cmp func(attrType, a, b string) bool) (*Rule, error) {
	if fr.Target == "" {
		return nil, fmt.Errorf("missing target")
	}
	if len(fr.Rights) == 0 {
		return nil, fmt.Errorf("missing rights")
	}

	rights, err := parseRights(fr.Rights)
	if err != nil {
		return nil, err
	}
	scope, err := parseScope(fr.Scope)
	if err != nil {
		return nil, err
	}
	subject, subjectTarget, err := parseSubject(fr.Subject)
	if err != nil {
		return nil, err
	}

	rule := &Rule{
		Scope:         scope,
		Subject:       subject,
		SubjectTarget: subjectTarget,
		Rights:        rights,
		Attributes:    fr.Attributes,
		Deny:          fr.Deny,
	}

	if fr.Target == "*" {
		rule.TargetAny = true
	} else {
		target, err := dn.Parse(fr.Target)
		if err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", fr.Target, err)
		}
		rule.Target = target
	}
	return rule, nil
}

func parseRights(rights []string) (Right, error) {
	var result Right
	for _, r := range rights {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "read":
			result |= Read
		case "write":
			result |= Write
		case "add":
			result |= AddRight
		case "delete":
			result |= DeleteRight
		case "search":
			result |= SearchRight
		case "compare":
			result |= CompareRight
		case "all":
			result |= All
		default:
			return 0, fmt.Errorf("invalid right %q", r)
		}
	}
	return result, nil
}

func parseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base":
		return ScopeBase, nil
	case "one", "onelevel":
		return ScopeOne, nil
	case "sub", "subtree", "":
		return ScopeSubtree, nil
	default:
		return 0, fmt.Errorf("invalid scope %q", s)
	}
}

// parseSubject translates a YAML subject string into the closed Subject
// enum: "anonymous", "authenticated", "self", "*" or "any" (matched
// case-insensitively), or a literal bind DN.
func parseSubject(s string) (Subject, dn.DN, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, dn.DN{}, fmt.Errorf("missing subject")
	case "anonymous":
		return SubjectAnonymous, dn.DN{}, nil
	case "authenticated":
		return SubjectAuthenticated, dn.DN{}, nil
	case "self":
		return SubjectSelf, dn.DN{}, nil
	case "*", "any":
		return SubjectAny, dn.DN{}, nil
	default:
		d, err := dn.Parse(s)
		if err != nil {
			return 0, dn.DN{}, fmt.Errorf("invalid subject %q: %w", s, err)
		}
		return SubjectDN, d, nil
	}
}

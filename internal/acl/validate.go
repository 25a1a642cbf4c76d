package acl

import "fmt"

// ValidateConfig sanity-checks a Config beyond what LoadFile's parsing
// already enforces, per the teacher's acl.ValidateConfig, trimmed to the
// checks that remain meaningful once Rule.Target/Subject are typed
// dn.DN/Subject values rather than raw strings.
func ValidateConfig(config *Config) []error {
	var errs []error
	if config == nil {
		return []error{fmt.Errorf("config is nil")}
	}
	for i, rule := range config.Rules {
		if rule == nil {
			errs = append(errs, fmt.Errorf("rule %d: is nil", i))
			continue
		}
		if rule.Rights == 0 {
			errs = append(errs, fmt.Errorf("rule %d: at least one right is required", i))
		}
		if rule.Scope < ScopeBase || rule.Scope > ScopeSubtree {
			errs = append(errs, fmt.Errorf("rule %d: invalid scope %d", i, rule.Scope))
		}
		if rule.Subject < SubjectDN || rule.Subject > SubjectAny {
			errs = append(errs, fmt.Errorf("rule %d: invalid subject %d", i, rule.Subject))
		}
		if rule.Subject == SubjectDN && rule.SubjectTarget.IsRoot() {
			errs = append(errs, fmt.Errorf("rule %d: subject DN required", i))
		}
	}
	return errs
}

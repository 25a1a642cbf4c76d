// Package password provides password policy configuration and validation
// for the Oba LDAP server.
//
// # Overview
//
// The password package implements password policy enforcement as commonly
// used in LDAP directories. It provides:
//
//   - Password complexity requirements
//   - Password history (reuse prevention)
//   - Password change restrictions
//
// # Password Policy
//
// Create a policy with complexity requirements:
//
//	policy := &password.Policy{
//	    Enabled:          true,
//	    MinLength:        8,
//	    MaxLength:        128,
//	    RequireUppercase: true,
//	    RequireLowercase: true,
//	    RequireDigit:     true,
//	    RequireSpecial:   false,
//	    MaxAge:           90 * 24 * time.Hour, // 90 days
//	    HistoryCount:     5,
//	    MaxFailures:      5,
//	    LockoutDuration:  15 * time.Minute,
//	}
//
// Or use defaults:
//
//	policy := password.DefaultPolicy()
//
// # Password Validation
//
// Validate passwords against policy:
//
//	if err := policy.Validate("MyP@ssw0rd"); err != nil {
//	    if verr, ok := err.(*password.ValidationError); ok {
//	        switch verr.Code {
//	        case password.ErrTooShort:
//	            // Password too short
//	        case password.ErrNoUppercase:
//	            // Missing uppercase letter
//	        case password.ErrNoDigit:
//	            // Missing digit
//	        }
//	    }
//	}
//
// # Password History
//
// History tracks previous password digests per principal, rejecting
// reuse within the policy's HistoryCount:
//
//	hist := password.NewHistory(policy.HistoryCount)
//
//	if err := validator.ValidateWithHistory(candidate, hist.Hashes(), hashFunc); err != nil {
//	    // candidate fails complexity or matches a recent password
//	}
//	hist.Add(hashFunc(candidate))
//
// # Policy Merging
//
// Merge per-user overrides with global policy:
//
//	globalPolicy := password.DefaultPolicy()
//	userOverride := &password.Policy{
//	    MinLength: 12, // Stricter requirement for this user
//	}
//
//	effectivePolicy := globalPolicy.Merge(userOverride)
package password

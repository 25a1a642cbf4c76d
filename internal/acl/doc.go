// Package acl provides the rule data structures and first-match-wins
// evaluator backing the Access Control interceptor stage (spec.md §4.5
// stage 4).
//
// # Overview
//
// The acl package defines:
//
//   - Rule: a target/subject/rights access control rule
//   - Scope-based target matching (base, one-level, subtree)
//   - Attribute-level permissions
//   - Evaluator: first-match-wins evaluation against an ordered rule list
//   - Manager: hot-reloadable YAML rule source with file-change polling
//
// # Access Rights
//
// Rights are bit flags that can be combined:
//
//	acl.Read
//	acl.Write
//	acl.AddRight
//	acl.DeleteRight
//	acl.SearchRight
//	acl.CompareRight
//	acl.All
//
// # Subjects
//
// A Rule's Subject is one of a closed set: SubjectAnonymous,
// SubjectAuthenticated, SubjectSelf, SubjectAny, or SubjectDN (with
// SubjectTarget holding the literal bind DN).
//
// # YAML rule file
//
//	version: 1
//	defaultPolicy: deny
//	rules:
//	  - target: "*"
//	    subject: "cn=admin,dc=example,dc=com"
//	    rights: [read, write, add, delete, search, compare]
//	  - target: "ou=users,dc=example,dc=com"
//	    scope: subtree
//	    subject: authenticated
//	    rights: [read, search]
//	    attributes: [cn, mail, uid]
//	  - target: "*"
//	    subject: anonymous
//	    rights: [read]
//	    attributes: [userPassword]
//	    deny: true
//
// Manager.Watch polls the file for changes and calls Manager.Reload,
// atomically swapping the Evaluator in place.
package acl

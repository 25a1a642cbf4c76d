package entry

import "github.com/obadir/oba/internal/errs"

// ModOp is a single modify operation's verb, per RFC 4511 §4.6.
type ModOp int

const (
	ModAdd ModOp = iota
	ModDelete
	ModReplace
)

// Modification is one clause of an LDAP modify request.
type Modification struct {
	Op        ModOp
	Attribute string
	Values    []Value
}

// ApplyModifications runs the all-or-nothing algorithm spec.md §4.3
// describes for modify: every clause is applied to a clone of e, and
// only if every clause succeeds does the caller get the clone back to
// commit; on any failure the original entry is returned untouched and
// the caller never observes a partially-modified entry.
func ApplyModifications(e *Entry, mods []Modification) (*Entry, error) {
	working := e.Clone()
	for _, m := range mods {
		if m.Attribute == "" {
			return nil, errs.New(errs.KindProtocolError, "modification missing attribute type")
		}
		switch m.Op {
		case ModAdd:
			working.Add(m.Attribute, m.Values...)
		case ModDelete:
			if len(m.Values) == 0 {
				if working.Get(m.Attribute) == nil {
					return nil, errs.New(errs.KindNoSuchAttribute, "delete: no such attribute "+m.Attribute).WithMatchedDN(e.DN.String())
				}
			} else if err := requireValuesPresent(working, m); err != nil {
				return nil, err
			}
			working.Remove(m.Attribute, m.Values...)
		case ModReplace:
			working.Replace(m.Attribute, m.Values...)
		default:
			return nil, errs.New(errs.KindProtocolError, "unknown modification operation")
		}
	}
	return working, nil
}

func requireValuesPresent(e *Entry, m Modification) error {
	a := e.Get(m.Attribute)
	if a == nil {
		return errs.New(errs.KindNoSuchAttribute, "delete: no such attribute "+m.Attribute).WithMatchedDN(e.DN.String())
	}
	for _, v := range m.Values {
		if !a.HasValue(v) {
			return errs.New(errs.KindNoSuchAttribute, "delete: value not present on "+m.Attribute).WithMatchedDN(e.DN.String())
		}
	}
	return nil
}

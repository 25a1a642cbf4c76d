package schema

import (
	"strings"

	"github.com/obadir/oba/internal/errs"
)

// ValidatableEntry is the minimal surface the Validator needs from an
// entry. internal/entry.Entry satisfies it; the interface exists so this
// package never imports internal/entry (which itself imports schema for
// normalization), avoiding an import cycle.
type ValidatableEntry interface {
	AttributeNames() []string
	RawValues(attr string) [][]byte
}

// Validator checks an entry (or a proposed modification to one) against
// a Registry's object-class and attribute-type rules (structural object
// class, mandatory and allowed attributes, single-valued constraints),
// per spec.md §4.3. It does not check attribute values against their
// syntaxes.
type Validator struct {
	registry *Registry
}

// NewValidator builds a Validator bound to the given registry. A nil
// registry makes every check a no-op, useful for bootstrap paths that
// run before the schema partition has loaded.
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// ValidateEntry runs the structural-OC / mandatory-attribute /
// allowed-attribute / single-value check of spec.md §4.3 step 4; values
// are not checked against their attribute's syntax.
func (v *Validator) ValidateEntry(e ValidatableEntry) error {
	if v.registry == nil {
		return nil
	}
	classes := stringValues(e.RawValues("objectclass"))
	if len(classes) == 0 {
		return errs.New(errs.KindObjectClassViolation, "entry has no objectClass")
	}

	must := map[string]bool{}
	may := map[string]bool{}
	hasStructural := false
	for _, class := range classes {
		oc := v.registry.ObjectClass(class)
		if oc == nil {
			return errs.New(errs.KindObjectClassViolation, "unknown objectClass "+class)
		}
		if oc.IsStructural() {
			hasStructural = true
		}
		for a := range v.registry.EffectiveMust(class) {
			must[a] = true
		}
		for a := range v.registry.EffectiveMay(class) {
			may[a] = true
		}
	}
	if !hasStructural {
		return errs.New(errs.KindObjectClassViolation, "at least one structural objectClass is required")
	}

	for attr := range must {
		if len(e.RawValues(attr)) == 0 {
			return errs.New(errs.KindObjectClassViolation, "missing required attribute "+attr)
		}
	}

	for _, attr := range e.AttributeNames() {
		lower := strings.ToLower(attr)
		if lower == "objectclass" {
			continue
		}
		if must[lower] || may[lower] {
			continue
		}
		if at := v.registry.AttributeType(attr); at != nil && at.IsOperational() {
			continue
		}
		return errs.New(errs.KindUndefinedAttributeType, "attribute not allowed by objectClass: "+attr)
	}

	for _, attr := range e.AttributeNames() {
		values := e.RawValues(attr)
		at := v.registry.AttributeType(attr)
		if at != nil && at.SingleValue && len(values) > 1 {
			return errs.New(errs.KindConstraintViolation, "single-valued attribute has multiple values: "+attr)
		}
	}
	return nil
}

func stringValues(raw [][]byte) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = string(v)
	}
	return out
}

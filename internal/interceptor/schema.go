package interceptor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/password"
	"github.com/obadir/oba/internal/schema"
)

// schemaStage is spec.md §4.5 stage 7. On Add it runs the schema
// Validator (object class, mandatory/allowed attribute and single-value
// checks) over the new entry before the operation reaches the Partition
// Engine, per spec.md §4.3 step 4. On Modify it checks only userPassword
// values; the Partition Engine validates the modified entry itself.
// Attribute values are not checked against their syntax.
//
// Restores the teacher's internal/password policy/validator.go
// complexity check (an earlier distillation pass dropped it), since a
// userPassword value is itself a syntax the Schema stage is responsible
// for enforcing: a plaintext value about to be stored is checked against
// the policy before HashPassword is ever called at a higher layer. Also
// restores internal/password.History reuse prevention, keyed per target
// DN, since the policy's HistoryCount is otherwise declared but never
// enforced anywhere in the chain.
type schemaStage struct {
	validator *schema.Validator
	pwPolicy  *password.Validator

	mu      sync.Mutex
	history map[string]*password.History
}

// NewSchemaStage constructs the Schema interceptor. pwPolicy may be nil,
// in which case userPassword values are accepted without a complexity
// check (equivalent to a disabled policy).
func NewSchemaStage(registry *schema.Registry, pwPolicy *password.Validator) Interceptor {
	return &schemaStage{
		validator: schema.NewValidator(registry),
		pwPolicy:  pwPolicy,
		history:   make(map[string]*password.History),
	}
}

// historyFor returns the DN's password history tracker, creating one
// sized to the active policy's HistoryCount on first use.
func (s *schemaStage) historyFor(target string) *password.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.history[target]
	if !ok {
		h = password.NewHistory(s.pwPolicy.HistoryCount())
		s.history[target] = h
	}
	return h
}

func hashForHistory(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func (s *schemaStage) Name() string { return "schema" }

func (s *schemaStage) Handle(ctx *OperationContext, next Next) error {
	switch ctx.Op {
	case OpAdd:
		if err := s.checkPasswordSyntax(ctx.NewEntry); err != nil {
			return err
		}
		if err := s.validator.ValidateEntry(ctx.NewEntry); err != nil {
			return err
		}
	case OpModify:
		for _, m := range ctx.Mods {
			if m.Op == entry.ModDelete {
				continue
			}
			if err := s.checkPasswordModValues(ctx.Target, m); err != nil {
				return err
			}
		}
	}
	return next()
}

func (s *schemaStage) checkPasswordSyntax(e *entry.Entry) error {
	if s.pwPolicy == nil || e == nil {
		return nil
	}
	attr := e.Get("userPassword")
	if attr == nil {
		return nil
	}
	for _, v := range attr.Values {
		if err := s.pwPolicy.Validate(v.String()); err != nil {
			return errs.Wrap(errs.KindInvalidAttributeSyntax, "userPassword does not meet password policy", err)
		}
	}
	return nil
}

func (s *schemaStage) checkPasswordModValues(target dn.DN, m entry.Modification) error {
	if s.pwPolicy == nil || !strings.EqualFold(m.Attribute, "userPassword") {
		return nil
	}
	hist := s.historyFor(target.String())
	for _, v := range m.Values {
		plaintext := v.String()
		if err := s.pwPolicy.ValidateWithHistory(plaintext, hist.Hashes(), hashForHistory); err != nil {
			return errs.Wrap(errs.KindInvalidAttributeSyntax, "userPassword does not meet password policy", err)
		}
		hist.Add(hashForHistory(plaintext))
	}
	return nil
}

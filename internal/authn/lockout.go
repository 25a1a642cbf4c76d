package authn

import (
	"sync"
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/schema"
)

// accountLockout tracks one principal's recent bind failures and whether
// it is currently locked, per-account state distilled from the teacher's
// internal/password.AccountLockout.
type accountLockout struct {
	mu           sync.Mutex
	failureTimes []time.Time
	lockedAt     time.Time
}

func (l *accountLockout) recordFailure(now time.Time, maxFailures int, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failureTimes = append(l.failureTimes, now)
	if window > 0 {
		cutoff := now.Add(-window)
		for len(l.failureTimes) > 0 && l.failureTimes[0].Before(cutoff) {
			l.failureTimes = l.failureTimes[1:]
		}
	}
	if maxFailures > 0 && len(l.failureTimes) >= maxFailures {
		l.lockedAt = now
	}
}

func (l *accountLockout) recordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failureTimes = nil
	l.lockedAt = time.Time{}
}

func (l *accountLockout) isLocked(now time.Time, duration time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lockedAt.IsZero() {
		return false
	}
	if duration == 0 {
		return true
	}
	return now.Sub(l.lockedAt) < duration
}

// LockoutPolicy configures Bind failure lockout, per the teacher's
// AccountLockout constructor parameters.
type LockoutPolicy struct {
	MaxFailures     int           // 0 disables lockout
	LockoutDuration time.Duration // 0 = permanent until an administrator unlocks
	FailureWindow   time.Duration // 0 = failures never expire
}

// LockoutRegistry tracks lockout state per bound principal, generalizing
// the teacher's single-account AccountLockout to a multi-principal
// directory server: every distinct Bind DN gets its own failure history.
type LockoutRegistry struct {
	policy LockoutPolicy

	mu       sync.Mutex
	accounts map[string]*accountLockout
	registry *schema.Registry
}

// NewLockoutRegistry constructs a registry enforcing policy; registry
// normalizes DNs so "cn=Alice,..." and "cn=alice,..." share lockout state.
func NewLockoutRegistry(policy LockoutPolicy, registry *schema.Registry) *LockoutRegistry {
	return &LockoutRegistry{
		policy:   policy,
		accounts: make(map[string]*accountLockout),
		registry: registry,
	}
}

func (r *LockoutRegistry) account(principal dn.DN) *accountLockout {
	key := dn.Normalize(principal, r.registry)
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.accounts[key]
	if a == nil {
		a = &accountLockout{}
		r.accounts[key] = a
	}
	return a
}

// CheckLocked returns errs.KindUnwillingToPerform if principal is
// currently locked out, per spec.md §4.5 stage 2.
func (r *LockoutRegistry) CheckLocked(principal dn.DN) error {
	if r.policy.MaxFailures == 0 {
		return nil
	}
	if r.account(principal).isLocked(time.Now(), r.policy.LockoutDuration) {
		return errs.New(errs.KindUnwillingToPerform, "account is locked due to repeated authentication failures")
	}
	return nil
}

// RecordFailure records a failed Bind for principal.
func (r *LockoutRegistry) RecordFailure(principal dn.DN) {
	if r.policy.MaxFailures == 0 {
		return
	}
	r.account(principal).recordFailure(time.Now(), r.policy.MaxFailures, r.policy.FailureWindow)
}

// RecordSuccess clears principal's failure history after a successful Bind.
func (r *LockoutRegistry) RecordSuccess(principal dn.DN) {
	r.account(principal).recordSuccess()
}

// Package session holds per-connection state and the Operation Manager
// that dispatches a bound session's requests through the Interceptor
// Chain, per spec.md §2 and §5.
//
// Grounded in the teacher's internal/server/connection.go Connection
// struct, generalized by dropping every wire-protocol concern (net.Conn,
// BER message framing, TLS state) that belongs to a transport tier this
// core does not own, and keeping the per-connection state that belongs
// here regardless of transport: the bound principal, size/time limits,
// and in-flight operation bookkeeping for Abandon.
package session

import (
	"sync"
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/interceptor"
	"github.com/obadir/oba/internal/logging"
)

// DefaultSizeLimit and DefaultTimeLimit are applied to a Session that
// does not request stricter limits of its own, per spec.md §5's size/
// time limit cancellation triggers.
const (
	DefaultSizeLimit = 0 // 0 = unlimited
	DefaultTimeLimit = 0 * time.Second
)

// Session is one bound client's state, independent of how its requests
// arrive; a wire-protocol tier owns the network connection and forwards
// parsed requests into a Session's Operation Manager.
type Session struct {
	mu            sync.Mutex
	id            string
	principal     dn.DN
	authenticated bool
	startTime     time.Time
	sizeLimit     int
	timeLimit     time.Duration
	logger        logging.Logger

	inFlight map[int]*interceptor.AbandonFlag
}

// New constructs an anonymous, unbound Session identified by id (a
// caller-assigned connection identifier, e.g. a generated request ID).
func New(id string, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.New(logging.Config{})
	}
	return &Session{
		id:        id,
		startTime: time.Now(),
		sizeLimit: DefaultSizeLimit,
		timeLimit: DefaultTimeLimit,
		logger:    logger.WithRequestID(id),
		inFlight:  make(map[int]*interceptor.AbandonFlag),
	}
}

// ID returns the session's connection identifier.
func (s *Session) ID() string { return s.id }

// Logger returns the session's logger, pre-tagged with its request ID.
func (s *Session) Logger() logging.Logger { return s.logger }

// Bind records principal as the session's authenticated identity. An
// anonymous bind passes the zero DN.
func (s *Session) Bind(principal dn.DN) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = principal
	s.authenticated = !principal.IsRoot()
}

// Principal returns the session's currently bound DN.
func (s *Session) Principal() dn.DN {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// IsAuthenticated reports whether the session completed a non-anonymous
// Bind.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// SetLimits overrides the session's size/time limits; a zero value
// means unlimited, matching RFC 4511 §4.5.1's sizeLimit/timeLimit
// semantics.
func (s *Session) SetLimits(sizeLimit int, timeLimit time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizeLimit = sizeLimit
	s.timeLimit = timeLimit
}

// Limits returns the session's current size/time limits.
func (s *Session) Limits() (int, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sizeLimit, s.timeLimit
}

// Begin registers messageID as an in-flight operation and returns the
// AbandonFlag a later Abandon(messageID) call will set.
func (s *Session) Begin(messageID int) *interceptor.AbandonFlag {
	s.mu.Lock()
	defer s.mu.Unlock()
	flag := &interceptor.AbandonFlag{}
	s.inFlight[messageID] = flag
	return flag
}

// End releases the bookkeeping for a completed or abandoned operation.
func (s *Session) End(messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, messageID)
}

// Abandon marks messageID's operation abandoned, per RFC 4511 §4.11; it
// is a no-op if no such operation is in flight (it may have already
// completed).
func (s *Session) Abandon(messageID int) {
	s.mu.Lock()
	flag := s.inFlight[messageID]
	s.mu.Unlock()
	flag.Set()
}

// Close ends the session, abandoning every operation still in flight.
func (s *Session) Close() {
	s.mu.Lock()
	flags := make([]*interceptor.AbandonFlag, 0, len(s.inFlight))
	for _, f := range s.inFlight {
		flags = append(flags, f)
	}
	s.inFlight = make(map[int]*interceptor.AbandonFlag)
	s.mu.Unlock()
	for _, f := range flags {
		f.Set()
	}
}

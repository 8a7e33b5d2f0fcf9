package access

import (
	"context"
	"sync"
	"time"

	"premises-access-control/internal/credential"
)

// Scanner runs validate-then-record as a single unit. Two concurrent scans
// of the same code serialize on a per-code mutex, so at most one of them
// observes the credential state at a time and the write is ordered after it.
type Scanner struct {
	validator *credential.Validator
	recorder  *Recorder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewScanner(validator *credential.Validator, recorder *Recorder) *Scanner {
	return &Scanner{
		validator: validator,
		recorder:  recorder,
		locks:     make(map[string]*sync.Mutex),
	}
}

// codeLock returns the mutex for code, creating it on first use. Locks are
// retained for the process lifetime; the set is bounded by the number of
// distinct codes presented.
func (s *Scanner) codeLock(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[code]
	if !ok {
		l = &sync.Mutex{}
		s.locks[code] = l
	}
	return l
}

// Scan validates code and records an access event of typ at now.
func (s *Scanner) Scan(ctx context.Context, code string, typ Type, now time.Time) (*Event, error) {
	// Reject bad access types before taking the lock or touching storage.
	if _, err := ParseType(string(typ)); err != nil {
		return nil, err
	}

	l := s.codeLock(code)
	l.Lock()
	defer l.Unlock()

	owner, err := s.validator.Validate(ctx, code, now)
	if err != nil {
		return nil, err
	}
	return s.recorder.Record(ctx, owner, typ, now)
}

package scanner

import (
	"context"

	"sync"

	"github.com/google/uuid"

	"washops/internal/domain"
	"washops/internal/metrics"
)

// Session is one open/close cycle of the scan source. It enforces the
// suppression invariant: after the first decode is forwarded, further decodes
// are dropped until Reset, so one physical scan can never trigger two
// verification attempts.
type Session struct {
	ID  string
	cfg Config
	src ScanSource
	rec metrics.Recorder

	mu        sync.Mutex
	closed    bool
	forwarded bool
}

func newSession(src ScanSource, cfg Config, rec metrics.Recorder) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := src.Open(cfg); err != nil {
		if domain.IsValidation(err) || domain.IsResourceUnavailable(err) {
			return nil, err
		}
		return nil, domain.ResourceUnavailableError{Resource: "scanner", Err: err}
	}
	return &Session{
		ID:  uuid.NewString(),
		cfg: cfg,
		src: src,
		rec: metrics.OrNop(rec),
	}, nil
}

// Forward claims the single forwarding slot for a decoded payload. It returns
// false when the session is closed, the payload is empty, or a decode was
// already forwarded this scan attempt.
func (s *Session) Forward(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.forwarded || text == "" {
		s.rec.ScanSuppressed()
		return false
	}
	s.forwarded = true
	s.rec.ScanForwarded()
	return true
}

// Reset re-arms the session for the next scan attempt. No-op once closed.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.forwarded = false
	}
}

// Next blocks for the next forwardable decode. Transient decode failures are
// swallowed; suppressed duplicates are skipped; only a forwarded payload,
// context cancellation, or source close returns.
func (s *Session) Next(ctx context.Context) (string, error) {
	for {
		text, err := s.src.Decode(ctx)
		if err == ErrSourceClosed {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err != nil {
			continue
		}
		if s.Forward(text) {
			return text, nil
		}
	}
}

// Close releases the scan source. Idempotent: closing a closed session is a
// no-op, never an error, so every teardown path can call it unconditionally.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.src.Close()
}

// Closed reports whether the session has been torn down. Verification results
// that arrive afterwards must be discarded by the caller.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Config returns the options the session was opened with.
func (s *Session) Config() Config {
	return s.cfg
}

package scanner

import (
	"context"
	"sync"

	"washops/internal/domain"
)

// ChannelSource is the production ScanSource: the camera and QR decoding run
// in the operator's browser widget, and decoded frames are pushed to the
// console over HTTP. Frames that arrive while the buffer is full are dropped,
// matching how a live camera discards frames nobody consumed.
type ChannelSource struct {
	mu     sync.Mutex
	open   bool
	frames chan frame
	done   chan struct{}
}

type frame struct {
	text string
	err  error
}

func NewChannelSource() *ChannelSource {
	return &ChannelSource{}
}

func (s *ChannelSource) Open(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return domain.ResourceUnavailableError{Resource: "scanner"}
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	s.open = true
	s.frames = make(chan frame, 8)
	s.done = make(chan struct{})
	return nil
}

// Push feeds one decoded payload into the sequence.
func (s *ChannelSource) Push(text string) error {
	return s.push(frame{text: text})
}

// Fail feeds a transient decode failure (blurred frame etc.). The session
// swallows these; they never end the sequence.
func (s *ChannelSource) Fail(err error) error {
	return s.push(frame{err: err})
}

func (s *ChannelSource) push(f frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrSourceClosed
	}
	select {
	case s.frames <- f:
	default:
		// buffer full, drop the frame
	}
	return nil
}

func (s *ChannelSource) Decode(ctx context.Context) (string, error) {
	s.mu.Lock()
	frames, done, open := s.frames, s.done, s.open
	s.mu.Unlock()

	if !open {
		return "", ErrSourceClosed
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-done:
		return "", ErrSourceClosed
	case f := <-frames:
		return f.text, f.err
	}
}

func (s *ChannelSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false
	close(s.done)
	return nil
}

package locator

import (
	"context"
	"errors"
	"sync"
)

// ErrNoReachableBase is returned when a completed discovery pass found no
// candidate answering its health check.
var ErrNoReachableBase = errors.New("locator: no reachable base")

// Session holds the candidate list and the selected base for one client
// lifetime. It is passed to the dispatcher instead of living in a global.
type Session struct {
	candidates []string
	prober     *Prober

	discoverMu sync.Mutex

	mu        sync.RWMutex
	selected  string
	completed bool
}

// NewSession creates a session over a fixed candidate list.
func NewSession(candidates []string, prober *Prober) *Session {
	return &Session{
		candidates: append([]string(nil), candidates...),
		prober:     prober,
	}
}

// Candidates returns a copy of the candidate list.
func (s *Session) Candidates() []string {
	return append([]string(nil), s.candidates...)
}

// Selected returns the adopted base, if any.
func (s *Session) Selected() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.selected != ""
}

// Discover runs the health-check pass once. A completed pass is memoized,
// whether or not it found a base. If ctx ends before the pass completes the
// result is discarded and a later call probes again.
func (s *Session) Discover(ctx context.Context) (string, error) {
	s.discoverMu.Lock()
	defer s.discoverMu.Unlock()

	s.mu.RLock()
	completed, selected := s.completed, s.selected
	s.mu.RUnlock()
	if completed {
		if selected == "" {
			return "", ErrNoReachableBase
		}
		return selected, nil
	}

	if s.prober == nil {
		return "", errors.New("locator: prober required")
	}
	base, err := s.prober.Probe(ctx, s.candidates)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	s.mu.Lock()
	s.completed = true
	if err == nil {
		s.selected = base
	}
	s.mu.Unlock()
	return base, err
}

// DiscoverAsync starts discovery in the background. Calling stop abandons the
// pass so its result is never applied; done closes once the pass has ended.
func (s *Session) DiscoverAsync(ctx context.Context) (stop func(), done <-chan struct{}) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		_, _ = s.Discover(ctx)
	}()
	return cancel, ch
}

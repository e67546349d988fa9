package client

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by Run when a newer call for the same key started before
// this one finished. Its result was discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer one")

// Supersede tracks at most one live call per key. Starting a call cancels the previous
// one for that key, and only the most recent call may apply its result.
type Supersede struct {
	mu       sync.Mutex
	gen      uint64
	inflight map[string]inflightCall
}

type inflightCall struct {
	gen    uint64
	cancel context.CancelFunc
}

// Run fetches under key and hands the result to apply, unless a newer Run for the same
// key has started in the meantime. apply runs with the Supersede lock held, so it must
// not call Run.
func Run[T any](s *Supersede, ctx context.Context, key string, fetch func(context.Context) (T, error), apply func(T)) error {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.inflight == nil {
		s.inflight = make(map[string]inflightCall)
	}
	if prev, ok := s.inflight[key]; ok {
		prev.cancel()
	}
	s.gen++
	gen := s.gen
	s.inflight[key] = inflightCall{gen: gen, cancel: cancel}
	s.mu.Unlock()

	v, err := fetch(cctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.inflight[key]; !ok || cur.gen != gen {
		return ErrSuperseded
	}
	delete(s.inflight, key)
	if err != nil {
		return err
	}
	apply(v)
	return nil
}

// Cancel aborts every in-flight call. Their Run returns ErrSuperseded.
func (s *Supersede) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, c := range s.inflight {
		c.cancel()
		delete(s.inflight, key)
	}
}

// Pending reports how many keys have a call in flight.
func (s *Supersede) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

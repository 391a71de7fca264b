package scoring

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cricket-live-scoring/internal/model"
)

// FixtureLookup resolves a match identifier against the fixture catalog. It
// returns a nil fixture and nil error when the fixture does not exist.
type FixtureLookup func(ctx context.Context, matchID uint64) (*model.Fixture, error)

// entry owns one session. Its mutex is the serialization boundary for every
// operation on that match.
type entry struct {
	mu      sync.Mutex
	session *MatchSession
}

// Registry maps match identifiers to sessions. It is created once per
// process and never evicts entries. The registry lock only guards the map;
// operations on different matches never contend on a shared lock beyond the
// brief map lookup.
type Registry struct {
	mu      sync.RWMutex
	entries map[uint64]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint64]*entry)}
}

func (r *Registry) lookup(matchID uint64) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[matchID]
}

// StartInput carries the scorer-supplied part of a start call.
type StartInput struct {
	MatchID      uint64
	Scorer       Scorer
	BattingFirst string
}

// Start returns the session for in.MatchID, creating it if needed. An
// existing session is returned unchanged and the fixture is not looked up
// again. The lookup runs outside any lock.
func (r *Registry) Start(ctx context.Context, in StartInput, lookup FixtureLookup, now time.Time) (SessionView, bool, error) {
	const op = "start"
	if e := r.lookup(in.MatchID); e != nil {
		return e.view(), false, nil
	}
	f, err := lookup(ctx, in.MatchID)
	if err != nil {
		return SessionView{}, false, fmt.Errorf("%s: fixture lookup: %w", op, err)
	}
	if f == nil {
		return SessionView{}, false, notFound(op, "fixture %d not found", in.MatchID)
	}

	r.mu.Lock()
	e, ok := r.entries[in.MatchID]
	if !ok {
		e = &entry{session: newSession(*f, in.BattingFirst, in.Scorer, now)}
		r.entries[in.MatchID] = e
	}
	r.mu.Unlock()
	return e.view(), !ok, nil
}

// update runs fn with exclusive access to the session for matchID and
// returns a view taken before the lock is released.
func (r *Registry) update(op string, matchID uint64, fn func(*MatchSession) error) (SessionView, error) {
	e := r.lookup(matchID)
	if e == nil {
		return SessionView{}, notFound(op, "no session for match %d", matchID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.session); err != nil {
		return SessionView{}, err
	}
	return e.session.view(), nil
}

// Get returns the current view of a session.
func (r *Registry) Get(matchID uint64) (SessionView, bool) {
	e := r.lookup(matchID)
	if e == nil {
		return SessionView{}, false
	}
	return e.view(), true
}

// List returns a summary per session ordered by match id.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.session.summary())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out
}

// Len reports how many sessions exist.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (e *entry) view() SessionView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.view()
}

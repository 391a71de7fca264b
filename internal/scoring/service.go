package scoring

import (
	"context"
	"log"
	"strings"
	"time"
)

// Update describes a successful mutation. It is handed to the Notifier after
// the match lock has been released.
type Update struct {
	Op      string      `json:"op"`
	MatchID uint64      `json:"matchId"`
	Session SessionView `json:"session"`
	Ball    *BallEvent  `json:"ball,omitempty"`
	At      time.Time   `json:"at"`
}

// Notifier receives updates for fan-out. Implementations must not block for
// long; failures are theirs to log.
type Notifier interface {
	Notify(ctx context.Context, u Update)
}

// Service exposes the scoring operations.
type Service struct {
	registry *Registry
	notifier Notifier
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the update sink.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a service around registry.
func NewService(registry *Registry, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) notify(ctx context.Context, op string, v SessionView, ball *BallEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, Update{Op: op, MatchID: v.MatchID, Session: v, Ball: ball, At: s.now()})
}

// Start creates the session for a fixture, or returns the existing one.
// created reports whether this call made the session.
func (s *Service) Start(ctx context.Context, in StartInput, lookup FixtureLookup) (v SessionView, created bool, err error) {
	v, created, err = s.registry.Start(ctx, in, lookup, s.now())
	if err != nil {
		return SessionView{}, false, err
	}
	if created {
		log.Printf("scoring: match %d started by %s (%s bats first)", v.MatchID, v.Scorer.ID, v.First.BattingTeam)
		s.notify(ctx, "start", v, nil)
	}
	return v, created, nil
}

// BatsmenInput names the batsmen at the crease. Nil fields are left alone.
type BatsmenInput struct {
	Striker    *string `json:"striker,omitempty"`
	NonStriker *string `json:"nonStriker,omitempty"`
	AutoAssign *bool   `json:"autoAssign,omitempty"`
}

// SetBatsmen finds or creates the named batsmen in the active innings and
// puts them at the crease.
func (s *Service) SetBatsmen(ctx context.Context, matchID uint64, in BatsmenInput) (SessionView, error) {
	const op = "set-batsmen"
	var striker, nonStriker string
	if in.Striker != nil {
		if striker = strings.TrimSpace(*in.Striker); striker == "" {
			return SessionView{}, invalid(op, "striker name is empty")
		}
	}
	if in.NonStriker != nil {
		if nonStriker = strings.TrimSpace(*in.NonStriker); nonStriker == "" {
			return SessionView{}, invalid(op, "non-striker name is empty")
		}
	}
	if striker != "" && strings.EqualFold(striker, nonStriker) {
		return SessionView{}, invalid(op, "striker and non-striker must differ")
	}
	v, err := s.registry.update(op, matchID, func(m *MatchSession) error {
		inn := m.active()
		if striker != "" {
			inn.placeAtCrease(inn.findOrCreateBatsman(striker), PositionStriker)
		}
		if nonStriker != "" {
			inn.placeAtCrease(inn.findOrCreateBatsman(nonStriker), PositionNonStriker)
		}
		if in.AutoAssign != nil {
			m.AutoAssign = *in.AutoAssign
		}
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	s.notify(ctx, op, v, nil)
	return v, nil
}

// SetBowler finds or creates the named bowler and makes them current. The
// previous bowler's partial over is kept; a newly selected bowler starts
// with an empty over in progress.
func (s *Service) SetBowler(ctx context.Context, matchID uint64, name, shirtNumber string) (SessionView, error) {
	const op = "set-bowler"
	name = strings.TrimSpace(name)
	if name == "" {
		return SessionView{}, invalid(op, "bowler name is empty")
	}
	v, err := s.registry.update(op, matchID, func(m *MatchSession) error {
		inn := m.active()
		b := inn.bowlerByName(name)
		if b == nil {
			b = &BowlingEntry{ID: newID(), Name: name}
			inn.Bowling = append(inn.Bowling, b)
		}
		if shirtNumber != "" {
			b.ShirtNumber = shirtNumber
		}
		if inn.BowlerID != b.ID {
			b.resetCurrentOver()
			inn.BowlerID = b.ID
		}
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	s.notify(ctx, op, v, nil)
	return v, nil
}

// SwapStrike exchanges the striker and non-striker.
func (s *Service) SwapStrike(ctx context.Context, matchID uint64) (SessionView, error) {
	const op = "swap-strike"
	v, err := s.registry.update(op, matchID, func(m *MatchSession) error {
		m.active().swapStrike()
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	s.notify(ctx, op, v, nil)
	return v, nil
}

// NewBatsmanInput describes an incoming batsman.
type NewBatsmanInput struct {
	Name        string   `json:"name"`
	Position    Position `json:"position"`
	ShirtNumber string   `json:"shirtNumber,omitempty"`
}

// NewBatsman always creates a fresh entry, even when the name is already
// on the card, and puts it at the given crease position.
func (s *Service) NewBatsman(ctx context.Context, matchID uint64, in NewBatsmanInput) (SessionView, error) {
	const op = "new-batsman"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return SessionView{}, invalid(op, "batsman name is empty")
	}
	if !in.Position.valid() {
		return SessionView{}, invalid(op, "position must be %q or %q", PositionStriker, PositionNonStriker)
	}
	v, err := s.registry.update(op, matchID, func(m *MatchSession) error {
		inn := m.active()
		inn.placeAtCrease(inn.addBatsman(name, in.ShirtNumber), in.Position)
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	s.notify(ctx, op, v, nil)
	return v, nil
}

// BallResult is the outcome of RecordBall.
type BallResult struct {
	Session SessionView `json:"session"`
	Ball    BallEvent   `json:"ball"`
}

// RecordBall applies one delivery to the active innings.
func (s *Service) RecordBall(ctx context.Context, matchID uint64, in BallInput) (BallResult, error) {
	const op = "record-ball"
	var ev BallEvent
	v, err := s.registry.update(op, matchID, func(m *MatchSession) error {
		inn := m.active()
		resolved, err := inn.resolve(op, in, s.now())
		if err != nil {
			return err
		}
		inn.apply(resolved)
		if in.SignalDetected != "" {
			m.appendSignal(in.SignalDetected, resolved, in.OverriddenBy)
		}
		ev = resolved.clone()
		return nil
	})
	if err != nil {
		return BallResult{}, err
	}
	s.notify(ctx, op, v, &ev)
	return BallResult{Session: v, Ball: ev}, nil
}

// SwitchInnings toggles the active innings. The innings being left is
// neither reset nor validated.
func (s *Service) SwitchInnings(ctx context.Context, matchID uint64) (SessionView, error) {
	const op = "switch-innings"
	v, err := s.registry.update(op, matchID, func(m *MatchSession) error {
		if m.Active == SideFirst {
			m.Active = SideSecond
		} else {
			m.Active = SideFirst
		}
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	log.Printf("scoring: match %d switched to %s innings", matchID, v.Active)
	s.notify(ctx, op, v, nil)
	return v, nil
}

// SetStatus moves the session to any of the three statuses. Completing a
// match stamps the completion time.
func (s *Service) SetStatus(ctx context.Context, matchID uint64, status string) (SessionView, error) {
	const op = "set-status"
	st, ok := ParseStatus(status)
	if !ok {
		return SessionView{}, invalid(op, "unknown status %q", status)
	}
	v, err := s.registry.update(op, matchID, func(m *MatchSession) error {
		m.Status = st
		if st == StatusCompleted {
			now := s.now()
			m.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	log.Printf("scoring: match %d status %s", matchID, st)
	s.notify(ctx, op, v, nil)
	return v, nil
}

// UndoResult is the outcome of Undo.
type UndoResult struct {
	Session SessionView `json:"session"`
	Removed BallEvent   `json:"removed"`
}

// Undo removes the most recent ball of the active innings.
func (s *Service) Undo(ctx context.Context, matchID uint64) (UndoResult, error) {
	const op = "undo"
	var removed BallEvent
	v, err := s.registry.update(op, matchID, func(m *MatchSession) error {
		ev, err := m.active().undo(op)
		if err != nil {
			return err
		}
		removed = ev.clone()
		return nil
	})
	if err != nil {
		return UndoResult{}, err
	}
	s.notify(ctx, op, v, &removed)
	return UndoResult{Session: v, Removed: removed}, nil
}

// Get returns the session view for matchID, if any.
func (s *Service) Get(matchID uint64) (SessionView, bool) {
	return s.registry.Get(matchID)
}

// List summarizes every session.
func (s *Service) List() []Summary {
	return s.registry.List()
}

package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/cricket-live-scoring/internal/model"
)

var testNow = time.Date(2026, 6, 13, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func str(s string) *string { return &s }

func fixtureLookup(ctx context.Context, id uint64) (*model.Fixture, error) {
	return &model.Fixture{ID: id, HomeTeam: "Riverside CC", AwayTeam: "Hillcrest CC", Venue: "The Oval"}, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []Update
}

func (n *recordingNotifier) Notify(ctx context.Context, u Update) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, u)
}

func (n *recordingNotifier) ops() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.updates))
	for i, u := range n.updates {
		out[i] = u.Op
	}
	return out
}

// newMatch starts match 1 with Smith on strike, Jones at the other end and
// Khan bowling.
func newMatch(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc := NewService(NewRegistry(), append([]Option{WithClock(fixedClock)}, opts...)...)
	ctx := context.Background()
	if _, _, err := svc.Start(ctx, StartInput{MatchID: 1, Scorer: Scorer{ID: "42", Name: "Pat"}}, fixtureLookup); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SetBatsmen(ctx, 1, BatsmenInput{Striker: str("Smith"), NonStriker: str("Jones")}); err != nil {
		t.Fatalf("set batsmen: %v", err)
	}
	if _, err := svc.SetBowler(ctx, 1, "Khan", "11"); err != nil {
		t.Fatalf("set bowler: %v", err)
	}
	return svc
}

// innings returns the live active innings of match 1. Tests only read it
// while no operation is running.
func innings(t *testing.T, svc *Service) *Innings {
	t.Helper()
	e := svc.registry.lookup(1)
	if e == nil {
		t.Fatal("match 1 has no session")
	}
	return e.session.active()
}

func record(t *testing.T, svc *Service, in BallInput) BallResult {
	t.Helper()
	res, err := svc.RecordBall(context.Background(), 1, in)
	if err != nil {
		t.Fatalf("record ball %+v: %v", in, err)
	}
	return res
}

func byName(t *testing.T, inn *Innings, name string) *BattingEntry {
	t.Helper()
	b := inn.batsmanByName(name)
	if b == nil {
		t.Fatalf("no batsman %q", name)
	}
	return b
}

func wantKind(t *testing.T, err error, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

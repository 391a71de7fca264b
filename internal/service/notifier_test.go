package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/cricket-live-scoring/internal/model"
	"github.com/iliyamo/cricket-live-scoring/internal/queue"
	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

type fakeSinks struct {
	mu        sync.Mutex
	summaries []scoring.Summary
	stream    []queue.ScoringEvent
	events    []queue.ScoringEvent
	broadcast []scoring.Update
	failAll   bool
}

func (f *fakeSinks) WriteMatchSummary(ctx context.Context, s scoring.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, s)
	if f.failAll {
		return errors.New("redis down")
	}
	return nil
}

func (f *fakeSinks) PublishEvent(ctx context.Context, ev queue.ScoringEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stream = append(f.stream, ev)
	if f.failAll {
		return "", errors.New("redis down")
	}
	return "1-0", nil
}

func (f *fakeSinks) Publish(ctx context.Context, ev queue.ScoringEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	if f.failAll {
		return errors.New("broker down")
	}
	return nil
}

func (f *fakeSinks) Broadcast(u scoring.Update) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, u)
}

func newScoringService(t *testing.T, n scoring.Notifier) *scoring.Service {
	t.Helper()
	svc := scoring.NewService(scoring.NewRegistry(), scoring.WithNotifier(n))
	lookup := func(ctx context.Context, id uint64) (*model.Fixture, error) {
		return &model.Fixture{ID: id, HomeTeam: "Riverside CC", AwayTeam: "Hillcrest CC"}, nil
	}
	if _, _, err := svc.Start(context.Background(), scoring.StartInput{MatchID: 3}, lookup); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func runUntilDrained(n *LiveNotifier) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.Run(ctx)
}

func TestLiveNotifier_DeliversToEverySink(t *testing.T) {
	sinks := &fakeSinks{}
	n := NewLiveNotifier(16)
	n.Summaries, n.Stream, n.Events, n.Hub = sinks, sinks, sinks, sinks

	svc := newScoringService(t, n)
	if _, err := svc.SetStatus(context.Background(), 3, "paused"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	runUntilDrained(n)

	if len(sinks.broadcast) != 2 || len(sinks.summaries) != 2 || len(sinks.stream) != 2 || len(sinks.events) != 2 {
		t.Fatalf("expected 2 deliveries per sink, got %d/%d/%d/%d",
			len(sinks.broadcast), len(sinks.summaries), len(sinks.stream), len(sinks.events))
	}
	if sinks.events[0].Op != "start" || sinks.events[1].Op != "set-status" {
		t.Errorf("expected events in order, got %s then %s", sinks.events[0].Op, sinks.events[1].Op)
	}
	if sinks.summaries[1].Status != scoring.StatusPaused || sinks.summaries[1].MatchID != 3 {
		t.Errorf("unexpected summary %+v", sinks.summaries[1])
	}
}

func TestLiveNotifier_SinkFailuresAreIsolated(t *testing.T) {
	sinks := &fakeSinks{failAll: true}
	n := NewLiveNotifier(4)
	n.Summaries, n.Stream, n.Events = sinks, sinks, sinks

	n.Notify(context.Background(), scoring.Update{Op: "undo", MatchID: 1, At: time.Now()})
	runUntilDrained(n)

	if len(sinks.summaries) != 1 || len(sinks.stream) != 1 || len(sinks.events) != 1 {
		t.Errorf("a failing sink must not stop the others")
	}
}

func TestLiveNotifier_DropsWhenFull(t *testing.T) {
	sinks := &fakeSinks{}
	n := NewLiveNotifier(2)
	n.Hub = sinks
	for i := 0; i < 5; i++ {
		n.Notify(context.Background(), scoring.Update{Op: "record-ball", MatchID: uint64(i)})
	}
	runUntilDrained(n)
	if len(sinks.broadcast) != 2 {
		t.Errorf("expected 2 queued updates delivered, got %d", len(sinks.broadcast))
	}
}

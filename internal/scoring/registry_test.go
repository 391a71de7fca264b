package scoring

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/iliyamo/cricket-live-scoring/internal/model"
)

func TestStart_Idempotent(t *testing.T) {
	svc := newMatch(t)
	record(t, svc, BallInput{Runs: 4})

	var calls int32
	lookup := func(ctx context.Context, id uint64) (*model.Fixture, error) {
		atomic.AddInt32(&calls, 1)
		return fixtureLookup(ctx, id)
	}
	v, created, err := svc.Start(context.Background(), StartInput{MatchID: 1, Scorer: Scorer{ID: "99", Name: "Other"}}, lookup)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if created {
		t.Errorf("second start must report an existing session")
	}
	if calls != 0 {
		t.Errorf("existing session must not look the fixture up again")
	}
	if v.Scorer.ID != "42" {
		t.Errorf("expected original scorer kept, got %q", v.Scorer.ID)
	}
	if n := len(v.Current().Balls); n != 1 {
		t.Errorf("expected ball log untouched, got %d balls", n)
	}
}

func TestStart_BattingFirst(t *testing.T) {
	tests := []struct {
		name         string
		battingFirst string
		want         string
	}{
		{"default home", "", "Riverside CC"},
		{"away named", "Hillcrest CC", "Hillcrest CC"},
		{"case insensitive", "hillcrest cc", "Hillcrest CC"},
		{"unknown team", "Somebody", "Riverside CC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewRegistry(), WithClock(fixedClock))
			v, _, err := svc.Start(context.Background(), StartInput{MatchID: 3, BattingFirst: tt.battingFirst}, fixtureLookup)
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			if v.First.BattingTeam != tt.want {
				t.Errorf("expected %s batting first, got %s", tt.want, v.First.BattingTeam)
			}
			if v.Second.BattingTeam != v.First.BowlingTeam {
				t.Errorf("second innings must be batted by the first innings' bowling side")
			}
			if v.Status != StatusLive || v.Active != SideFirst || !v.StartedAt.Equal(testNow) {
				t.Errorf("unexpected new session state: %+v", v)
			}
		})
	}
}

func TestStart_UnknownFixture(t *testing.T) {
	reg := NewRegistry()
	svc := NewService(reg)
	missing := func(ctx context.Context, id uint64) (*model.Fixture, error) { return nil, nil }

	_, _, err := svc.Start(context.Background(), StartInput{MatchID: 404}, missing)
	wantKind(t, err, ErrNotFound)
	if reg.Len() != 0 {
		t.Errorf("failed start must not create a session")
	}
}

func TestStart_LookupFailure(t *testing.T) {
	boom := errors.New("connection refused")
	failing := func(ctx context.Context, id uint64) (*model.Fixture, error) { return nil, boom }

	_, _, err := NewService(NewRegistry()).Start(context.Background(), StartInput{MatchID: 5}, failing)
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error wrapped, got %v", err)
	}
	if KindOf(err) != "" {
		t.Errorf("infrastructure failure must not carry a scoring kind, got %q", KindOf(err))
	}
}

func TestStart_ConcurrentCreatesOnce(t *testing.T) {
	svc := NewService(NewRegistry(), WithClock(fixedClock))
	const callers = 16

	var created int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := svc.Start(context.Background(), StartInput{MatchID: 8}, fixtureLookup)
			if err != nil {
				t.Errorf("start: %v", err)
				return
			}
			if ok {
				atomic.AddInt32(&created, 1)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("expected exactly one caller to create the session, got %d", created)
	}
}

func TestList_SummaryMatchesSessionView(t *testing.T) {
	svc := newMatch(t)
	record(t, svc, BallInput{Runs: 4})
	if _, err := svc.SwitchInnings(context.Background(), 1); err != nil {
		t.Fatalf("switch innings: %v", err)
	}

	v, _ := svc.Get(1)
	list := svc.List()
	if len(list) != 1 {
		t.Fatalf("expected one session, got %d", len(list))
	}
	if got, want := list[0], v.Summary(); !reflect.DeepEqual(got, want) {
		t.Errorf("list summary %+v differs from view summary %+v", got, want)
	}
}

func TestOperations_UnknownMatch(t *testing.T) {
	svc := NewService(NewRegistry())
	ctx := context.Background()
	ops := map[string]func() error{
		"set-batsmen": func() error {
			_, err := svc.SetBatsmen(ctx, 9, BatsmenInput{Striker: str("A")})
			return err
		},
		"set-bowler":     func() error { _, err := svc.SetBowler(ctx, 9, "B", ""); return err },
		"swap-strike":    func() error { _, err := svc.SwapStrike(ctx, 9); return err },
		"record-ball":    func() error { _, err := svc.RecordBall(ctx, 9, BallInput{}); return err },
		"switch-innings": func() error { _, err := svc.SwitchInnings(ctx, 9); return err },
		"set-status":     func() error { _, err := svc.SetStatus(ctx, 9, "paused"); return err },
		"undo":           func() error { _, err := svc.Undo(ctx, 9); return err },
		"new-batsman": func() error {
			_, err := svc.NewBatsman(ctx, 9, NewBatsmanInput{Name: "C", Position: PositionStriker})
			return err
		},
	}
	for name, fn := range ops {
		t.Run(name, func(t *testing.T) {
			wantKind(t, fn(), ErrNotFound)
		})
	}
	if _, ok := svc.Get(9); ok {
		t.Errorf("expected no session for match 9")
	}
}

func TestRecordBall_ConcurrentSameMatch(t *testing.T) {
	svc := newMatch(t)
	const workers, perWorker = 20, 30

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := svc.RecordBall(context.Background(), 1, BallInput{Runs: 1}); err != nil {
					t.Errorf("record ball: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	v, _ := svc.Get(1)
	score := v.Current().Score
	total := workers * perWorker
	if score.Runs != total {
		t.Errorf("expected %d runs, got %d", total, score.Runs)
	}
	if score.Overs*ballsPerOver+score.Balls != total {
		t.Errorf("expected %d legal balls, got %d.%d", total, score.Overs, score.Balls)
	}
	balls := v.Current().Balls
	for i, ev := range balls {
		wantOver, wantBall := i/ballsPerOver, i%ballsPerOver+1
		if ev.Over != wantOver || ev.Ball != wantBall {
			t.Fatalf("ball %d numbered %d.%d, expected %d.%d", i, ev.Over, ev.Ball, wantOver, wantBall)
		}
	}
}

func TestRegistry_MatchesAreIndependent(t *testing.T) {
	svc := NewService(NewRegistry(), WithClock(fixedClock))
	ctx := context.Background()
	ids := []uint64{11, 12, 13, 14}
	for _, id := range ids {
		if _, _, err := svc.Start(ctx, StartInput{MatchID: id}, fixtureLookup); err != nil {
			t.Fatalf("start %d: %v", id, err)
		}
		if _, err := svc.SetBatsmen(ctx, id, BatsmenInput{Striker: str("A"), NonStriker: str("B")}); err != nil {
			t.Fatalf("set batsmen %d: %v", id, err)
		}
		if _, err := svc.SetBowler(ctx, id, "C", ""); err != nil {
			t.Fatalf("set bowler %d: %v", id, err)
		}
	}

	var wg sync.WaitGroup
	for n, id := range ids {
		wg.Add(1)
		go func(id uint64, balls int) {
			defer wg.Done()
			for i := 0; i < balls; i++ {
				if _, err := svc.RecordBall(ctx, id, BallInput{Runs: 2}); err != nil {
					t.Errorf("match %d: %v", id, err)
					return
				}
			}
		}(id, (n+1)*10)
	}
	wg.Wait()

	list := svc.List()
	if len(list) != len(ids) {
		t.Fatalf("expected %d sessions, got %d", len(ids), len(list))
	}
	for n, s := range list {
		if s.MatchID != ids[n] {
			t.Errorf("expected list ordered by match id, got %d at %d", s.MatchID, n)
		}
		if want := (n + 1) * 20; s.Score.Runs != want {
			t.Errorf("match %d: expected %d runs, got %d", s.MatchID, want, s.Score.Runs)
		}
	}
}

func TestSessionView_IsDetached(t *testing.T) {
	svc := newMatch(t)
	res := record(t, svc, BallInput{Runs: 1, Extras: &Extras{Type: ExtrasNoBall}})
	res.Session.First.Batting[0].Runs = 100
	res.Session.First.Balls[0].Extras.Type = ExtrasWide

	v, _ := svc.Get(1)
	if v.First.Batting[0].Runs == 100 {
		t.Errorf("view mutation leaked into the session")
	}
	if v.First.Balls[0].Extras.Type != ExtrasNoBall {
		t.Errorf("ball extras shared between view and session")
	}
}

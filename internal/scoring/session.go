package scoring

import (
	"strings"
	"time"

	"github.com/iliyamo/cricket-live-scoring/internal/model"
)

// Status is the lifecycle state of a match session.
type Status string

const (
	StatusLive      Status = "live"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusLive, StatusPaused, StatusCompleted:
		return st, true
	}
	return "", false
}

// Side selects one of the two innings.
type Side string

const (
	SideFirst  Side = "first"
	SideSecond Side = "second"
)

// Scorer identifies who is scoring a match.
type Scorer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SignalEntry records an umpire signal reported alongside a ball. The
// engine stores signals as given and never interprets them.
type SignalEntry struct {
	Seq          int       `json:"seq"`
	Signal       string    `json:"signal"`
	BallID       string    `json:"ballId"`
	Innings      Side      `json:"innings"`
	Source       Source    `json:"source"`
	OverriddenBy string    `json:"overriddenBy,omitempty"`
	At           time.Time `json:"at"`
}

// MatchSession is the aggregate root for one match being scored.
type MatchSession struct {
	MatchID     uint64
	Fixture     model.Fixture
	Scorer      Scorer
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      Status
	Active      Side
	AutoAssign  bool
	Signals     []SignalEntry

	first  *Innings
	second *Innings
}

// newSession builds a live session for fixture. battingFirst names the team
// batting in the first innings; anything other than the away team means the
// home team bats first.
func newSession(f model.Fixture, battingFirst string, scorer Scorer, now time.Time) *MatchSession {
	bat, bowl := f.HomeTeam, f.AwayTeam
	if battingFirst != "" && strings.EqualFold(battingFirst, f.AwayTeam) {
		bat, bowl = bowl, bat
	}
	return &MatchSession{
		MatchID:   f.ID,
		Fixture:   f,
		Scorer:    scorer,
		StartedAt: now,
		Status:    StatusLive,
		Active:    SideFirst,
		first:     newInnings(bat, bowl),
		second:    newInnings(bowl, bat),
	}
}

func (s *MatchSession) active() *Innings {
	if s.Active == SideSecond {
		return s.second
	}
	return s.first
}

func (s *MatchSession) appendSignal(signal string, ev BallEvent, overriddenBy string) {
	s.Signals = append(s.Signals, SignalEntry{
		Seq:          len(s.Signals) + 1,
		Signal:       signal,
		BallID:       ev.ID,
		Innings:      s.Active,
		Source:       ev.Source,
		OverriddenBy: overriddenBy,
		At:           ev.RecordedAt,
	})
}

// SessionView is a deep copy of a MatchSession safe to use outside the
// registry's lock.
type SessionView struct {
	MatchID     uint64        `json:"matchId"`
	Fixture     model.Fixture `json:"fixture"`
	Scorer      Scorer        `json:"scorer"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	Status      Status        `json:"status"`
	Active      Side          `json:"activeInnings"`
	AutoAssign  bool          `json:"autoAssign"`
	Signals     []SignalEntry `json:"signals"`
	First       InningsView   `json:"first"`
	Second      InningsView   `json:"second"`
	Target      int           `json:"target,omitempty"`
}

// Current returns the view of the active innings.
func (v SessionView) Current() InningsView {
	if v.Active == SideSecond {
		return v.Second
	}
	return v.First
}

// header copies the session-level fields, leaving both innings empty.
func (s *MatchSession) header() SessionView {
	v := SessionView{
		MatchID:    s.MatchID,
		Fixture:    s.Fixture,
		Scorer:     s.Scorer,
		StartedAt:  s.StartedAt,
		Status:     s.Status,
		Active:     s.Active,
		AutoAssign: s.AutoAssign,
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		v.CompletedAt = &t
	}
	if s.Active == SideSecond {
		v.Target = s.first.Runs + 1
	}
	return v
}

func (s *MatchSession) view() SessionView {
	v := s.header()
	v.Signals = append([]SignalEntry(nil), s.Signals...)
	v.First = s.first.view()
	v.Second = s.second.view()
	return v
}

// Summary is the one-line listing form of a session.
type Summary struct {
	MatchID     uint64    `json:"matchId"`
	HomeTeam    string    `json:"homeTeam"`
	AwayTeam    string    `json:"awayTeam"`
	Status      Status    `json:"status"`
	Active      Side      `json:"activeInnings"`
	BattingTeam string    `json:"battingTeam"`
	Score       Score     `json:"score"`
	Target      int       `json:"target,omitempty"`
	ScorerName  string    `json:"scorerName"`
	StartedAt   time.Time `json:"startedAt"`
}

// Summary condenses the view to its listing form.
func (v SessionView) Summary() Summary {
	cur := v.Current()
	return Summary{
		MatchID:     v.MatchID,
		HomeTeam:    v.Fixture.HomeTeam,
		AwayTeam:    v.Fixture.AwayTeam,
		Status:      v.Status,
		Active:      v.Active,
		BattingTeam: cur.BattingTeam,
		Score:       cur.Score,
		Target:      v.Target,
		ScorerName:  v.Scorer.Name,
		StartedAt:   v.StartedAt,
	}
}

// summary builds the listing form without copying player figures or the
// ball log.
func (s *MatchSession) summary() Summary {
	v := s.header()
	inn := s.active()
	cur := InningsView{BattingTeam: inn.BattingTeam, BowlingTeam: inn.BowlingTeam, Score: inn.score()}
	if s.Active == SideSecond {
		v.Second = cur
	} else {
		v.First = cur
	}
	return v.Summary()
}

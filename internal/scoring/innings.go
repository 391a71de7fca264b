package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ballsPerOver = 6
	maxWickets   = 10
)

// newID generates entry and ball identifiers.
var newID = uuid.NewString

// ExtrasTotals is the team's extras breakdown. ShortRuns is a tally of runs
// deducted for short runs; it is not part of the innings total.
type ExtrasTotals struct {
	Wides     int `json:"wides"`
	NoBalls   int `json:"noBalls"`
	Byes      int `json:"byes"`
	LegByes   int `json:"legByes"`
	ShortRuns int `json:"shortRuns"`
}

// Total is the number of runs the extras add to the innings score.
func (e ExtrasTotals) Total() int {
	return e.Wides + e.NoBalls + e.Byes + e.LegByes
}

// Innings is one team's batting state.
//
// Invariants maintained by apply and undo:
//   - Runs equals the batsmen's credited runs plus Extras.Total() over the log.
//   - Wickets equals the number of logged balls carrying a dismissal.
//   - Overs*6+Balls equals the number of legal balls in the log.
type Innings struct {
	BattingTeam  string
	BowlingTeam  string
	Runs         int
	Wickets      int
	Overs        int
	Balls        int
	Extras       ExtrasTotals
	Batting      []*BattingEntry
	Bowling      []*BowlingEntry
	Log          []BallEvent
	StrikerID    string
	NonStrikerID string
	BowlerID     string
}

func newInnings(batting, bowling string) *Innings {
	return &Innings{BattingTeam: batting, BowlingTeam: bowling}
}

func (inn *Innings) batsman(id string) *BattingEntry {
	for _, b := range inn.Batting {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// batsmanByName returns the latest entry called name, preferring one that
// is not out so a returning name never revives a dismissed innings.
func (inn *Innings) batsmanByName(name string) *BattingEntry {
	var out *BattingEntry
	for i := len(inn.Batting) - 1; i >= 0; i-- {
		b := inn.Batting[i]
		if !strings.EqualFold(b.Name, name) {
			continue
		}
		if !b.IsOut {
			return b
		}
		if out == nil {
			out = b
		}
	}
	return out
}

func (inn *Innings) bowler(id string) *BowlingEntry {
	for _, b := range inn.Bowling {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (inn *Innings) bowlerByName(name string) *BowlingEntry {
	for _, b := range inn.Bowling {
		if strings.EqualFold(b.Name, name) {
			return b
		}
	}
	return nil
}

func (inn *Innings) addBatsman(name, shirt string) *BattingEntry {
	b := &BattingEntry{ID: newID(), Name: name, ShirtNumber: shirt}
	inn.Batting = append(inn.Batting, b)
	return b
}

func (inn *Innings) findOrCreateBatsman(name string) *BattingEntry {
	if b := inn.batsmanByName(name); b != nil && !b.IsOut {
		return b
	}
	return inn.addBatsman(name, "")
}

// placeAtCrease points pos at b and clears the label of whoever held it.
func (inn *Innings) placeAtCrease(b *BattingEntry, pos Position) {
	ptr := &inn.StrikerID
	other := &inn.NonStrikerID
	if pos == PositionNonStriker {
		ptr, other = other, ptr
	}
	if prev := inn.batsman(*ptr); prev != nil && prev != b && prev.Position == pos {
		prev.Position = PositionNone
	}
	// A batsman moving ends vacates the other pointer.
	if *other == b.ID {
		*other = ""
	}
	*ptr = b.ID
	b.Position = pos
}

func (inn *Innings) swapStrike() {
	inn.StrikerID, inn.NonStrikerID = inn.NonStrikerID, inn.StrikerID
	if b := inn.batsman(inn.StrikerID); b != nil && !b.IsOut {
		b.Position = PositionStriker
	}
	if b := inn.batsman(inn.NonStrikerID); b != nil && !b.IsOut {
		b.Position = PositionNonStriker
	}
}

// BallInput is the scorer's description of one delivery.
type BallInput struct {
	Runs              int     `json:"runs"`
	Extras            *Extras `json:"extras,omitempty"`
	Wicket            *Wicket `json:"wicket,omitempty"`
	ShortRun          bool    `json:"shortRun"`
	AssignToBatsmanID string  `json:"assignToBatsmanId,omitempty"`
	Source            Source  `json:"source,omitempty"`
	SignalDetected    string  `json:"signalDetected,omitempty"`
	OverriddenBy      string  `json:"overriddenBy,omitempty"`
}

// resolve validates in against the innings and derives the BallEvent it
// would produce. It does not mutate the innings.
func (inn *Innings) resolve(op string, in BallInput, now time.Time) (BallEvent, error) {
	if in.Runs < 0 {
		return BallEvent{}, invalid(op, "runs must not be negative")
	}
	source := in.Source
	if source == "" {
		source = SourceManual
	}
	if source != SourceManual && source != SourceCamera {
		return BallEvent{}, invalid(op, "unknown source %q", in.Source)
	}
	var extras *Extras
	if in.Extras != nil {
		if !in.Extras.Type.valid() {
			return BallEvent{}, invalid(op, "unknown extras type %q", in.Extras.Type)
		}
		if in.Extras.Runs < 0 {
			return BallEvent{}, invalid(op, "extras runs must not be negative")
		}
		e := *in.Extras
		extras = &e
	}
	if inn.StrikerID == "" {
		return BallEvent{}, precondition(op, "no striker set")
	}
	if inn.BowlerID == "" {
		return BallEvent{}, precondition(op, "no bowler set")
	}

	ev := BallEvent{
		ID:           newID(),
		Over:         inn.Overs,
		Ball:         inn.Balls + 1,
		Runs:         in.Runs,
		AdjustedRuns: in.Runs,
		Extras:       extras,
		Source:       source,
		StrikerID:    inn.StrikerID,
		NonStrikerID: inn.NonStrikerID,
		BowlerID:     inn.BowlerID,
		CreditedID:   inn.StrikerID,
		RecordedAt:   now,
	}
	if in.AssignToBatsmanID != "" {
		if inn.batsman(in.AssignToBatsmanID) == nil {
			return BallEvent{}, notFound(op, "batsman %s not in innings", in.AssignToBatsmanID)
		}
		ev.CreditedID = in.AssignToBatsmanID
	}

	if in.ShortRun && in.Runs > 0 {
		ev.ShortRun = true
		ev.ShortRunPenalty = 1
		ev.AdjustedRuns = in.Runs - 1
	}

	switch ev.extrasType() {
	case ExtrasWide:
		ev.TeamRuns = extras.widePenalty() + ev.AdjustedRuns
	case ExtrasNoBall:
		ev.TeamRuns = noBallPenalty + ev.AdjustedRuns
		ev.BatsmanRuns = ev.AdjustedRuns
	case ExtrasBye, ExtrasLegBye:
		ev.TeamRuns = ev.AdjustedRuns
		ev.Legal = true
	default:
		ev.TeamRuns = ev.AdjustedRuns
		ev.BatsmanRuns = ev.AdjustedRuns
		ev.Legal = true
	}

	if in.Wicket != nil {
		w := *in.Wicket
		if !w.Type.valid() {
			return BallEvent{}, invalid(op, "unknown dismissal type %q", w.Type)
		}
		if !w.Type.allowedWith(ev.extrasType()) {
			return BallEvent{}, invalid(op, "dismissal %s is not possible on a %s", w.Type, ev.extrasType())
		}
		if inn.Wickets >= maxWickets {
			return BallEvent{}, invalid(op, "all %d wickets have fallen", maxWickets)
		}
		if w.OutBatsmanID == "" {
			w.OutBatsmanID = inn.StrikerID
		} else if inn.batsman(w.OutBatsmanID) == nil {
			return BallEvent{}, notFound(op, "batsman %s not in innings", w.OutBatsmanID)
		}
		ev.Wicket = &w
	}
	return ev, nil
}

// apply folds a resolved event into the innings and appends it to the log.
func (inn *Innings) apply(ev BallEvent) {
	inn.Runs += ev.TeamRuns
	inn.Extras.ShortRuns += ev.ShortRunPenalty
	switch ev.extrasType() {
	case ExtrasWide:
		inn.Extras.Wides += ev.TeamRuns
	case ExtrasNoBall:
		inn.Extras.NoBalls += ev.TeamRuns - ev.BatsmanRuns
	case ExtrasBye:
		inn.Extras.Byes += ev.TeamRuns
	case ExtrasLegBye:
		inn.Extras.LegByes += ev.TeamRuns
	}

	if credited := inn.batsman(ev.CreditedID); credited != nil {
		credited.Runs += ev.BatsmanRuns
		switch ev.BatsmanRuns {
		case 4:
			credited.Fours++
		case 6:
			credited.Sixes++
		}
	}
	if ev.extrasType() != ExtrasWide {
		if striker := inn.batsman(ev.StrikerID); striker != nil {
			striker.BallsFaced++
		}
	}

	bowler := inn.bowler(ev.BowlerID)
	if ev.Wicket != nil {
		inn.Wickets++
		if out := inn.batsman(ev.Wicket.OutBatsmanID); out != nil {
			out.IsOut = true
			out.Dismissal = ev.Wicket.Type
			out.Position = PositionNone
		}
		if bowler != nil && ev.Wicket.Type.creditsBowler() {
			bowler.Wickets++
		}
	}

	conceded := bowlerConcededRuns(&ev)
	if bowler != nil {
		bowler.Runs += conceded
		bowler.CurrentOverRuns += conceded
	}

	if ev.Legal {
		inn.Balls++
		if inn.Balls == ballsPerOver {
			inn.Overs++
			inn.Balls = 0
			if bowler != nil {
				bowler.Overs++
				if bowler.CurrentOverRuns == 0 {
					bowler.Maidens++
				}
				bowler.resetCurrentOver()
			}
			inn.swapStrike()
		} else if bowler != nil {
			bowler.CurrentOverBalls++
		}
		if ev.AdjustedRuns%2 == 1 && ev.extrasType() != ExtrasWide {
			inn.swapStrike()
		}
	}

	inn.Log = append(inn.Log, ev)
}

// undo pops the last event and reverses its effect on the team score,
// extras, wickets and over counters. Player figures and crease pointers
// are left as they are.
func (inn *Innings) undo(op string) (BallEvent, error) {
	if len(inn.Log) == 0 {
		return BallEvent{}, invalid(op, "no balls recorded in this innings")
	}
	ev := inn.Log[len(inn.Log)-1]
	inn.Log = inn.Log[:len(inn.Log)-1]

	inn.Runs -= ev.TeamRuns
	inn.Extras.ShortRuns -= ev.ShortRunPenalty
	switch ev.extrasType() {
	case ExtrasWide:
		inn.Extras.Wides -= ev.TeamRuns
	case ExtrasNoBall:
		inn.Extras.NoBalls -= ev.TeamRuns - ev.BatsmanRuns
	case ExtrasBye:
		inn.Extras.Byes -= ev.TeamRuns
	case ExtrasLegBye:
		inn.Extras.LegByes -= ev.TeamRuns
	}
	if ev.Wicket != nil {
		inn.Wickets--
	}
	if ev.Legal {
		if inn.Balls > 0 {
			inn.Balls--
		} else {
			inn.Overs--
			inn.Balls = ballsPerOver - 1
		}
	}
	return ev, nil
}

// Score is the headline figures of an innings.
type Score struct {
	Runs        int          `json:"runs"`
	Wickets     int          `json:"wickets"`
	Overs       int          `json:"overs"`
	Balls       int          `json:"balls"`
	OversText   string       `json:"oversText"`
	Extras      ExtrasTotals `json:"extras"`
	ExtrasTotal int          `json:"extrasTotal"`
	RunRate     float64      `json:"runRate"`
}

func (inn *Innings) score() Score {
	s := Score{
		Runs:        inn.Runs,
		Wickets:     inn.Wickets,
		Overs:       inn.Overs,
		Balls:       inn.Balls,
		OversText:   fmt.Sprintf("%d.%d", inn.Overs, inn.Balls),
		Extras:      inn.Extras,
		ExtrasTotal: inn.Extras.Total(),
	}
	if legal := inn.Overs*ballsPerOver + inn.Balls; legal > 0 {
		s.RunRate = float64(inn.Runs) * ballsPerOver / float64(legal)
	}
	return s
}

// InningsView is an immutable copy of an innings handed out to callers.
type InningsView struct {
	BattingTeam  string         `json:"battingTeam"`
	BowlingTeam  string         `json:"bowlingTeam"`
	Score        Score          `json:"score"`
	Batting      []BattingEntry `json:"batting"`
	Bowling      []BowlingEntry `json:"bowling"`
	Balls        []BallEvent    `json:"balls"`
	StrikerID    string         `json:"strikerId,omitempty"`
	NonStrikerID string         `json:"nonStrikerId,omitempty"`
	BowlerID     string         `json:"bowlerId,omitempty"`
}

func (inn *Innings) view() InningsView {
	v := InningsView{
		BattingTeam:  inn.BattingTeam,
		BowlingTeam:  inn.BowlingTeam,
		Score:        inn.score(),
		Batting:      make([]BattingEntry, 0, len(inn.Batting)),
		Bowling:      make([]BowlingEntry, 0, len(inn.Bowling)),
		Balls:        make([]BallEvent, len(inn.Log)),
		StrikerID:    inn.StrikerID,
		NonStrikerID: inn.NonStrikerID,
		BowlerID:     inn.BowlerID,
	}
	for _, b := range inn.Batting {
		v.Batting = append(v.Batting, *b)
	}
	for _, b := range inn.Bowling {
		v.Bowling = append(v.Bowling, *b)
	}
	for i, ev := range inn.Log {
		v.Balls[i] = ev.clone()
	}
	return v
}

func (b BallEvent) clone() BallEvent {
	if b.Extras != nil {
		e := *b.Extras
		b.Extras = &e
	}
	if b.Wicket != nil {
		w := *b.Wicket
		b.Wicket = &w
	}
	return b
}

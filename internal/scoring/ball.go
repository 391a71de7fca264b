package scoring

import "time"

// ExtrasType names the kind of extra attached to a delivery.
type ExtrasType string

const (
	ExtrasWide   ExtrasType = "wide"
	ExtrasNoBall ExtrasType = "noBall"
	ExtrasBye    ExtrasType = "bye"
	ExtrasLegBye ExtrasType = "legBye"
)

func (t ExtrasType) valid() bool {
	switch t {
	case ExtrasWide, ExtrasNoBall, ExtrasBye, ExtrasLegBye:
		return true
	}
	return false
}

// DismissalType names how a batsman was dismissed.
type DismissalType string

const (
	DismissalBowled      DismissalType = "bowled"
	DismissalCaught      DismissalType = "caught"
	DismissalLBW         DismissalType = "lbw"
	DismissalStumped     DismissalType = "stumped"
	DismissalHitWicket   DismissalType = "hitWicket"
	DismissalRunOut      DismissalType = "runOut"
	DismissalRetired     DismissalType = "retired"
	DismissalTimedOut    DismissalType = "timedOut"
	DismissalObstructing DismissalType = "obstructing"
)

func (d DismissalType) valid() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped, DismissalHitWicket,
		DismissalRunOut, DismissalRetired, DismissalTimedOut, DismissalObstructing:
		return true
	}
	return false
}

// creditsBowler reports whether the bowler is credited with the wicket.
func (d DismissalType) creditsBowler() bool {
	switch d {
	case DismissalRunOut, DismissalRetired, DismissalTimedOut, DismissalObstructing:
		return false
	}
	return true
}

// allowedWith reports whether the dismissal can happen on a delivery with
// the given extras type.
func (d DismissalType) allowedWith(t ExtrasType) bool {
	switch t {
	case ExtrasNoBall:
		return !d.creditsBowler()
	case ExtrasWide:
		return d == DismissalStumped || d == DismissalHitWicket || !d.creditsBowler()
	}
	return true
}

// Source records how a delivery was captured.
type Source string

const (
	SourceManual Source = "manual"
	SourceCamera Source = "camera"
)

// Extras describes the extra attached to a ball. Runs carries the wide
// penalty and is ignored for no-balls; byes and leg-byes are counted from
// the ball's runs.
type Extras struct {
	Type ExtrasType `json:"type"`
	Runs int        `json:"runs"`
}

// Wicket describes a dismissal on a ball.
type Wicket struct {
	Type         DismissalType `json:"type"`
	OutBatsmanID string        `json:"outBatsmanId"`
}

// BallEvent is the fully resolved record of one delivery. Once appended to
// an innings' ball log it is never modified; undo pops it.
type BallEvent struct {
	ID              string    `json:"id"`
	Over            int       `json:"over"`
	Ball            int       `json:"ball"`
	Runs            int       `json:"runs"`
	AdjustedRuns    int       `json:"adjustedRuns"`
	ShortRun        bool      `json:"shortRun"`
	ShortRunPenalty int       `json:"shortRunPenalty"`
	Extras          *Extras   `json:"extras,omitempty"`
	Wicket          *Wicket   `json:"wicket,omitempty"`
	Source          Source    `json:"source"`
	StrikerID       string    `json:"strikerId"`
	NonStrikerID    string    `json:"nonStrikerId,omitempty"`
	BowlerID        string    `json:"bowlerId"`
	CreditedID      string    `json:"creditedBatsmanId"`
	BatsmanRuns     int       `json:"batsmanRuns"`
	TeamRuns        int       `json:"teamRuns"`
	Legal           bool      `json:"legal"`
	RecordedAt      time.Time `json:"recordedAt"`
}

// extrasType returns the extras type or "" for a clean delivery.
func (b *BallEvent) extrasType() ExtrasType {
	if b.Extras == nil {
		return ""
	}
	return b.Extras.Type
}

// noBallPenalty is the fixed team penalty for a no-ball.
const noBallPenalty = 1

// widePenalty is the wide penalty run count, 1 unless the scorer gave one.
func (e *Extras) widePenalty() int {
	if e.Runs > 0 {
		return e.Runs
	}
	return 1
}

// bowlerConcededRuns is the run count charged to the bowler for a delivery.
// Byes and leg-byes are charged too, matching how scorers in the club have
// always kept figures.
func bowlerConcededRuns(b *BallEvent) int {
	return b.TeamRuns
}

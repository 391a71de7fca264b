package scoring

// Position is a batsman's place at the crease.
type Position string

const (
	PositionNone       Position = ""
	PositionStriker    Position = "striker"
	PositionNonStriker Position = "nonStriker"
)

func (p Position) valid() bool {
	return p == PositionStriker || p == PositionNonStriker
}

// BattingEntry accumulates one batsman's figures for an innings.
type BattingEntry struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	ShirtNumber string        `json:"shirtNumber,omitempty"`
	Runs        int           `json:"runs"`
	BallsFaced  int           `json:"ballsFaced"`
	Fours       int           `json:"fours"`
	Sixes       int           `json:"sixes"`
	IsOut       bool          `json:"isOut"`
	Dismissal   DismissalType `json:"dismissal,omitempty"`
	Position    Position      `json:"position,omitempty"`
}

// StrikeRate is runs per hundred balls faced.
func (b BattingEntry) StrikeRate() float64 {
	if b.BallsFaced == 0 {
		return 0
	}
	return float64(b.Runs) * 100 / float64(b.BallsFaced)
}

// BowlingEntry accumulates one bowler's figures. CurrentOverBalls and
// CurrentOverRuns describe the over in progress and survive a change of
// bowler as a partial over.
type BowlingEntry struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ShirtNumber      string `json:"shirtNumber,omitempty"`
	Overs            int    `json:"overs"`
	Maidens          int    `json:"maidens"`
	Runs             int    `json:"runs"`
	Wickets          int    `json:"wickets"`
	CurrentOverBalls int    `json:"currentOverBalls"`
	CurrentOverRuns  int    `json:"currentOverRuns"`
}

// Economy is runs conceded per completed over, counting the partial over.
func (b BowlingEntry) Economy() float64 {
	balls := b.Overs*ballsPerOver + b.CurrentOverBalls
	if balls == 0 {
		return 0
	}
	return float64(b.Runs) * ballsPerOver / float64(balls)
}

func (b *BowlingEntry) resetCurrentOver() {
	b.CurrentOverBalls = 0
	b.CurrentOverRuns = 0
}

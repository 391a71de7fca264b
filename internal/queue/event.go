// Package queue defines the scoring event carried over RabbitMQ and the
// background consumer that appends those events to the scoring log.
package queue

import (
	"time"

	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

// ScoringEvent is published after every successful scoring operation.  It
// carries the headline figures so downstream consumers can log, notify or
// feed scoreboards without calling back into the service.
type ScoringEvent struct {
	Op          string `json:"op"`
	MatchID     uint64 `json:"match_id"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	Status      string `json:"status"`
	Innings     string `json:"innings"`
	BattingTeam string `json:"batting_team"`
	Runs        int    `json:"runs"`
	Wickets     int    `json:"wickets"`
	Overs       string `json:"overs"`
	Target      int    `json:"target,omitempty"`
	Scorer      string `json:"scorer"`

	// Set for record-ball and undo.
	BallID    string `json:"ball_id,omitempty"`
	BallRuns  int    `json:"ball_runs,omitempty"`
	Extras    string `json:"extras,omitempty"`
	Dismissal string `json:"dismissal,omitempty"`

	OccurredAt string `json:"occurred_at"`
}

// NewScoringEvent flattens an engine update into an event.
func NewScoringEvent(u scoring.Update) ScoringEvent {
	sum := u.Session.Summary()
	ev := ScoringEvent{
		Op:          u.Op,
		MatchID:     u.MatchID,
		HomeTeam:    sum.HomeTeam,
		AwayTeam:    sum.AwayTeam,
		Status:      string(sum.Status),
		Innings:     string(sum.Active),
		BattingTeam: sum.BattingTeam,
		Runs:        sum.Score.Runs,
		Wickets:     sum.Score.Wickets,
		Overs:       sum.Score.OversText,
		Target:      sum.Target,
		Scorer:      sum.ScorerName,
		OccurredAt:  u.At.UTC().Format(time.RFC3339),
	}
	if b := u.Ball; b != nil {
		ev.BallID = b.ID
		ev.BallRuns = b.TeamRuns
		if b.Extras != nil {
			ev.Extras = string(b.Extras.Type)
		}
		if b.Wicket != nil {
			ev.Dismissal = string(b.Wicket.Type)
		}
	}
	return ev
}

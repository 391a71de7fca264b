package model

import "time"

// Fixture is a scheduled match from the club's fixture catalog.  The
// scoring engine only reads fixtures; they are maintained elsewhere.
//
// Fields:
//  ID          – primary key identifier, also the match identifier.
//  HomeTeam    – name of the home side.
//  AwayTeam    – name of the visiting side.
//  Venue       – ground where the match is played.
//  Competition – league or cup the fixture belongs to (optional).
//  StartsAt    – scheduled start time in UTC.
//  Overs       – scheduled overs per innings (0 for unlimited).
type Fixture struct {
	ID          uint64    `json:"id"`          // fixtures.id
	HomeTeam    string    `json:"homeTeam"`    // fixtures.home_team
	AwayTeam    string    `json:"awayTeam"`    // fixtures.away_team
	Venue       string    `json:"venue"`       // fixtures.venue
	Competition string    `json:"competition"` // fixtures.competition
	StartsAt    time.Time `json:"startsAt"`    // fixtures.starts_at
	Overs       int       `json:"overs"`       // fixtures.overs_per_innings
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cricket-live-scoring/internal/model"
)

const fixtureColumns = "id, home_team, away_team, venue, COALESCE(competition,''), starts_at, overs_per_innings"

// FixtureRepo reads the fixture catalog.  Fixtures are maintained outside
// this service; nothing here writes to the table.
type FixtureRepo struct{ db *sql.DB }

func NewFixtureRepo(db *sql.DB) *FixtureRepo { return &FixtureRepo{db: db} }

// GetByID returns the fixture or ErrFixtureNotFound.
func (r *FixtureRepo) GetByID(ctx context.Context, id uint64) (*model.Fixture, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+fixtureColumns+" FROM fixtures WHERE id = ?", id)
	f, err := scanFixture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFixtureNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Lookup has the shape the scoring registry expects: a missing fixture is
// reported as (nil, nil) rather than an error.
func (r *FixtureRepo) Lookup(ctx context.Context, matchID uint64) (*model.Fixture, error) {
	f, err := r.GetByID(ctx, matchID)
	if errors.Is(err, ErrFixtureNotFound) {
		return nil, nil
	}
	return f, err
}

// FixtureFilter narrows List.  Zero values mean no restriction.
type FixtureFilter struct {
	Competition string
	Team        string
	From        time.Time
	To          time.Time
	Limit       int
	Offset      int
}

// List returns fixtures ordered by start time.
func (r *FixtureRepo) List(ctx context.Context, f FixtureFilter) ([]model.Fixture, error) {
	var (
		where []string
		args  []any
	)
	if f.Competition != "" {
		where = append(where, "competition = ?")
		args = append(args, f.Competition)
	}
	if f.Team != "" {
		where = append(where, "(home_team = ? OR away_team = ?)")
		args = append(args, f.Team, f.Team)
	}
	if !f.From.IsZero() {
		where = append(where, "starts_at >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "starts_at < ?")
		args = append(args, f.To)
	}
	q := "SELECT " + fixtureColumns + " FROM fixtures"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY starts_at, id LIMIT ? OFFSET ?"
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, max(f.Offset, 0))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Fixture{}
	for rows.Next() {
		fx, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fx)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFixture(s rowScanner) (*model.Fixture, error) {
	var f model.Fixture
	if err := s.Scan(&f.ID, &f.HomeTeam, &f.AwayTeam, &f.Venue, &f.Competition, &f.StartsAt, &f.Overs); err != nil {
		return nil, err
	}
	return &f, nil
}

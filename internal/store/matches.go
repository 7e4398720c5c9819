package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tournament-backend/internal/model"
)

var matchColumns = []string{
	"m.id",
	"m.home_team_id", "ht.name",
	"m.away_team_id", "awt.name",
	"m.tournament_id", "tr.name",
	"m.match_date", "m.home_goals", "m.away_goals", "m.status", "m.created_at",
}

func scanMatch(s scanner) (model.Match, error) {
	var m model.Match
	var date sql.NullTime
	var status string
	if err := s.Scan(
		&m.ID,
		&m.HomeTeam.ID, &m.HomeTeam.Name,
		&m.AwayTeam.ID, &m.AwayTeam.Name,
		&m.Tournament.ID, &m.Tournament.Name,
		&date, &m.HomeGoals, &m.AwayGoals, &status, &m.CreatedAt,
	); err != nil {
		return model.Match{}, err
	}
	m.MatchDate = fromNullTime(date)
	m.Status = model.MatchStatus(status)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (q *Queries) selectMatches() sq.SelectBuilder {
	return q.sb.Select(matchColumns...).
		From("matches m").
		Join("teams ht ON ht.id = m.home_team_id").
		Join("teams awt ON awt.id = m.away_team_id").
		Join("tournaments tr ON tr.id = m.tournament_id")
}

func (q *Queries) listMatches(ctx context.Context, b sq.SelectBuilder) ([]model.Match, error) {
	rows, err := q.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	out := []model.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMatch inserts m and assigns its id. Team and tournament names are
// not written; reload the match to obtain them.
func (q *Queries) CreateMatch(ctx context.Context, m *model.Match) error {
	m.CreatedAt = ts(m.CreatedAt)
	return q.row(ctx, q.sb.Insert("matches").
		Columns("home_team_id", "away_team_id", "tournament_id", "match_date",
			"home_goals", "away_goals", "status", "created_at").
		Values(m.HomeTeam.ID, m.AwayTeam.ID, m.Tournament.ID, toNullTime(m.MatchDate),
			m.HomeGoals, m.AwayGoals, string(m.Status), m.CreatedAt).
		Suffix("RETURNING id"), &m.ID)
}

func (q *Queries) GetMatch(ctx context.Context, id int64) (model.Match, error) {
	list, err := q.listMatches(ctx, q.selectMatches().Where(sq.Eq{"m.id": id}))
	if err != nil {
		return model.Match{}, err
	}
	if len(list) == 0 {
		return model.Match{}, ErrNotFound
	}
	return list[0], nil
}

// UpdateMatch writes the mutable fields: date, goals and status.
func (q *Queries) UpdateMatch(ctx context.Context, m model.Match) error {
	res, err := q.exec(ctx, q.sb.Update("matches").
		Set("match_date", toNullTime(m.MatchDate)).
		Set("home_goals", m.HomeGoals).
		Set("away_goals", m.AwayGoals).
		Set("status", string(m.Status)).
		Where(sq.Eq{"id": m.ID}))
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	return expectOne(res)
}

func (q *Queries) DeleteMatch(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, q.sb.Delete("matches").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return expectOne(res)
}

func (q *Queries) ListMatches(ctx context.Context) ([]model.Match, error) {
	return q.listMatches(ctx, q.selectMatches().OrderBy("m.id"))
}

func (q *Queries) ListMatchesByTournament(ctx context.Context, tournamentID int64) ([]model.Match, error) {
	return q.listMatches(ctx, q.selectMatches().
		Where(sq.Eq{"m.tournament_id": tournamentID}).
		OrderBy("m.id"))
}

// ListMatchesByTeam returns matches where teamID plays home or away.
func (q *Queries) ListMatchesByTeam(ctx context.Context, teamID int64) ([]model.Match, error) {
	return q.listMatches(ctx, q.selectMatches().
		Where(sq.Or{sq.Eq{"m.home_team_id": teamID}, sq.Eq{"m.away_team_id": teamID}}).
		OrderBy("m.id"))
}

func (q *Queries) ListMatchesByStatus(ctx context.Context, status model.MatchStatus) ([]model.Match, error) {
	return q.listMatches(ctx, q.selectMatches().
		Where(sq.Eq{"m.status": string(status)}).
		OrderBy("m.id"))
}

// ListMatchesBetween returns matches dated within [start, end], both inclusive.
func (q *Queries) ListMatchesBetween(ctx context.Context, start, end time.Time) ([]model.Match, error) {
	return q.listMatches(ctx, q.selectMatches().
		Where(sq.GtOrEq{"m.match_date": ts(start)}).
		Where(sq.LtOrEq{"m.match_date": ts(end)}).
		OrderBy("m.match_date", "m.id"))
}

// TeamRecord tallies completed matches of teamID within tournamentID.
func (q *Queries) TeamRecord(ctx context.Context, tournamentID, teamID int64) (model.TeamRecord, error) {
	rec := model.TeamRecord{TournamentID: tournamentID, TeamID: teamID}
	rows, err := q.query(ctx, q.sb.Select("home_team_id", "home_goals", "away_goals").
		From("matches").
		Where(sq.Eq{"tournament_id": tournamentID, "status": string(model.MatchCompleted)}).
		Where(sq.Or{sq.Eq{"home_team_id": teamID}, sq.Eq{"away_team_id": teamID}}))
	if err != nil {
		return rec, fmt.Errorf("query team record: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var homeID int64
		var home, away int
		if err := rows.Scan(&homeID, &home, &away); err != nil {
			return rec, fmt.Errorf("scan team record: %w", err)
		}
		own, other := away, home
		if homeID == teamID {
			own, other = home, away
		}
		rec.Played++
		switch {
		case own > other:
			rec.Wins++
		case own < other:
			rec.Losses++
		default:
			rec.Draws++
		}
	}
	return rec, rows.Err()
}

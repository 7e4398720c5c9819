package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tournament-backend/internal/model"
)

var tournamentColumns = []string{
	"tr.id", "tr.name", "tr.description", "tr.start_date", "tr.end_date",
	"tr.max_teams", "tr.status", "tr.created_at",
}

func scanTournament(s scanner) (model.Tournament, error) {
	var t model.Tournament
	var status string
	if err := s.Scan(&t.ID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &t.MaxTeams, &status, &t.CreatedAt); err != nil {
		return model.Tournament{}, err
	}
	t.Status = model.TournamentStatus(status)
	t.StartDate = day(t.StartDate.UTC())
	t.EndDate = day(t.EndDate.UTC())
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (q *Queries) selectTournaments() sq.SelectBuilder {
	return q.sb.Select(tournamentColumns...).From("tournaments tr")
}

// listTournaments runs b without loading participating teams.
func (q *Queries) listTournaments(ctx context.Context, b sq.SelectBuilder) ([]model.Tournament, error) {
	rows, err := q.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("query tournaments: %w", err)
	}
	defer rows.Close()

	out := []model.Tournament{}
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) getTournament(ctx context.Context, b sq.SelectBuilder) (model.Tournament, error) {
	list, err := q.listTournaments(ctx, b)
	if err != nil {
		return model.Tournament{}, err
	}
	if len(list) == 0 {
		return model.Tournament{}, ErrNotFound
	}
	return list[0], nil
}

func (q *Queries) CreateTournament(ctx context.Context, t *model.Tournament) error {
	t.StartDate = day(t.StartDate)
	t.EndDate = day(t.EndDate)
	t.CreatedAt = ts(t.CreatedAt)
	return q.row(ctx, q.sb.Insert("tournaments").
		Columns("name", "description", "start_date", "end_date", "max_teams", "status", "created_at").
		Values(t.Name, t.Description, t.StartDate, t.EndDate, t.MaxTeams, string(t.Status), t.CreatedAt).
		Suffix("RETURNING id"), &t.ID)
}

// GetTournament loads a tournament with its participating teams.
func (q *Queries) GetTournament(ctx context.Context, id int64) (model.Tournament, error) {
	t, err := q.getTournament(ctx, q.selectTournaments().Where(sq.Eq{"tr.id": id}))
	if err != nil {
		return model.Tournament{}, err
	}
	if t.Teams, err = q.ListTournamentTeams(ctx, id); err != nil {
		return model.Tournament{}, err
	}
	return t, nil
}

// LockTournament loads the tournament row and holds it for the rest of the tx.
func (q *Queries) LockTournament(ctx context.Context, id int64) (model.Tournament, error) {
	return q.getTournament(ctx, q.forUpdate(q.selectTournaments().Where(sq.Eq{"tr.id": id})))
}

func (q *Queries) TournamentExists(ctx context.Context, id int64) (bool, error) {
	return q.exists(ctx, q.sb.Select().From("tournaments").Where(sq.Eq{"id": id}))
}

func (q *Queries) UpdateTournament(ctx context.Context, t model.Tournament) error {
	res, err := q.exec(ctx, q.sb.Update("tournaments").
		Set("name", t.Name).
		Set("description", t.Description).
		Set("start_date", day(t.StartDate)).
		Set("end_date", day(t.EndDate)).
		Set("max_teams", t.MaxTeams).
		Set("status", string(t.Status)).
		Where(sq.Eq{"id": t.ID}))
	if err != nil {
		return fmt.Errorf("update tournament: %w", err)
	}
	return expectOne(res)
}

// DeleteTournament removes the tournament; its matches and registrations cascade.
func (q *Queries) DeleteTournament(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, q.sb.Delete("tournaments").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	return expectOne(res)
}

func (q *Queries) ListTournaments(ctx context.Context) ([]model.Tournament, error) {
	return q.listTournaments(ctx, q.selectTournaments().OrderBy("tr.id"))
}

func (q *Queries) ListTournamentsByStatus(ctx context.Context, status model.TournamentStatus) ([]model.Tournament, error) {
	return q.listTournaments(ctx, q.selectTournaments().
		Where(sq.Eq{"tr.status": string(status)}).
		OrderBy("tr.id"))
}

// ListTournamentsStartingAfter returns tournaments whose start date is strictly after date.
func (q *Queries) ListTournamentsStartingAfter(ctx context.Context, date time.Time) ([]model.Tournament, error) {
	return q.listTournaments(ctx, q.selectTournaments().
		Where(sq.Gt{"tr.start_date": day(date)}).
		OrderBy("tr.start_date", "tr.id"))
}

func (q *Queries) ListTournamentsByTeam(ctx context.Context, teamID int64) ([]model.Tournament, error) {
	return q.listTournaments(ctx, q.selectTournaments().
		Join("tournament_teams tt ON tt.tournament_id = tr.id").
		Where(sq.Eq{"tt.team_id": teamID}).
		OrderBy("tr.id"))
}

func (q *Queries) SearchTournaments(ctx context.Context, keyword string) ([]model.Tournament, error) {
	return q.listTournaments(ctx, q.selectTournaments().
		Where(containsIgnoreCase("tr.name", likePattern(keyword))).
		OrderBy("tr.id"))
}

/* ===================== REGISTRATIONS ===================== */

func (q *Queries) ListTournamentTeams(ctx context.Context, tournamentID int64) ([]model.Team, error) {
	return q.listTeams(ctx, q.selectTeams().
		Join("tournament_teams tt ON tt.team_id = t.id").
		Where(sq.Eq{"tt.tournament_id": tournamentID}).
		OrderBy("t.id"))
}

func (q *Queries) CountTournamentTeams(ctx context.Context, tournamentID int64) (int, error) {
	return q.count(ctx, q.sb.Select().From("tournament_teams").
		Where(sq.Eq{"tournament_id": tournamentID}))
}

func (q *Queries) IsTournamentTeam(ctx context.Context, tournamentID, teamID int64) (bool, error) {
	return q.exists(ctx, q.sb.Select().From("tournament_teams").
		Where(sq.Eq{"tournament_id": tournamentID, "team_id": teamID}))
}

// AddTournamentTeam registers teamID only while fewer than maxTeams teams are
// registered. It reports false when the guard rejected the insert.
func (q *Queries) AddTournamentTeam(ctx context.Context, tournamentID, teamID int64, maxTeams int) (bool, error) {
	guarded := q.sb.Select().
		Column("CAST(? AS BIGINT)", tournamentID).
		Column("CAST(? AS BIGINT)", teamID).
		Where(sq.Expr("(SELECT COUNT(*) FROM tournament_teams WHERE tournament_id = ?) < ?", tournamentID, maxTeams))
	res, err := q.exec(ctx, q.sb.Insert("tournament_teams").
		Columns("tournament_id", "team_id").
		Select(guarded))
	if err != nil {
		return false, fmt.Errorf("add tournament team: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (q *Queries) RemoveTournamentTeam(ctx context.Context, tournamentID, teamID int64) error {
	res, err := q.exec(ctx, q.sb.Delete("tournament_teams").
		Where(sq.Eq{"tournament_id": tournamentID, "team_id": teamID}))
	if err != nil {
		return fmt.Errorf("remove tournament team: %w", err)
	}
	return expectOne(res)
}

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"tournament-backend/internal/model"
)

func scanTeam(s scanner) (model.Team, error) {
	var t model.Team
	if err := s.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return model.Team{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (q *Queries) selectTeams() sq.SelectBuilder {
	return q.sb.Select("t.id", "t.name", "t.created_at").From("teams t")
}

// listTeams runs b and loads the roster of every returned team.
func (q *Queries) listTeams(ctx context.Context, b sq.SelectBuilder) ([]model.Team, error) {
	rows, err := q.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	teams := []model.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range teams {
		if teams[i].Players, err = q.ListTeamPlayers(ctx, teams[i].ID); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (q *Queries) getTeam(ctx context.Context, where sq.Sqlizer) (model.Team, error) {
	var t model.Team
	if err := q.row(ctx, q.selectTeams().Where(where), &t.ID, &t.Name, &t.CreatedAt); err != nil {
		return model.Team{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	players, err := q.ListTeamPlayers(ctx, t.ID)
	if err != nil {
		return model.Team{}, err
	}
	t.Players = players
	return t, nil
}

func (q *Queries) CreateTeam(ctx context.Context, t *model.Team) error {
	t.CreatedAt = ts(t.CreatedAt)
	return q.row(ctx, q.sb.Insert("teams").
		Columns("name", "created_at").
		Values(t.Name, t.CreatedAt).
		Suffix("RETURNING id"), &t.ID)
}

// GetTeam loads a team with its players.
func (q *Queries) GetTeam(ctx context.Context, id int64) (model.Team, error) {
	return q.getTeam(ctx, sq.Eq{"t.id": id})
}

func (q *Queries) GetTeamByName(ctx context.Context, name string) (model.Team, error) {
	return q.getTeam(ctx, sq.Eq{"t.name": name})
}

func (q *Queries) TeamExists(ctx context.Context, id int64) (bool, error) {
	return q.exists(ctx, q.sb.Select().From("teams").Where(sq.Eq{"id": id}))
}

func (q *Queries) TeamNameExists(ctx context.Context, name string) (bool, error) {
	return q.exists(ctx, q.sb.Select().From("teams").Where(sq.Eq{"name": name}))
}

func (q *Queries) UpdateTeam(ctx context.Context, t model.Team) error {
	res, err := q.exec(ctx, q.sb.Update("teams").
		Set("name", t.Name).
		Where(sq.Eq{"id": t.ID}))
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	return expectOne(res)
}

// DeleteTeam removes the team; rosters, registrations and matches cascade.
func (q *Queries) DeleteTeam(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, q.sb.Delete("teams").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return expectOne(res)
}

func (q *Queries) ListTeams(ctx context.Context) ([]model.Team, error) {
	return q.listTeams(ctx, q.selectTeams().OrderBy("t.id"))
}

func (q *Queries) SearchTeams(ctx context.Context, keyword string) ([]model.Team, error) {
	return q.listTeams(ctx, q.selectTeams().
		Where(containsIgnoreCase("t.name", likePattern(keyword))).
		OrderBy("t.id"))
}

// ListTeamsByPlayer returns the teams whose roster contains userID.
func (q *Queries) ListTeamsByPlayer(ctx context.Context, userID int64) ([]model.Team, error) {
	return q.listTeams(ctx, q.selectTeams().
		Join("team_players tp ON tp.team_id = t.id").
		Where(sq.Eq{"tp.user_id": userID}).
		OrderBy("t.id"))
}

/* ===================== ROSTER ===================== */

func (q *Queries) ListTeamPlayers(ctx context.Context, teamID int64) ([]model.User, error) {
	return q.listUsers(ctx, q.selectUsers().
		Join("team_players tp ON tp.user_id = u.id").
		Where(sq.Eq{"tp.team_id": teamID}).
		OrderBy("u.id"))
}

func (q *Queries) IsTeamPlayer(ctx context.Context, teamID, userID int64) (bool, error) {
	return q.exists(ctx, q.sb.Select().From("team_players").
		Where(sq.Eq{"team_id": teamID, "user_id": userID}))
}

// AddTeamPlayer inserts the roster row linking both sides of the relation.
func (q *Queries) AddTeamPlayer(ctx context.Context, teamID, userID int64) error {
	if _, err := q.exec(ctx, q.sb.Insert("team_players").
		Columns("team_id", "user_id").
		Values(teamID, userID)); err != nil {
		return fmt.Errorf("add team player: %w", err)
	}
	return nil
}

func (q *Queries) RemoveTeamPlayer(ctx context.Context, teamID, userID int64) error {
	res, err := q.exec(ctx, q.sb.Delete("team_players").
		Where(sq.Eq{"team_id": teamID, "user_id": userID}))
	if err != nil {
		return fmt.Errorf("remove team player: %w", err)
	}
	return expectOne(res)
}

package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"tournament-backend/internal/auth"
	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/model"
	"tournament-backend/internal/store"
)

type TeamService struct {
	base
}

func NewTeamService(d Deps) *TeamService {
	return &TeamService{base: newBase(d)}
}

func (s *TeamService) ListTeams(ctx context.Context) ([]model.Team, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Team, error) {
		return q.ListTeams(ctx)
	})
}

func (s *TeamService) GetTeam(ctx context.Context, id int64) (model.Team, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return model.Team{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Team, error) {
		t, err := q.GetTeam(ctx, id)
		return t, notFound(err, apperrors.ErrTeamNotFound)
	})
}

func (s *TeamService) GetTeamByName(ctx context.Context, name string) (model.Team, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return model.Team{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Team, error) {
		t, err := q.GetTeamByName(ctx, name)
		return t, notFound(err, apperrors.ErrTeamNotFound)
	})
}

func (s *TeamService) CreateTeam(ctx context.Context, in CreateTeamInput) (model.Team, error) {
	if _, err := auth.Require(ctx, auth.AnyRole); err != nil {
		return model.Team{}, err
	}
	team, err := run(ctx, s.store, func(q *store.Queries) (model.Team, error) {
		exists, err := q.TeamNameExists(ctx, in.Name)
		if err != nil {
			return model.Team{}, err
		}
		if exists {
			return model.Team{}, apperrors.ErrTeamNameAlreadyExists
		}
		t := model.Team{Name: in.Name, CreatedAt: s.now(), Players: []model.User{}}
		if err := q.CreateTeam(ctx, &t); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return model.Team{}, apperrors.ErrTeamNameAlreadyExists
			}
			return model.Team{}, err
		}
		return t, s.audit(ctx, q, "team.create", "team %d %q", t.ID, t.Name)
	})
	if err != nil {
		return model.Team{}, err
	}
	log.Info().Int64("team_id", team.ID).Str("name", team.Name).Msg("team created")
	return team, nil
}

// UpdateTeam renames the team when a new, different name is given. The row is
// written even when nothing changed.
func (s *TeamService) UpdateTeam(ctx context.Context, id int64, in UpdateTeamInput) (model.Team, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return model.Team{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Team, error) {
		t, err := q.GetTeam(ctx, id)
		if err != nil {
			return model.Team{}, notFound(err, apperrors.ErrTeamNotFound)
		}
		if in.Name != nil && *in.Name != t.Name {
			exists, err := q.TeamNameExists(ctx, *in.Name)
			if err != nil {
				return model.Team{}, err
			}
			if exists {
				return model.Team{}, apperrors.ErrTeamNameAlreadyExists
			}
			t.Name = *in.Name
		}
		if err := q.UpdateTeam(ctx, t); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return model.Team{}, apperrors.ErrTeamNameAlreadyExists
			}
			return model.Team{}, err
		}
		return t, s.audit(ctx, q, "team.update", "team %d %q", t.ID, t.Name)
	})
}

func (s *TeamService) DeleteTeam(ctx context.Context, id int64) error {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return err
	}
	return s.store.Run(ctx, func(q *store.Queries) error {
		if err := q.DeleteTeam(ctx, id); err != nil {
			return notFound(err, apperrors.ErrTeamNotFound)
		}
		return s.audit(ctx, q, "team.delete", "team %d", id)
	})
}

func (s *TeamService) AddPlayer(ctx context.Context, teamID, playerID int64) (model.Team, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return model.Team{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Team, error) {
		if err := s.checkTeamAndPlayer(ctx, q, teamID, playerID); err != nil {
			return model.Team{}, err
		}
		member, err := q.IsTeamPlayer(ctx, teamID, playerID)
		if err != nil {
			return model.Team{}, err
		}
		if member {
			return model.Team{}, apperrors.ErrPlayerAlreadyInTeam
		}
		if err := q.AddTeamPlayer(ctx, teamID, playerID); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return model.Team{}, apperrors.ErrPlayerAlreadyInTeam
			}
			return model.Team{}, err
		}
		if err := s.audit(ctx, q, "team.add_player", "team %d player %d", teamID, playerID); err != nil {
			return model.Team{}, err
		}
		return q.GetTeam(ctx, teamID)
	})
}

func (s *TeamService) RemovePlayer(ctx context.Context, teamID, playerID int64) (model.Team, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return model.Team{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Team, error) {
		if err := s.checkTeamAndPlayer(ctx, q, teamID, playerID); err != nil {
			return model.Team{}, err
		}
		if err := q.RemoveTeamPlayer(ctx, teamID, playerID); err != nil {
			return model.Team{}, notFound(err, apperrors.ErrPlayerNotInTeam)
		}
		if err := s.audit(ctx, q, "team.remove_player", "team %d player %d", teamID, playerID); err != nil {
			return model.Team{}, err
		}
		return q.GetTeam(ctx, teamID)
	})
}

func (s *TeamService) checkTeamAndPlayer(ctx context.Context, q *store.Queries, teamID, playerID int64) error {
	exists, err := q.TeamExists(ctx, teamID)
	if err := mustExist(exists, err, apperrors.ErrTeamNotFound); err != nil {
		return err
	}
	exists, err = q.UserExists(ctx, playerID)
	return mustExist(exists, err, apperrors.ErrUserNotFound)
}

func (s *TeamService) ListTeamsByPlayer(ctx context.Context, playerID int64) ([]model.Team, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Team, error) {
		exists, err := q.UserExists(ctx, playerID)
		if err := mustExist(exists, err, apperrors.ErrUserNotFound); err != nil {
			return nil, err
		}
		return q.ListTeamsByPlayer(ctx, playerID)
	})
}

func (s *TeamService) SearchTeams(ctx context.Context, keyword string) ([]model.Team, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	if blank(keyword) {
		return nil, apperrors.ErrEmptySearchKeyword
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Team, error) {
		return q.SearchTeams(ctx, keyword)
	})
}

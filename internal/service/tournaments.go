package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"tournament-backend/internal/auth"
	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/events"
	"tournament-backend/internal/metrics"
	"tournament-backend/internal/model"
	"tournament-backend/internal/store"
)

type TournamentService struct {
	base
}

func NewTournamentService(d Deps) *TournamentService {
	return &TournamentService{base: newBase(d)}
}

type registration struct {
	TournamentID int64 `json:"tournamentId"`
	TeamID       int64 `json:"teamId"`
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]model.Tournament, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Tournament, error) {
		return q.ListTournaments(ctx)
	})
}

// GetTournament loads the tournament with its participating teams.
func (s *TournamentService) GetTournament(ctx context.Context, id int64) (model.Tournament, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return model.Tournament{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Tournament, error) {
		t, err := q.GetTournament(ctx, id)
		return t, notFound(err, apperrors.ErrTournamentNotFound)
	})
}

func (s *TournamentService) CreateTournament(ctx context.Context, in CreateTournamentInput) (model.Tournament, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return model.Tournament{}, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return model.Tournament{}, invalidStatus()
	}
	start, end := dateOnly(in.StartDate), dateOnly(in.EndDate)
	if start.After(end) {
		return model.Tournament{}, apperrors.ErrInvalidTournamentDate
	}
	t := model.Tournament{
		Name:        in.Name,
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
		MaxTeams:    model.DefaultMaxTeams,
		Status:      model.TournamentOpen,
		Teams:       []model.Team{},
	}
	if in.MaxTeams != nil {
		t.MaxTeams = *in.MaxTeams
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if t.MaxTeams < 1 {
		return model.Tournament{}, apperrors.Validation("Validation failed", map[string]string{"maxTeams": "must be at least 1"})
	}

	t, err := run(ctx, s.store, func(q *store.Queries) (model.Tournament, error) {
		t.CreatedAt = s.now()
		if err := q.CreateTournament(ctx, &t); err != nil {
			return model.Tournament{}, err
		}
		return t, s.audit(ctx, q, "tournament.create", "tournament %d %q", t.ID, t.Name)
	})
	if err != nil {
		return model.Tournament{}, err
	}
	log.Info().Int64("tournament_id", t.ID).Str("name", t.Name).Msg("tournament created")
	s.publish(ctx, events.TournamentCreated, map[string]any{"tournamentId": t.ID, "name": t.Name})
	return t, nil
}

func (s *TournamentService) UpdateTournament(ctx context.Context, id int64, in UpdateTournamentInput) (model.Tournament, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return model.Tournament{}, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return model.Tournament{}, invalidStatus()
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Tournament, error) {
		t, err := q.LockTournament(ctx, id)
		if err != nil {
			return model.Tournament{}, notFound(err, apperrors.ErrTournamentNotFound)
		}
		if in.Name != nil {
			t.Name = *in.Name
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.StartDate != nil {
			t.StartDate = dateOnly(*in.StartDate)
		}
		if in.EndDate != nil {
			t.EndDate = dateOnly(*in.EndDate)
		}
		if in.MaxTeams != nil {
			t.MaxTeams = *in.MaxTeams
		}
		if in.Status != nil {
			t.Status = *in.Status
		}
		if t.StartDate.After(t.EndDate) {
			return model.Tournament{}, apperrors.ErrInvalidTournamentDate
		}
		if in.MaxTeams != nil {
			registered, err := q.CountTournamentTeams(ctx, id)
			if err != nil {
				return model.Tournament{}, err
			}
			if t.MaxTeams < 1 || t.MaxTeams < registered {
				return model.Tournament{}, apperrors.Validation("Validation failed", map[string]string{
					"maxTeams": fmt.Sprintf("must be at least %d", max(1, registered)),
				})
			}
		}
		if err := q.UpdateTournament(ctx, t); err != nil {
			return model.Tournament{}, err
		}
		if err := s.audit(ctx, q, "tournament.update", "tournament %d", id); err != nil {
			return model.Tournament{}, err
		}
		if t.Teams, err = q.ListTournamentTeams(ctx, id); err != nil {
			return model.Tournament{}, err
		}
		return t, nil
	})
}

// DeleteTournament removes the tournament together with its matches.
func (s *TournamentService) DeleteTournament(ctx context.Context, id int64) error {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return err
	}
	err := s.store.Run(ctx, func(q *store.Queries) error {
		if err := q.DeleteTournament(ctx, id); err != nil {
			return notFound(err, apperrors.ErrTournamentNotFound)
		}
		return s.audit(ctx, q, "tournament.delete", "tournament %d", id)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.TournamentDeleted, map[string]any{"tournamentId": id})
	return nil
}

// RegisterTeam adds teamID to the tournament. Checks run in a fixed order:
// tournament exists, team exists, tournament open, capacity left, not yet
// registered.
func (s *TournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID int64) error {
	if _, err := auth.Require(ctx, auth.AnyRole); err != nil {
		return err
	}
	err := s.store.Run(ctx, func(q *store.Queries) error {
		t, err := q.LockTournament(ctx, tournamentID)
		if err != nil {
			return notFound(err, apperrors.ErrTournamentNotFound)
		}
		exists, err := q.TeamExists(ctx, teamID)
		if err := mustExist(exists, err, apperrors.ErrTeamNotFound); err != nil {
			return err
		}
		if t.Status != model.TournamentOpen {
			return apperrors.ErrTournamentNotOpen
		}
		registered, err := q.CountTournamentTeams(ctx, tournamentID)
		if err != nil {
			return err
		}
		if registered >= t.MaxTeams {
			return apperrors.ErrTournamentFull
		}
		already, err := q.IsTournamentTeam(ctx, tournamentID, teamID)
		if err != nil {
			return err
		}
		if already {
			return apperrors.ErrTeamAlreadyInTournament
		}
		ok, err := q.AddTournamentTeam(ctx, tournamentID, teamID, t.MaxTeams)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return apperrors.ErrTeamAlreadyInTournament
			}
			return err
		}
		if !ok {
			return apperrors.ErrTournamentFull
		}
		return s.audit(ctx, q, "tournament.register_team", "tournament %d team %d", tournamentID, teamID)
	})
	if err != nil {
		outcome := "error"
		if e, ok := apperrors.As(err); ok {
			outcome = string(e.Code)
		}
		metrics.Registrations.WithLabelValues(outcome).Inc()
		return err
	}
	metrics.Registrations.WithLabelValues("accepted").Inc()
	log.Info().Int64("tournament_id", tournamentID).Int64("team_id", teamID).Msg("team registered")
	s.publish(ctx, events.TeamRegistered, registration{TournamentID: tournamentID, TeamID: teamID})
	return nil
}

func (s *TournamentService) RemoveTeam(ctx context.Context, tournamentID, teamID int64) error {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return err
	}
	err := s.store.Run(ctx, func(q *store.Queries) error {
		exists, err := q.TournamentExists(ctx, tournamentID)
		if err := mustExist(exists, err, apperrors.ErrTournamentNotFound); err != nil {
			return err
		}
		exists, err = q.TeamExists(ctx, teamID)
		if err := mustExist(exists, err, apperrors.ErrTeamNotFound); err != nil {
			return err
		}
		if err := q.RemoveTournamentTeam(ctx, tournamentID, teamID); err != nil {
			return notFound(err, apperrors.ErrTeamNotInTournament)
		}
		return s.audit(ctx, q, "tournament.remove_team", "tournament %d team %d", tournamentID, teamID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.TeamUnregistered, registration{TournamentID: tournamentID, TeamID: teamID})
	return nil
}

func (s *TournamentService) ListByStatus(ctx context.Context, status model.TournamentStatus) ([]model.Tournament, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Tournament, error) {
		return q.ListTournamentsByStatus(ctx, status)
	})
}

// ListUpcoming returns tournaments starting strictly after today.
func (s *TournamentService) ListUpcoming(ctx context.Context) ([]model.Tournament, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Tournament, error) {
		return q.ListTournamentsStartingAfter(ctx, s.today())
	})
}

func (s *TournamentService) ListByTeam(ctx context.Context, teamID int64) ([]model.Tournament, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Tournament, error) {
		exists, err := q.TeamExists(ctx, teamID)
		if err := mustExist(exists, err, apperrors.ErrTeamNotFound); err != nil {
			return nil, err
		}
		return q.ListTournamentsByTeam(ctx, teamID)
	})
}

func (s *TournamentService) Search(ctx context.Context, keyword string) ([]model.Tournament, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	if blank(keyword) {
		return nil, apperrors.ErrEmptySearchKeyword
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Tournament, error) {
		return q.SearchTournaments(ctx, keyword)
	})
}

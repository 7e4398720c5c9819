package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tournament-backend/internal/auth"
	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/events"
	"tournament-backend/internal/metrics"
	"tournament-backend/internal/model"
	"tournament-backend/internal/store"
)

type MatchService struct {
	base
}

func NewMatchService(d Deps) *MatchService {
	return &MatchService{base: newBase(d)}
}

type matchResult struct {
	MatchID      int64 `json:"matchId"`
	TournamentID int64 `json:"tournamentId"`
	HomeGoals    int   `json:"homeGoals"`
	AwayGoals    int   `json:"awayGoals"`
}

func negativeGoals(home, away *int) bool {
	return (home != nil && *home < 0) || (away != nil && *away < 0)
}

func (s *MatchService) ListMatches(ctx context.Context) ([]model.Match, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Match, error) {
		return q.ListMatches(ctx)
	})
}

func (s *MatchService) GetMatch(ctx context.Context, id int64) (model.Match, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return model.Match{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Match, error) {
		m, err := q.GetMatch(ctx, id)
		return m, notFound(err, apperrors.ErrMatchNotFound)
	})
}

// CreateMatch schedules a match between two teams registered in the same
// tournament.
func (s *MatchService) CreateMatch(ctx context.Context, in CreateMatchInput) (model.Match, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return model.Match{}, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return model.Match{}, invalidStatus()
	}
	m, err := run(ctx, s.store, func(q *store.Queries) (model.Match, error) {
		home, err := q.GetTeam(ctx, in.HomeTeamID)
		if err != nil {
			return model.Match{}, notFound(err, apperrors.ErrTeamNotFound)
		}
		away, err := q.GetTeam(ctx, in.AwayTeamID)
		if err != nil {
			return model.Match{}, notFound(err, apperrors.ErrTeamNotFound)
		}
		exists, err := q.TournamentExists(ctx, in.TournamentID)
		if err := mustExist(exists, err, apperrors.ErrTournamentNotFound); err != nil {
			return model.Match{}, err
		}
		if home.ID == away.ID {
			return model.Match{}, apperrors.ErrSameTeamMatch
		}
		for _, teamID := range []int64{home.ID, away.ID} {
			ok, err := q.IsTournamentTeam(ctx, in.TournamentID, teamID)
			if err != nil {
				return model.Match{}, err
			}
			if !ok {
				return model.Match{}, apperrors.ErrTeamsNotInTournament
			}
		}
		if negativeGoals(in.HomeGoals, in.AwayGoals) {
			return model.Match{}, apperrors.ErrInvalidMatchResult
		}

		m := model.Match{
			HomeTeam:   model.Ref{ID: home.ID},
			AwayTeam:   model.Ref{ID: away.ID},
			Tournament: model.Ref{ID: in.TournamentID},
			Status:     model.MatchScheduled,
			CreatedAt:  s.now(),
		}
		if in.MatchDate != nil {
			d := in.MatchDate.UTC().Truncate(time.Second)
			m.MatchDate = &d
		}
		if in.HomeGoals != nil {
			m.HomeGoals = *in.HomeGoals
		}
		if in.AwayGoals != nil {
			m.AwayGoals = *in.AwayGoals
		}
		if in.Status != nil {
			m.Status = *in.Status
		}
		if err := q.CreateMatch(ctx, &m); err != nil {
			return model.Match{}, err
		}
		if err := s.audit(ctx, q, "match.create", "match %d tournament %d", m.ID, in.TournamentID); err != nil {
			return model.Match{}, err
		}
		return q.GetMatch(ctx, m.ID)
	})
	if err != nil {
		return model.Match{}, err
	}
	log.Info().Int64("match_id", m.ID).Int64("tournament_id", m.Tournament.ID).Msg("match created")
	s.publish(ctx, events.MatchCreated, map[string]any{
		"matchId":      m.ID,
		"tournamentId": m.Tournament.ID,
		"homeTeamId":   m.HomeTeam.ID,
		"awayTeamId":   m.AwayTeam.ID,
	})
	return m, nil
}

// UpdateMatch applies the non-nil fields. Teams and tournament stay fixed.
func (s *MatchService) UpdateMatch(ctx context.Context, id int64, in UpdateMatchInput) (model.Match, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return model.Match{}, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return model.Match{}, invalidStatus()
	}
	return run(ctx, s.store, func(q *store.Queries) (model.Match, error) {
		m, err := q.GetMatch(ctx, id)
		if err != nil {
			return model.Match{}, notFound(err, apperrors.ErrMatchNotFound)
		}
		if negativeGoals(in.HomeGoals, in.AwayGoals) {
			return model.Match{}, apperrors.ErrInvalidMatchResult
		}
		if in.MatchDate != nil {
			d := in.MatchDate.UTC().Truncate(time.Second)
			m.MatchDate = &d
		}
		if in.HomeGoals != nil {
			m.HomeGoals = *in.HomeGoals
		}
		if in.AwayGoals != nil {
			m.AwayGoals = *in.AwayGoals
		}
		if in.Status != nil {
			m.Status = *in.Status
		}
		if err := q.UpdateMatch(ctx, m); err != nil {
			return model.Match{}, err
		}
		return m, s.audit(ctx, q, "match.update", "match %d", id)
	})
}

// UpdateResult records the final score and marks the match completed.
func (s *MatchService) UpdateResult(ctx context.Context, id int64, homeGoals, awayGoals int) (model.Match, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return model.Match{}, err
	}
	if homeGoals < 0 || awayGoals < 0 {
		return model.Match{}, apperrors.ErrInvalidMatchResult
	}
	m, err := run(ctx, s.store, func(q *store.Queries) (model.Match, error) {
		m, err := q.GetMatch(ctx, id)
		if err != nil {
			return model.Match{}, notFound(err, apperrors.ErrMatchNotFound)
		}
		m.HomeGoals, m.AwayGoals = homeGoals, awayGoals
		m.Status = model.MatchCompleted
		if err := q.UpdateMatch(ctx, m); err != nil {
			return model.Match{}, err
		}
		return m, s.audit(ctx, q, "match.result", "match %d %d-%d", id, homeGoals, awayGoals)
	})
	if err != nil {
		return model.Match{}, err
	}
	metrics.MatchResults.Inc()
	log.Info().Int64("match_id", id).Str("result", m.Result()).Msg("match result recorded")
	s.publish(ctx, events.MatchResultRecorded, matchResult{
		MatchID:      m.ID,
		TournamentID: m.Tournament.ID,
		HomeGoals:    m.HomeGoals,
		AwayGoals:    m.AwayGoals,
	})
	return m, nil
}

func (s *MatchService) DeleteMatch(ctx context.Context, id int64) error {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return err
	}
	return s.store.Run(ctx, func(q *store.Queries) error {
		if err := q.DeleteMatch(ctx, id); err != nil {
			return notFound(err, apperrors.ErrMatchNotFound)
		}
		return s.audit(ctx, q, "match.delete", "match %d", id)
	})
}

func (s *MatchService) ListByTournament(ctx context.Context, tournamentID int64) ([]model.Match, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Match, error) {
		exists, err := q.TournamentExists(ctx, tournamentID)
		if err := mustExist(exists, err, apperrors.ErrTournamentNotFound); err != nil {
			return nil, err
		}
		return q.ListMatchesByTournament(ctx, tournamentID)
	})
}

func (s *MatchService) ListByTeam(ctx context.Context, teamID int64) ([]model.Match, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Match, error) {
		exists, err := q.TeamExists(ctx, teamID)
		if err := mustExist(exists, err, apperrors.ErrTeamNotFound); err != nil {
			return nil, err
		}
		return q.ListMatchesByTeam(ctx, teamID)
	})
}

func (s *MatchService) ListByStatus(ctx context.Context, status model.MatchStatus) ([]model.Match, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Match, error) {
		return q.ListMatchesByStatus(ctx, status)
	})
}

// ListByPeriod returns matches dated within [start, end].
func (s *MatchService) ListByPeriod(ctx context.Context, start, end time.Time) ([]model.Match, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, apperrors.Validation("Start date cannot be after end date", nil)
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.Match, error) {
		return q.ListMatchesBetween(ctx, start.UTC(), end.UTC())
	})
}

func (s *MatchService) ListToday(ctx context.Context) ([]model.Match, error) {
	start := s.today()
	return s.ListByPeriod(ctx, start, start.Add(24*time.Hour-time.Second))
}

// TeamRecord tallies wins, draws and losses of a registered team across the
// completed matches of a tournament.
func (s *MatchService) TeamRecord(ctx context.Context, tournamentID, teamID int64) (model.TeamRecord, error) {
	if _, err := auth.Require(ctx, auth.Authenticated); err != nil {
		return model.TeamRecord{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.TeamRecord, error) {
		exists, err := q.TournamentExists(ctx, tournamentID)
		if err := mustExist(exists, err, apperrors.ErrTournamentNotFound); err != nil {
			return model.TeamRecord{}, err
		}
		exists, err = q.TeamExists(ctx, teamID)
		if err := mustExist(exists, err, apperrors.ErrTeamNotFound); err != nil {
			return model.TeamRecord{}, err
		}
		return q.TeamRecord(ctx, tournamentID, teamID)
	})
}

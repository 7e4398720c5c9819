package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/model"
	"tournament-backend/internal/service"
)

// Goals carry no min tag: negative values reach the service and are
// reported as INVALID_MATCH_RESULT.
type createMatchRequest struct {
	HomeTeamID   int64   `json:"homeTeamId" binding:"required"`
	AwayTeamID   int64   `json:"awayTeamId" binding:"required"`
	TournamentID int64   `json:"tournamentId" binding:"required"`
	MatchDate    *string `json:"matchDate"`
	HomeGoals    *int    `json:"homeGoals"`
	AwayGoals    *int    `json:"awayGoals"`
	Status       *string `json:"status" binding:"omitempty,oneof=SCHEDULED IN_PROGRESS COMPLETED POSTPONED CANCELLED TO_BE_SCHEDULED"`
}

type updateMatchRequest struct {
	MatchDate *string `json:"matchDate"`
	HomeGoals *int    `json:"homeGoals"`
	AwayGoals *int    `json:"awayGoals"`
	Status    *string `json:"status" binding:"omitempty,oneof=SCHEDULED IN_PROGRESS COMPLETED POSTPONED CANCELLED TO_BE_SCHEDULED"`
}

type resultRequest struct {
	HomeGoals *int `json:"homeGoals" binding:"required"`
	AwayGoals *int `json:"awayGoals" binding:"required"`
}

func matchStatus(s *string) *model.MatchStatus {
	if s == nil {
		return nil
	}
	st := model.MatchStatus(*s)
	return &st
}

func writeMatches(c *gin.Context, list []model.Match, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapViews(list, newMatchView))
}

func writeMatch(c *gin.Context, status int, m model.Match, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, newMatchView(m))
}

func listMatches(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.ListMatches(c.Request.Context())
		writeMatches(c, list, err)
	}
}

func getMatch(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		m, err := s.GetMatch(c.Request.Context(), id)
		writeMatch(c, http.StatusOK, m, err)
	}
}

func createMatch(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMatchRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		date, err := parseOptionalDateTime("matchDate", req.MatchDate)
		if err != nil {
			writeError(c, err)
			return
		}
		m, err := s.CreateMatch(c.Request.Context(), service.CreateMatchInput{
			HomeTeamID:   req.HomeTeamID,
			AwayTeamID:   req.AwayTeamID,
			TournamentID: req.TournamentID,
			MatchDate:    date,
			HomeGoals:    req.HomeGoals,
			AwayGoals:    req.AwayGoals,
			Status:       matchStatus(req.Status),
		})
		writeMatch(c, http.StatusCreated, m, err)
	}
}

func updateMatch(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		var req updateMatchRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		date, err := parseOptionalDateTime("matchDate", req.MatchDate)
		if err != nil {
			writeError(c, err)
			return
		}
		m, err := s.UpdateMatch(c.Request.Context(), id, service.UpdateMatchInput{
			MatchDate: date,
			HomeGoals: req.HomeGoals,
			AwayGoals: req.AwayGoals,
			Status:    matchStatus(req.Status),
		})
		writeMatch(c, http.StatusOK, m, err)
	}
}

func updateResult(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		var req resultRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		m, err := s.UpdateResult(c.Request.Context(), id, *req.HomeGoals, *req.AwayGoals)
		writeMatch(c, http.StatusOK, m, err)
	}
}

func deleteMatch(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		if err := s.DeleteMatch(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		noContent(c)
	}
}

func matchesByTournament(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "tournamentId")
		if err != nil {
			writeError(c, err)
			return
		}
		list, err := s.ListByTournament(c.Request.Context(), id)
		writeMatches(c, list, err)
	}
}

func matchesByTeam(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "teamId")
		if err != nil {
			writeError(c, err)
			return
		}
		list, err := s.ListByTeam(c.Request.Context(), id)
		writeMatches(c, list, err)
	}
}

func matchesByStatus(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := model.MatchStatus(c.Param("status"))
		if !status.Valid() {
			writeError(c, apperrors.InvalidParameter("status"))
			return
		}
		list, err := s.ListByStatus(c.Request.Context(), status)
		writeMatches(c, list, err)
	}
}

func matchesByPeriod(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, err := queryDateTime(c, "start")
		if err != nil {
			writeError(c, err)
			return
		}
		end, err := queryDateTime(c, "end")
		if err != nil {
			writeError(c, err)
			return
		}
		list, err := s.ListByPeriod(c.Request.Context(), start, end)
		writeMatches(c, list, err)
	}
}

func todayMatches(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.ListToday(c.Request.Context())
		writeMatches(c, list, err)
	}
}

func teamRecord(s *service.MatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := idParam(c, "tournamentId")
		if err != nil {
			writeError(c, err)
			return
		}
		teamID, err := idParam(c, "teamId")
		if err != nil {
			writeError(c, err)
			return
		}
		rec, err := s.TeamRecord(c.Request.Context(), tournamentID, teamID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, recordView(rec))
	}
}

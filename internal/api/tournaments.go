package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/model"
	"tournament-backend/internal/service"
)

type createTournamentRequest struct {
	Name        string  `json:"name" binding:"required,notblank,min=3,max=100"`
	Description string  `json:"description" binding:"max=1000"`
	StartDate   string  `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate     string  `json:"endDate" binding:"required,datetime=2006-01-02"`
	MaxTeams    *int    `json:"maxTeams" binding:"omitempty,min=1"`
	Status      *string `json:"status" binding:"omitempty,oneof=OPEN SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
}

type updateTournamentRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	StartDate   *string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	MaxTeams    *int    `json:"maxTeams" binding:"omitempty,min=1"`
	Status      *string `json:"status" binding:"omitempty,oneof=OPEN SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
}

func tournamentStatus(s *string) *model.TournamentStatus {
	if s == nil {
		return nil
	}
	st := model.TournamentStatus(*s)
	return &st
}

func listTournaments(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.ListTournaments(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(list, newTournamentView))
	}
}

func getTournament(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		t, err := s.GetTournament(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newTournamentView(t))
	}
}

func createTournament(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTournamentRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		start, err := parseDate("startDate", req.StartDate)
		if err != nil {
			writeError(c, err)
			return
		}
		end, err := parseDate("endDate", req.EndDate)
		if err != nil {
			writeError(c, err)
			return
		}
		t, err := s.CreateTournament(c.Request.Context(), service.CreateTournamentInput{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   start,
			EndDate:     end,
			MaxTeams:    req.MaxTeams,
			Status:      tournamentStatus(req.Status),
		})
		if err != nil {
			writeError(c, err)
			return
		}
		created(c, newTournamentView(t))
	}
}

func updateTournament(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		var req updateTournamentRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		in := service.UpdateTournamentInput{
			Name:        req.Name,
			Description: req.Description,
			MaxTeams:    req.MaxTeams,
			Status:      tournamentStatus(req.Status),
		}
		if in.StartDate, err = parseOptionalDate("startDate", req.StartDate); err != nil {
			writeError(c, err)
			return
		}
		if in.EndDate, err = parseOptionalDate("endDate", req.EndDate); err != nil {
			writeError(c, err)
			return
		}
		t, err := s.UpdateTournament(c.Request.Context(), id, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newTournamentView(t))
	}
}

func deleteTournament(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		if err := s.DeleteTournament(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		noContent(c)
	}
}

func registrationChange(fn func(c *gin.Context, tournamentID, teamID int64) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		teamID, err := idParam(c, "teamId")
		if err != nil {
			writeError(c, err)
			return
		}
		if err := fn(c, tournamentID, teamID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

func registerTeam(s *service.TournamentService) gin.HandlerFunc {
	return registrationChange(func(c *gin.Context, tournamentID, teamID int64) error {
		return s.RegisterTeam(c.Request.Context(), tournamentID, teamID)
	})
}

func unregisterTeam(s *service.TournamentService) gin.HandlerFunc {
	return registrationChange(func(c *gin.Context, tournamentID, teamID int64) error {
		return s.RemoveTeam(c.Request.Context(), tournamentID, teamID)
	})
}

func tournamentsByStatus(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := model.TournamentStatus(c.Param("status"))
		if !status.Valid() {
			writeError(c, apperrors.InvalidParameter("status"))
			return
		}
		list, err := s.ListByStatus(c.Request.Context(), status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(list, newTournamentView))
	}
}

func upcomingTournaments(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.ListUpcoming(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(list, newTournamentView))
	}
}

func tournamentsByTeam(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "teamId")
		if err != nil {
			writeError(c, err)
			return
		}
		list, err := s.ListByTeam(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(list, newTournamentView))
	}
}

func searchTournaments(s *service.TournamentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.Search(c.Request.Context(), c.Query("keyword"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(list, newTournamentView))
	}
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tournament-backend/internal/service"
)

type teamRequest struct {
	Name string `json:"name" binding:"required,notblank,min=2,max=50"`
}

type updateTeamRequest struct {
	Name *string `json:"name" binding:"omitempty,notblank,min=2,max=50"`
}

func listTeams(s *service.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := s.ListTeams(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(teams, newTeamView))
	}
}

func getTeam(s *service.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		t, err := s.GetTeam(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newTeamView(t))
	}
}

func getTeamByName(s *service.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := s.GetTeamByName(c.Request.Context(), c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newTeamView(t))
	}
}

func createTeam(s *service.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		t, err := s.CreateTeam(c.Request.Context(), service.CreateTeamInput{Name: req.Name})
		if err != nil {
			writeError(c, err)
			return
		}
		created(c, newTeamView(t))
	}
}

func updateTeam(s *service.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		var req updateTeamRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		t, err := s.UpdateTeam(c.Request.Context(), id, service.UpdateTeamInput{Name: req.Name})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newTeamView(t))
	}
}

func deleteTeam(s *service.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		if err := s.DeleteTeam(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		noContent(c)
	}
}

// rosterChange handles both adding and removing a player.
func rosterChange(fn func(c *gin.Context, teamID, playerID int64) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		playerID, err := idParam(c, "playerId")
		if err != nil {
			writeError(c, err)
			return
		}
		if err := fn(c, teamID, playerID); err != nil {
			writeError(c, err)
		}
	}
}

func addPlayer(s *service.TeamService) gin.HandlerFunc {
	return rosterChange(func(c *gin.Context, teamID, playerID int64) error {
		t, err := s.AddPlayer(c.Request.Context(), teamID, playerID)
		if err == nil {
			c.JSON(http.StatusOK, newTeamView(t))
		}
		return err
	})
}

func removePlayer(s *service.TeamService) gin.HandlerFunc {
	return rosterChange(func(c *gin.Context, teamID, playerID int64) error {
		t, err := s.RemovePlayer(c.Request.Context(), teamID, playerID)
		if err == nil {
			c.JSON(http.StatusOK, newTeamView(t))
		}
		return err
	})
}

func teamsByPlayer(s *service.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "playerId")
		if err != nil {
			writeError(c, err)
			return
		}
		teams, err := s.ListTeamsByPlayer(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(teams, newTeamView))
	}
}

func searchTeams(s *service.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := s.SearchTeams(c.Request.Context(), c.Query("keyword"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(teams, newTeamView))
	}
}

// Package api exposes the services over a gin JSON API mounted at /api.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tournament-backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Teams       *service.TeamService
	Tournaments *service.TournamentService
	Matches     *service.MatchService
	Users       *service.UserService
	Auth        *service.AuthService
	Audit       *service.AuditService
	Tokens      TokenParser
	Store       Pinger

	CookieSecure bool
	TokenTTL     time.Duration
}

func NewRouter(d Deps) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger())

	r.GET("/healthz", func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/auth/register", register(d.Auth))
		api.POST("/auth/login", login(d.Auth, d.CookieSecure, int(d.TokenTTL.Seconds())))
		api.POST("/auth/logout", logout(d.CookieSecure))

		authed := api.Group("", Authenticate(d.Tokens, d.Users))

		authed.GET("/auth/me", me(d.Auth))

		// teams
		authed.GET("/teams", listTeams(d.Teams))
		authed.GET("/teams/search", searchTeams(d.Teams))
		authed.GET("/teams/name/:name", getTeamByName(d.Teams))
		authed.GET("/teams/player/:playerId", teamsByPlayer(d.Teams))
		authed.GET("/teams/:id", getTeam(d.Teams))
		authed.POST("/teams", createTeam(d.Teams))
		authed.PUT("/teams/:id", updateTeam(d.Teams))
		authed.DELETE("/teams/:id", deleteTeam(d.Teams))
		authed.POST("/teams/:id/players/:playerId", addPlayer(d.Teams))
		authed.DELETE("/teams/:id/players/:playerId", removePlayer(d.Teams))

		// tournaments
		authed.GET("/tournaments", listTournaments(d.Tournaments))
		authed.GET("/tournaments/search", searchTournaments(d.Tournaments))
		authed.GET("/tournaments/upcoming", upcomingTournaments(d.Tournaments))
		authed.GET("/tournaments/status/:status", tournamentsByStatus(d.Tournaments))
		authed.GET("/tournaments/team/:teamId", tournamentsByTeam(d.Tournaments))
		authed.GET("/tournaments/:id", getTournament(d.Tournaments))
		authed.POST("/tournaments", createTournament(d.Tournaments))
		authed.PUT("/tournaments/:id", updateTournament(d.Tournaments))
		authed.DELETE("/tournaments/:id", deleteTournament(d.Tournaments))
		authed.POST("/tournaments/:id/teams/:teamId", registerTeam(d.Tournaments))
		authed.DELETE("/tournaments/:id/teams/:teamId", unregisterTeam(d.Tournaments))

		// matches
		authed.GET("/matches", listMatches(d.Matches))
		authed.GET("/matches/today", todayMatches(d.Matches))
		authed.GET("/matches/period", matchesByPeriod(d.Matches))
		authed.GET("/matches/status/:status", matchesByStatus(d.Matches))
		authed.GET("/matches/team/:teamId", matchesByTeam(d.Matches))
		authed.GET("/matches/tournament/:tournamentId", matchesByTournament(d.Matches))
		authed.GET("/matches/tournament/:tournamentId/teams/:teamId/record", teamRecord(d.Matches))
		authed.GET("/matches/:id", getMatch(d.Matches))
		authed.POST("/matches", createMatch(d.Matches))
		authed.PUT("/matches/:id", updateMatch(d.Matches))
		authed.PUT("/matches/:id/result", updateResult(d.Matches))
		authed.DELETE("/matches/:id", deleteMatch(d.Matches))

		// users
		authed.GET("/users", listUsers(d.Users))
		authed.GET("/users/search", searchUsers(d.Users))
		authed.GET("/users/username/:username", getUserByUsername(d.Users))
		authed.GET("/users/:id", getUser(d.Users))
		authed.PUT("/users/:id", updateUser(d.Users))
		authed.PUT("/users/:id/profile", updateProfile(d.Users))
		authed.DELETE("/users/:id", deleteUser(d.Users))

		admin := authed.Group("/admin", RequireAdmin())
		{
			admin.GET("/logs", adminLogs(d.Audit))
		}
	}
	return r
}

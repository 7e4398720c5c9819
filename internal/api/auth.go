package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tournament-backend/internal/service"
)

type loginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required,notblank,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

func register(users *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		if _, err := users.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User registered successfully!"})
	}
}

func login(a *service.AuthService, cookieSecure bool, ttlSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		res, err := a.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, res.Token, ttlSeconds, "/", "", cookieSecure, true)
		c.JSON(http.StatusOK, gin.H{
			"token":    res.Token,
			"type":     "Bearer",
			"username": res.User.Username,
			"email":    res.User.Email,
			"role":     res.User.Role,
		})
	}
}

func logout(cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(cookieName, "", -1, "/", "", cookieSecure, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

func me(a *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := a.Me(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newUserView(u))
	}
}

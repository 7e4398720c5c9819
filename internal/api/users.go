package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/model"
	"tournament-backend/internal/service"
)

type updateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,notblank,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     *string `json:"role" binding:"omitempty,oneof=ROLE_USER ROLE_ADMIN"`
}

type profileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=50"`
	LastName  *string `json:"lastName" binding:"omitempty,max=50"`
	BirthDate *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	City      *string `json:"city" binding:"omitempty,max=100"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
}

func writeUser(c *gin.Context, u model.User, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(u))
}

func listUsers(s *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.ListUsers(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(users, newUserView))
	}
}

func searchUsers(s *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.SearchUsers(c.Request.Context(), c.Query("keyword"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(users, newUserView))
	}
}

func getUser(s *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		u, err := s.GetUser(c.Request.Context(), id)
		writeUser(c, u, err)
	}
}

func getUserByUsername(s *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := s.GetUserByUsername(c.Request.Context(), c.Param("username"))
		writeUser(c, u, err)
	}
}

func updateUser(s *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		var req updateUserRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		in := service.UpdateUserInput{Username: req.Username, Email: req.Email}
		if req.Role != nil {
			r := model.Role(*req.Role)
			in.Role = &r
		}
		u, err := s.UpdateUser(c.Request.Context(), id, in)
		writeUser(c, u, err)
	}
}

func updateProfile(s *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		var req profileRequest
		if err := bind(c, &req); err != nil {
			writeError(c, err)
			return
		}
		birth, err := parseOptionalDate("birthDate", req.BirthDate)
		if err != nil {
			writeError(c, err)
			return
		}
		u, err := s.UpdateProfile(c.Request.Context(), id, service.UpdateProfileInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			BirthDate: birth,
			Phone:     req.Phone,
			City:      req.City,
			Bio:       req.Bio,
		})
		writeUser(c, u, err)
	}
}

func deleteUser(s *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			writeError(c, err)
			return
		}
		if err := s.DeleteUser(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		noContent(c)
	}
}

// GET /api/admin/logs?limit=N
func adminLogs(s *service.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(c, apperrors.InvalidParameter("limit"))
				return
			}
			limit = n
		}
		entries, err := s.ListAudit(c.Request.Context(), limit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapViews(entries, func(e model.AuditEntry) auditView { return auditView(e) }))
	}
}

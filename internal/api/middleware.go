package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tournament-backend/internal/auth"
	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/metrics"
)

const (
	cookieName      = "tournament_token"
	RequestIDHeader = "X-Request-ID"
)

// TokenParser verifies an access token and returns its subject.
type TokenParser interface {
	Parse(token string) (string, error)
}

// PrincipalLoader resolves a token subject to the current principal.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, username string) (auth.Principal, error)
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	tok, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return tok
}

// Authenticate requires a valid token in the Authorization header or the
// auth cookie and stores the principal in the request context.
func Authenticate(tokens TokenParser, users PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			writeError(c, apperrors.New(apperrors.CodeAuthenticationFailed, "Missing authentication token"))
			return
		}
		username, err := tokens.Parse(tok)
		if err != nil {
			log.Debug().Err(err).Msg("token rejected")
			writeError(c, apperrors.New(apperrors.CodeAuthenticationFailed, "Invalid or expired token"))
			return
		}
		p, err := users.LoadPrincipal(c.Request.Context(), username)
		if err != nil {
			writeError(c, apperrors.New(apperrors.CodeAuthenticationFailed, "Invalid or expired token"))
			return
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.FromContext(c.Request.Context())
		if !ok || !p.IsAdmin() {
			writeError(c, apperrors.ErrAccessDenied)
			return
		}
		c.Next()
	}
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger writes one line per request and records the HTTP metrics.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		ev := log.Info()
		if status >= 500 {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("request_id", c.GetString("request_id")).
			Msg("request")
	}
}

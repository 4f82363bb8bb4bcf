package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/oralrisk/internal/application/dto"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

var (
	usernameKey  = string(constants.ContextKeyUsername)
	sessionIDKey = string(constants.ContextKeySessionID)
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// Username returns the authenticated user set by RequireSession or RequireBearer.
func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}

// SessionID returns the session id set by RequireSession or LoadSession.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// LoadSession resolves the session cookie when present and never blocks the request.
func LoadSession(sessions service.SessionStore, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolveSession(c, sessions, log)
		c.Next()
	}
}

// RequireSession gates browser pages: without a live session the client is redirected to /login.
// RequireSession 校验会话，未登录时重定向到登录页。
func RequireSession(sessions service.SessionStore, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Username(c) == "" && !resolveSession(c, sessions, log) {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func resolveSession(c *gin.Context, sessions service.SessionStore, log logger.Logger) bool {
	id, err := c.Cookie(constants.SessionCookieName)
	if err != nil || id == "" {
		return false
	}
	sess, err := sessions.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, errors.ErrSessionNotFound) {
			log.Error(c.Request.Context(), "Session lookup failed", err)
		}
		return false
	}
	setUser(c, sess.Username)
	c.Set(sessionIDKey, sess.ID)
	return true
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*service.TokenClaims, error)
}

// RequireBearer protects API routes with an HS256 bearer token.
// RequireBearer 校验 API 持有者令牌。
func RequireBearer(tokens TokenVerifier, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractBearer(c.GetHeader("Authorization"))
		if raw == "" {
			dto.SendError(c, errors.ErrUnauthorized.WithMessage("missing bearer token"))
			return
		}
		claims, err := tokens.VerifyToken(c.Request.Context(), raw)
		if err != nil {
			log.Warn(c.Request.Context(), "Bearer token rejected", logger.Fields{"error": err.Error()})
			dto.SendError(c, errors.ErrUnauthorized.WithCause(err))
			return
		}
		setUser(c, claims.Subject)
		c.Next()
	}
}

func setUser(c *gin.Context, username string) {
	c.Set(usernameKey, username)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), constants.ContextKeyUsername, username))
}

// extractBearer extracts the token from the Authorization header.
func extractBearer(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/identity"
)

// HeaderUserID carries the acting user's id, set by the authenticating
// proxy in front of the API.
const HeaderUserID = "X-User-ID"

// identify puts the acting user into the request context. Requests without
// the header are anonymous; an unknown user is rejected.
func (s *server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			c.Next()
			return
		}
		ok, err := identity.Exists(s.db, userID)
		if err != nil {
			s.fail(c, err)
			c.Abort()
			return
		}
		if !ok {
			s.fail(c, fault.Unauthorized("unknown user %s", userID))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), userID))
		c.Next()
	}
}

// actor returns the signed-in user or writes an Unauthorized response.
func (s *server) actor(c *gin.Context) (string, bool) {
	id, err := identity.Require(c.Request.Context(), identity.ContextProvider{})
	if err != nil {
		s.fail(c, err)
		return "", false
	}
	return id, true
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

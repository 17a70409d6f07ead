package httpapi

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"tgrelay/internal/common"
)

const (
	ctxKeySID      = "session_sid"
	ctxKeyUsername = "session_username"
)

// requireSession gates a route on a live dashboard session. The cookie
// carries a signed token whose only payload is the sid; the session itself
// lives server-side and is extended on every authenticated request.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(common.SessionCookieName)
		if err != nil || cookie == "" {
			s.writeError(c, common.ErrUnauthorized)
			return
		}

		sid, err := parseSessionToken(s.cfg.JWTSecret, cookie)
		if err != nil {
			s.writeError(c, err)
			return
		}

		payload, err := s.sessions.Get(c.Request.Context(), sid)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				err = common.ErrUnauthorized
			}
			s.writeError(c, err)
			return
		}

		if err := s.sessions.Touch(c.Request.Context(), sid, payload); err != nil {
			s.logger.Warn(c.Request.Context(), "session touch failed", "error", err)
		}

		c.Set(ctxKeySID, sid)
		c.Set(ctxKeyUsername, usernameFromPayload(payload))
		c.Next()
	}
}

func usernameFromPayload(payload []byte) string {
	var p struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return ""
	}
	return p.Username
}

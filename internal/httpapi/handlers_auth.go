package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tgrelay/internal/authsessions"
	"tgrelay/internal/common"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	if s.cfg.AdminUsername == "" || s.cfg.AdminPasswordHash == "" {
		s.writeError(c, fmt.Errorf("%w: admin account is not configured", common.ErrConfig))
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(body.Username), []byte(s.cfg.AdminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(body.Password))
	if !userOK || passErr != nil {
		s.writeError(c, common.ErrUnauthorized)
		return
	}

	sid := uuid.NewString()
	expiresAt := time.Now().Add(s.cfg.SessionTTL)
	payload, err := json.Marshal(map[string]any{
		"username":   body.Username,
		"expires_at": expiresAt.UnixMilli(),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	audit := authsessions.Audit{
		Username:  body.Username,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if err := s.sessions.Set(c.Request.Context(), sid, payload, audit); err != nil {
		s.writeError(c, err)
		return
	}

	token, err := signSessionToken(s.cfg.JWTSecret, sid, s.cfg.SessionTTL)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.SetCookie(common.SessionCookieName, token,
		int(s.cfg.SessionTTL.Seconds()), "/", "", s.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"username":   body.Username,
		"expires_at": expiresAt.UnixMilli(),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	sid := c.GetString(ctxKeySID)
	if err := s.sessions.Destroy(c.Request.Context(), sid); err != nil {
		s.writeError(c, err)
		return
	}

	c.SetCookie(common.SessionCookieName, "", -1, "/", "", s.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (s *Server) handleMe(c *gin.Context) {
	row, err := s.sessions.GetRow(c.Request.Context(), c.GetString(ctxKeySID))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":   c.GetString(ctxKeyUsername),
		"state":      row.State(),
		"ip_address": row.IPAddress,
		"user_agent": row.UserAgent,
		"created_at": row.CreatedAt,
		"expires_at": row.Expire,
	})
}

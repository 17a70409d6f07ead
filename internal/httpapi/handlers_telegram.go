package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tgrelay/internal/common"
)

func (s *Server) handleSendCode(c *gin.Context) {
	var body struct {
		Phone   string `json:"phone"`
		APIID   int    `json:"api_id"`
		APIHash string `json:"api_hash"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	if err := s.telegram.SendCode(c.Request.Context(), body.APIID, body.APIHash, body.Phone); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "code_sent"})
}

func (s *Server) handleConfirmCode(c *gin.Context) {
	var body struct {
		Phone    string `json:"phone"`
		Code     string `json:"code"`
		Password string `json:"password"`
		APIID    int    `json:"api_id"`
		APIHash  string `json:"api_hash"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	err := s.telegram.ConfirmCode(c.Request.Context(), body.APIID, body.APIHash, body.Phone, body.Code, body.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "authenticated"})
}

func (s *Server) handleTelegramLogout(c *gin.Context) {
	if err := s.telegram.Logout(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (s *Server) handleTelegramStatus(c *gin.Context) {
	source, present, err := s.telegram.CurrentSession(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"connected":       s.telegram.Connected(),
		"session_present": present,
		"session_source":  source,
	})
}

func (s *Server) handleTelegramInitEnv(c *gin.Context) {
	if err := s.telegram.ConnectFromEnv(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": s.telegram.Connected()})
}

func (s *Server) handleTelegramTest(c *gin.Context) {
	if err := s.telegram.Test(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGetSession(c *gin.Context) {
	source, present, err := s.telegram.CurrentSession(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_present": present,
		"session_source":  source,
	})
}

func (s *Server) handleSaveSession(c *gin.Context) {
	var body struct {
		StringSession string `json:"string_session"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	blob := strings.TrimSpace(body.StringSession)
	if err := s.telegram.SaveSession(c.Request.Context(), blob); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

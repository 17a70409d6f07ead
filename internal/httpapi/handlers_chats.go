package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tgrelay/internal/common"
	"tgrelay/internal/models"
)

type chatResponse struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	ChatName  string    `json:"chat_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toChatResponse(m *models.ChatMapping) chatResponse {
	return chatResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		ChatName:  m.ChatName,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (s *Server) handleListChats(c *gin.Context) {
	mappings, err := s.chats.GetAll(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]chatResponse, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, toChatResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"chats": out})
}

func (s *Server) handleSetChat(c *gin.Context) {
	var body struct {
		ChatID   string `json:"chat_id"`
		ChatName string `json:"chat_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	body.ChatID = strings.TrimSpace(body.ChatID)
	body.ChatName = strings.TrimSpace(body.ChatName)
	if body.ChatID == "" || body.ChatName == "" {
		s.writeError(c, fmt.Errorf("%w: chat_id and chat_name are required", common.ErrValidation))
		return
	}

	m, err := s.chats.SetChatName(c.Request.Context(), body.ChatID, body.ChatName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": toChatResponse(m)})
}

func (s *Server) handleDeleteChat(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.chats.DeleteByID(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

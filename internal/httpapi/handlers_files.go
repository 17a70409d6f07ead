package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tgrelay/internal/common"
	"tgrelay/internal/filex"
	"tgrelay/internal/models"
	"tgrelay/internal/uploads"
)

type fileResponse struct {
	ID             int64      `json:"id"`
	Filename       string     `json:"filename"`
	Filepath       string     `json:"filepath"`
	Status         string     `json:"status"`
	Hash           string     `json:"hash,omitempty"`
	ChatID         string     `json:"chat_id"`
	ChatName       string     `json:"chat_name,omitempty"`
	LocalDeleted   bool       `json:"local_deleted"`
	LocalDeletedAt *time.Time `json:"local_deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toFileResponse(rec *models.FileRecord) fileResponse {
	return fileResponse{
		ID:             rec.ID,
		Filename:       rec.Filename,
		Filepath:       rec.Filepath,
		Status:         string(rec.Status),
		Hash:           rec.Hash,
		ChatID:         rec.ChatID,
		ChatName:       rec.ChatName,
		LocalDeleted:   rec.LocalDeleted,
		LocalDeletedAt: rec.LocalDeletedAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

// handleUpload accepts a multipart body, stages it to disk, and hands it to
// the relay pipeline. The shared upload token comes from the X-Upload-Token
// header or the token form field.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxUploadBytes)})
			return
		}
		s.writeError(c, fmt.Errorf("%w: multipart field %q is required", common.ErrValidation, "file"))
		return
	}

	token := c.GetHeader("X-Upload-Token")
	if token == "" {
		token = c.PostForm("token")
	}

	staged := filepath.Join(s.cfg.StagingDir, uuid.NewString())
	if err := c.SaveUploadedFile(fh, staged); err != nil {
		s.writeError(c, fmt.Errorf("%w: stage upload: %w", common.ErrIO, err))
		return
	}
	// the pipeline consumes the staged file once validation passes, so a
	// record never references this path; this catches early exits
	defer func() { _ = filex.RemoveIfExists(staged) }()

	rec, err := s.uploads.Upload(c.Request.Context(), uploads.Request{
		Token:    token,
		ChatID:   c.PostForm("chat_id"),
		ThreadID: c.PostForm("thread_id"),
		Caption:  c.PostForm("caption"),
		Filename: fh.Filename,
		TempPath: staged,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": toFileResponse(rec)})
}

func (s *Server) handleListFiles(c *gin.Context) {
	records, err := s.uploads.GetFiles(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]fileResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toFileResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"files": out})
}

func (s *Server) handleGetFile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	rec, err := s.uploads.GetFile(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": toFileResponse(rec)})
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.uploads.DeleteFile(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleVerifyFile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.uploads.VerifyFile(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": string(result)})
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", common.ErrValidation)
	}
	return id, nil
}

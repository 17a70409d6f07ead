// Package uploads drives the file relay pipeline: accept a staged upload,
// record it, hash it, push it through the Telegram client, and reconcile
// the record with the outcome.
package uploads

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tgrelay/internal/common"
	"tgrelay/internal/creds"
	"tgrelay/internal/filex"
	"tgrelay/internal/hashx"
	"tgrelay/internal/logging"
	"tgrelay/internal/models"
	"tgrelay/internal/repositories/chats"
	"tgrelay/internal/repositories/files"
	"tgrelay/internal/repositories/tgsessions"
	"tgrelay/internal/telegram"
)

// Relay is the Telegram client surface the pipeline needs.
type Relay interface {
	Initialize(ctx context.Context, stringSession string) error
	IsConnected() bool
	Transfer(ctx context.Context, req telegram.TransferRequest, progress telegram.ProgressFunc) error
}

// Request is one upload as validated by the HTTP layer: the body has been
// staged to TempPath, everything else is raw client input.
type Request struct {
	Token    string
	ChatID   string
	ThreadID string
	Caption  string
	Filename string
	TempPath string
}

type Service struct {
	files    files.Repository
	chats    chats.Directory
	sessions tgsessions.Store
	creds    *creds.Cell
	relay    Relay
	logger   logging.Logger

	token  string
	dir    string
	now    func() time.Time
	rename func(oldpath, newpath string) error
}

func NewService(
	fileRepo files.Repository,
	chatDir chats.Directory,
	sessionStore tgsessions.Store,
	credCell *creds.Cell,
	relay Relay,
	logger logging.Logger,
	uploadToken string,
	uploadDir string,
) *Service {
	return &Service{
		files:    fileRepo,
		chats:    chatDir,
		sessions: sessionStore,
		creds:    credCell,
		relay:    relay,
		logger:   logger.With("component", "uploads"),
		token:    uploadToken,
		dir:      uploadDir,
		now:      time.Now,
		rename:   os.Rename,
	}
}

// Upload runs the full relay pipeline and returns the final record. All
// input validation happens before any database write or network use. Once a
// pending record exists, every failure downstream marks that record failed
// before the error is returned.
func (s *Service) Upload(ctx context.Context, req Request) (*models.FileRecord, error) {
	if err := s.checkToken(req.Token); err != nil {
		return nil, err
	}

	chatID := strings.TrimSpace(req.ChatID)
	if chatID == "" {
		return nil, fmt.Errorf("%w: chat_id is required", common.ErrValidation)
	}

	threadID, err := parseThreadID(req.ThreadID)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(req.Caption) > common.CaptionMaxLen {
		return nil, fmt.Errorf("%w: caption exceeds %d characters", common.ErrValidation, common.CaptionMaxLen)
	}

	filename := filex.NormalizeFilename(req.Filename)
	storedPath, err := s.relocate(ctx, req.TempPath, filename)
	if err != nil {
		return nil, err
	}

	chatName, err := s.chats.GetChatName(ctx, chatID)
	if err != nil {
		s.logger.Warn(ctx, "chat name lookup failed", "chat_id", chatID, "error", err)
		chatName = ""
	}

	rec, err := s.files.Create(ctx, filename, storedPath, chatID, chatName)
	if err != nil {
		return nil, err
	}

	hash, err := hashx.FileSHA256(storedPath)
	if err != nil {
		s.markFailed(ctx, rec.ID, "")
		return nil, err
	}

	session, err := s.resolveSession(ctx)
	if err != nil {
		s.markFailed(ctx, rec.ID, hash)
		return nil, err
	}

	if !s.relay.IsConnected() {
		if err := s.relay.Initialize(ctx, session); err != nil {
			s.markFailed(ctx, rec.ID, hash)
			return nil, err
		}
	}

	transfer := telegram.TransferRequest{
		Path:     storedPath,
		Filename: filename,
		ChatID:   chatID,
		ThreadID: threadID,
		Caption:  req.Caption,
	}
	err = s.relay.Transfer(ctx, transfer, func(percent float64, uploaded, total int64) {
		s.logger.Debug(ctx, "transfer progress",
			"file_id", rec.ID, "percent", fmt.Sprintf("%.1f", percent),
			"uploaded", uploaded, "total", total)
	})
	if err != nil {
		s.markFailed(ctx, rec.ID, hash)
		return nil, fmt.Errorf("relay %s: %w", filename, err)
	}

	if err := s.files.UpdateStatus(ctx, rec.ID, models.StatusUploaded, hash); err != nil {
		return nil, err
	}

	s.cleanupLocal(ctx, rec.ID, storedPath)

	return s.files.GetByID(ctx, rec.ID)
}

// GetFiles lists every record, newest first.
func (s *Service) GetFiles(ctx context.Context) ([]*models.FileRecord, error) {
	return s.files.GetAll(ctx)
}

func (s *Service) GetFile(ctx context.Context, id int64) (*models.FileRecord, error) {
	return s.files.GetByID(ctx, id)
}

// DeleteFile removes the record and, when a local copy is still expected,
// the on-disk file. Bytes that are already gone do not block the delete.
func (s *Service) DeleteFile(ctx context.Context, id int64) error {
	rec, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !rec.LocalDeleted {
		if err := filex.RemoveIfExists(rec.Filepath); err != nil {
			return fmt.Errorf("%w: remove %s: %w", common.ErrIO, rec.Filepath, err)
		}
	}

	return s.files.Delete(ctx, id)
}

// VerifyResult is the outcome of an integrity check.
type VerifyResult string

const (
	// VerifyOK means the local copy matches the recorded digest.
	VerifyOK VerifyResult = "ok"
	// VerifyMismatch means the local copy exists but its digest differs.
	VerifyMismatch VerifyResult = "mismatch"
	// VerifyNotApplicable means there is no local copy left to check.
	VerifyNotApplicable VerifyResult = "local_copy_missing"
)

// VerifyFile recomputes the digest of the record's local copy and compares
// it with the recorded one. A record with no digest cannot be verified.
func (s *Service) VerifyFile(ctx context.Context, id int64) (VerifyResult, error) {
	rec, err := s.files.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if rec.Hash == "" {
		return "", fmt.Errorf("%w: record %d has no recorded digest", common.ErrValidation, id)
	}

	if rec.LocalDeleted || !filex.Exists(rec.Filepath) {
		return VerifyNotApplicable, nil
	}

	ok, err := hashx.VerifyFileSHA256(rec.Filepath, rec.Hash)
	if err != nil {
		return "", err
	}
	if !ok {
		return VerifyMismatch, nil
	}
	return VerifyOK, nil
}

func (s *Service) checkToken(provided string) error {
	if s.token == "" {
		return common.ErrTokenNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.token)) != 1 {
		return common.ErrInvalidUploadToken
	}
	return nil
}

func parseThreadID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: thread_id must be a non-negative integer", common.ErrValidation)
	}
	return id, nil
}

// relocate moves the staged body to a timestamped name under the upload
// directory. The staged path is always consumed: when the rename fails
// (typically a cross-device staging dir) the bytes are copied instead, so
// no record ever points into the staging area and the HTTP layer may
// discard the staged path unconditionally.
func (s *Service) relocate(ctx context.Context, tempPath, filename string) (string, error) {
	target := filepath.Join(s.dir, fmt.Sprintf("%d-%s", s.now().UnixMilli(), filename))
	err := s.rename(tempPath, target)
	if err == nil {
		return target, nil
	}

	s.logger.Warn(ctx, "rename of staged upload failed, copying instead",
		"from", tempPath, "to", target, "error", err)
	if err := copyFile(tempPath, target); err != nil {
		return "", fmt.Errorf("%w: relocate staged upload: %w", common.ErrIO, err)
	}
	if err := filex.RemoveIfExists(tempPath); err != nil {
		s.logger.Warn(ctx, "remove of staged upload after copy failed",
			"path", tempPath, "error", err)
	}
	return target, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// resolveSession prefers the environment override, then the stored
// credential.
func (s *Service) resolveSession(ctx context.Context) (string, error) {
	if session := s.creds.Session(); session != "" {
		return session, nil
	}

	stored, err := s.sessions.GetLatest(ctx)
	if err != nil {
		return "", err
	}
	if stored == "" {
		return "", common.ErrNoSession
	}
	return stored, nil
}

func (s *Service) markFailed(ctx context.Context, id int64, hash string) {
	if err := s.files.UpdateStatus(ctx, id, models.StatusFailed, hash); err != nil {
		s.logger.Error(ctx, "could not mark record failed", "file_id", id, "error", err)
	}
}

func (s *Service) cleanupLocal(ctx context.Context, id int64, path string) {
	if err := filex.RemoveIfExists(path); err != nil {
		s.logger.Warn(ctx, "local copy removal failed", "file_id", id, "path", path, "error", err)
		return
	}
	if err := s.files.MarkLocalDeleted(ctx, id); err != nil {
		s.logger.Warn(ctx, "could not mark local copy deleted", "file_id", id, "error", err)
	}
}

var _ Relay = (*telegram.Adapter)(nil)

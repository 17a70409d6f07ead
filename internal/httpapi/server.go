// Package httpapi exposes the dashboard and relay API over HTTP.
//
// Two auth schemes coexist: the upload endpoint is guarded by a shared
// token so headless clients can push files, everything else sits behind a
// cookie-based admin session backed by the server-side session store.
package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"tgrelay/internal/authsessions"
	"tgrelay/internal/logging"
	"tgrelay/internal/models"
	"tgrelay/internal/repositories/chats"
	"tgrelay/internal/uploads"
)

// DefaultMaxUploadBytes caps a single upload body at 2 GiB, the bot-less
// account limit for a single Telegram document.
const DefaultMaxUploadBytes int64 = 2 << 30

// UploadService is the relay pipeline surface the handlers call.
type UploadService interface {
	Upload(ctx context.Context, req uploads.Request) (*models.FileRecord, error)
	GetFiles(ctx context.Context) ([]*models.FileRecord, error)
	GetFile(ctx context.Context, id int64) (*models.FileRecord, error)
	DeleteFile(ctx context.Context, id int64) error
	VerifyFile(ctx context.Context, id int64) (uploads.VerifyResult, error)
}

// TelegramAuthService is the account login surface the handlers call.
type TelegramAuthService interface {
	SendCode(ctx context.Context, apiID int, apiHash, phone string) error
	ConfirmCode(ctx context.Context, apiID int, apiHash, phone, code, password string) error
	Logout(ctx context.Context) error
	Test(ctx context.Context) error
	ConnectFromEnv(ctx context.Context) error
	Connected() bool
	CurrentSession(ctx context.Context) (string, bool, error)
	SaveSession(ctx context.Context, blob string) error
}

// Options carries the static server configuration.
type Options struct {
	StagingDir     string
	MaxUploadBytes int64
	AdminUsername  string
	// AdminPasswordHash is a bcrypt hash of the dashboard password.
	AdminPasswordHash string
	JWTSecret         []byte
	SessionTTL        time.Duration
	CookieSecure      bool
}

type Server struct {
	uploads  UploadService
	chats    chats.Directory
	telegram TelegramAuthService
	sessions authsessions.Store
	logger   logging.Logger
	cfg      Options
}

func NewServer(
	uploadSvc UploadService,
	chatDir chats.Directory,
	telegramSvc TelegramAuthService,
	sessionStore authsessions.Store,
	logger logging.Logger,
	cfg Options,
) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = authsessions.DefaultTTL
	}
	return &Server{
		uploads:  uploadSvc,
		chats:    chatDir,
		telegram: telegramSvc,
		sessions: sessionStore,
		logger:   logger.With("component", "http"),
		cfg:      cfg,
	}
}

// Routes builds the gin engine with all endpoints attached.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/upload", s.handleUpload)
	api.POST("/auth/login", s.handleLogin)

	priv := api.Group("")
	priv.Use(s.requireSession())
	{
		priv.POST("/auth/logout", s.handleLogout)
		priv.GET("/auth/me", s.handleMe)

		priv.GET("/files", s.handleListFiles)
		priv.GET("/files/:id", s.handleGetFile)
		priv.DELETE("/files/:id", s.handleDeleteFile)
		priv.POST("/files/:id/verify", s.handleVerifyFile)

		priv.GET("/chats", s.handleListChats)
		priv.POST("/chats", s.handleSetChat)
		priv.DELETE("/chats/:id", s.handleDeleteChat)

		priv.POST("/telegram/send-code", s.handleSendCode)
		priv.POST("/telegram/confirm-code", s.handleConfirmCode)
		priv.POST("/telegram/logout", s.handleTelegramLogout)
		priv.GET("/telegram/status", s.handleTelegramStatus)
		priv.POST("/telegram/test", s.handleTelegramTest)
		priv.POST("/telegram/init-env", s.handleTelegramInitEnv)

		priv.GET("/session", s.handleGetSession)
		priv.POST("/session", s.handleSaveSession)
	}

	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

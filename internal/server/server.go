package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"susurro/internal/ai"
	"susurro/internal/config"
	"susurro/internal/handler"
	"susurro/internal/middleware"
	"susurro/internal/ratelimit"
	"susurro/internal/store"
	ws "susurro/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	limiter      *ratelimit.Limiter
	sessionStore *store.SessionStore
	userStore    *store.UserStore

	authH       *handler.AuthHandler
	transcribeH *handler.TranscribeHandler
	noteH       *handler.NoteHandler

	transcribePolicy ratelimit.Policy
	notesPolicy      ratelimit.Policy
	generalPolicy    ratelimit.Policy

	logger *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, aiClient *ai.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	noteStore := store.NewNoteStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		limiter:      ratelimit.NewLimiter(),
		sessionStore: sessionStore,
		userStore:    userStore,

		authH:       handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		transcribeH: handler.NewTranscribeHandler(aiClient, cfg.MaxAudioBytes(), logger.With("component", "transcribe")),
		noteH:       handler.NewNoteHandler(noteStore, aiClient, hub, logger.With("component", "note")),

		transcribePolicy: ratelimit.Policy{Window: time.Minute, MaxRequests: cfg.RateLimitTranscription},
		notesPolicy:      ratelimit.Policy{Window: time.Minute, MaxRequests: cfg.RateLimitNotes},
		generalPolicy:    ratelimit.Policy{Window: time.Minute, MaxRequests: cfg.RateLimitGeneral},

		logger: logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// Limiter returns the rate limiter for cleanup tasks.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Router assembles the HTTP routes. Public routes are rate-limited by
// client IP with the general policy; everything else sits behind
// RequireAuth, with per-user quotas checked before any validation or
// upstream work.
func (s *Server) Router() http.Handler {
	byIP := middleware.RateLimitIP(s.limiter, s.generalPolicy, "general")

	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", handler.Health)
	outerMux.Handle("POST /api/auth/register", byIP(http.HandlerFunc(s.authH.Register)))
	outerMux.Handle("POST /api/auth/login", byIP(http.HandlerFunc(s.authH.Login)))

	byUserTranscription := middleware.RateLimitUser(s.limiter, s.transcribePolicy, "transcription")
	byUserNotes := middleware.RateLimitUser(s.limiter, s.notesPolicy, "notes")
	byUserGeneral := middleware.RateLimitUser(s.limiter, s.generalPolicy, "general")

	protectedMux := http.NewServeMux()
	protectedMux.Handle("POST /api/auth/logout", byUserGeneral(http.HandlerFunc(s.authH.Logout)))

	protectedMux.Handle("POST /api/transcribe", byUserTranscription(http.HandlerFunc(s.transcribeH.Transcribe)))

	protectedMux.Handle("POST /api/notes", byUserNotes(http.HandlerFunc(s.noteH.Create)))
	protectedMux.Handle("GET /api/notes", byUserNotes(http.HandlerFunc(s.noteH.List)))
	protectedMux.Handle("GET /api/notes/count", byUserNotes(http.HandlerFunc(s.noteH.Count)))
	protectedMux.Handle("PUT /api/notes/{id}", byUserNotes(http.HandlerFunc(s.noteH.Update)))
	protectedMux.Handle("DELETE /api/notes/{id}", byUserNotes(http.HandlerFunc(s.noteH.Delete)))

	protectedMux.Handle("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

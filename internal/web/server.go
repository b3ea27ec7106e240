// Package web serves the browser chat page and its JSON and websocket APIs.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
)

const (
	cookieName   = "chat_session"
	keyPrefix    = "web:"
	cookieMaxAge = 30 * 24 * time.Hour
)

//go:embed templates/*.html
var templateFS embed.FS

// Chat is the conversation registry the handlers drive.
type Chat interface {
	Send(ctx context.Context, key, message string) (string, error)
	Clear(ctx context.Context, key string) error
	Transcript(ctx context.Context, key string) ([]model.Turn, error)
	Options(ctx context.Context, key string) (model.GenerationOptions, error)
	Configure(ctx context.Context, key string, opts model.GenerationOptions) error
}

type Config struct {
	Title    string
	Greeting string
}

type Server struct {
	chat     Chat
	cfg      Config
	logger   zerolog.Logger
	tmpl     *template.Template
	upgrader websocket.Upgrader
}

func NewServer(chat Chat, cfg Config, logger zerolog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		chat:     chat,
		cfg:      cfg,
		logger:   logger.With().Str("component", "web").Logger(),
		tmpl:     tmpl,
		upgrader: websocket.Upgrader{},
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("POST /settings", s.handleSettings)
	mux.HandleFunc("GET /api/transcript", s.handleAPITranscript)
	mux.HandleFunc("POST /api/chat", s.handleAPIChat)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// sessionKey returns the caller's chat key, issuing a cookie on first visit.
func (s *Server) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if id, err := cookieID(r); err == nil {
		return keyPrefix + id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug().Str("session", id).Msg("new web session")
	return keyPrefix + id
}

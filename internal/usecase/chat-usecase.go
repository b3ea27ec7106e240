package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
)

type ChatStorage interface {
	GetChat(ctx context.Context, id string) (model.ChatState, error)
	SaveChat(ctx context.Context, chat model.ChatState) error
	DeleteChat(ctx context.Context, id string) error
}

type ChatUsecaseDeps struct {
	Endpoint session.Endpoint
	Storage  ChatStorage
	// Window trims what is sent with each request. Optional.
	Window session.Window
	Logger zerolog.Logger
	// IdleTimeout drops live sessions unused for longer, so an expired
	// stored chat is not resurrected. Zero keeps them for the process life.
	IdleTimeout time.Duration
}

type liveSession struct {
	session  *session.Session
	lastUsed time.Time
}

// ChatUsecase owns one live session per caller key (a web cookie or a
// Telegram chat) and mirrors each transcript into storage.
type ChatUsecase struct {
	ChatUsecaseDeps
	cfg session.Config

	mu        sync.Mutex
	sessions  map[string]*liveSession
	lastSweep time.Time
}

func NewChatUsecase(cfg session.Config, deps ChatUsecaseDeps) *ChatUsecase {
	return &ChatUsecase{
		ChatUsecaseDeps: deps,
		cfg:             cfg,
		sessions:        make(map[string]*liveSession),
	}
}

// Session returns the live session for key, restoring it from storage or
// creating an empty one.
func (c *ChatUsecase) Session(ctx context.Context, key string) (*session.Session, error) {
	if s, ok := c.live(key); ok {
		return s, nil
	}

	cfg, turns, err := c.restore(ctx, key)
	if err != nil {
		return nil, err
	}
	s, err := c.newSession(key, cfg, turns)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.sessions[key]; ok {
		entry.lastUsed = time.Now()
		return entry.session, nil
	}
	c.sessions[key] = &liveSession{session: s, lastUsed: time.Now()}
	return s, nil
}

func (c *ChatUsecase) Send(ctx context.Context, key, message string) (string, error) {
	s, err := c.Session(ctx, key)
	if err != nil {
		return "", err
	}
	reply, err := s.Send(ctx, message)
	if err != nil {
		return "", err
	}
	c.touch(key)
	c.save(ctx, key, s)
	return reply, nil
}

// Clear empties the conversation. Options chosen for the session are kept.
func (c *ChatUsecase) Clear(ctx context.Context, key string) error {
	s, err := c.Session(ctx, key)
	if err != nil {
		return err
	}
	s.ClearHistory()
	c.save(ctx, key, s)
	return nil
}

// Reset drops the session and its stored state, options included.
func (c *ChatUsecase) Reset(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.sessions, key)
	c.mu.Unlock()
	if err := c.Storage.DeleteChat(ctx, key); err != nil && !errors.Is(err, model.ErrChatDoesNotExist) {
		return fmt.Errorf("failed to delete chat %s: %w", key, err)
	}
	return nil
}

// Transcript reads the conversation without starting a session for an
// unknown key.
func (c *ChatUsecase) Transcript(ctx context.Context, key string) ([]model.Turn, error) {
	if s, ok := c.live(key); ok {
		return s.Transcript(), nil
	}
	_, turns, err := c.restore(ctx, key)
	return turns, err
}

func (c *ChatUsecase) Options(ctx context.Context, key string) (model.GenerationOptions, error) {
	if s, ok := c.live(key); ok {
		return s.Options(), nil
	}
	cfg, _, err := c.restore(ctx, key)
	return cfg.Options, err
}

// Configure replaces the session's generation options. The transcript is
// kept and a send in flight finishes with the old options.
func (c *ChatUsecase) Configure(ctx context.Context, key string, opts model.GenerationOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s, err := c.Session(ctx, key)
	if err != nil {
		return err
	}
	if err = s.SetOptions(opts); err != nil {
		return err
	}
	c.save(ctx, key, s)
	return nil
}

// live returns the cached session for key, dropping idle ones first.
func (c *ChatUsecase) live(key string) (*session.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.IdleTimeout > 0 && now.Sub(c.lastSweep) >= c.IdleTimeout {
		for k, entry := range c.sessions {
			if now.Sub(entry.lastUsed) > c.IdleTimeout {
				delete(c.sessions, k)
			}
		}
		c.lastSweep = now
	}

	entry, ok := c.sessions[key]
	if !ok {
		return nil, false
	}
	if c.IdleTimeout > 0 && now.Sub(entry.lastUsed) > c.IdleTimeout {
		delete(c.sessions, key)
		return nil, false
	}
	entry.lastUsed = now
	return entry.session, true
}

func (c *ChatUsecase) touch(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.sessions[key]; ok {
		entry.lastUsed = time.Now()
	}
}

// restore reads the stored chat for key. A missing chat yields the default
// config and no turns.
func (c *ChatUsecase) restore(ctx context.Context, key string) (session.Config, []model.Turn, error) {
	cfg := c.cfg
	chat, err := c.Storage.GetChat(ctx, key)
	switch {
	case err == nil:
		cfg.Options = cfg.Options.Merge(chat.Options)
		c.Logger.Debug().Str("chat", key).Int("turns", len(chat.Turns)).Msg("chat restored")
		return cfg, chat.Turns, nil
	case errors.Is(err, model.ErrChatDoesNotExist):
		return cfg, nil, nil
	default:
		return cfg, nil, fmt.Errorf("failed to get chat %s: %w", key, err)
	}
}

func (c *ChatUsecase) newSession(key string, cfg session.Config, turns []model.Turn) (*session.Session, error) {
	opts := []session.Option{
		session.WithID(key),
		session.WithTranscript(turns),
		session.WithLogger(c.Logger),
	}
	if c.Window != nil {
		opts = append(opts, session.WithWindow(c.Window))
	}
	s, err := session.New(c.Endpoint, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session %s: %w", key, err)
	}
	return s, nil
}

// save is best effort: a reply already received is not discarded because
// storage is unavailable.
func (c *ChatUsecase) save(ctx context.Context, key string, s *session.Session) {
	chat := model.ChatState{
		ID:        key,
		ModelID:   s.ModelID(),
		Options:   s.Options(),
		Turns:     s.Transcript(),
		UpdatedAt: time.Now(),
	}
	if err := c.Storage.SaveChat(ctx, chat); err != nil {
		c.Logger.Error().Err(err).Str("chat", key).Msg("failed to save chat")
	}
}

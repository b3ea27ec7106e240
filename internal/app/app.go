// Package app wires configuration, the endpoint, storage and knowledge into
// the runnable front ends.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/config"
	"github.com/sarah-larkin/ai-learning-series/internal/history"
	"github.com/sarah-larkin/ai-learning-series/internal/knowledge"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/sarah-larkin/ai-learning-series/internal/prompt"
	"github.com/sarah-larkin/ai-learning-series/internal/provider"
	"github.com/sarah-larkin/ai-learning-series/internal/scraper"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
	in_memory "github.com/sarah-larkin/ai-learning-series/internal/storage/in-memory"
	key_value "github.com/sarah-larkin/ai-learning-series/internal/storage/key-value"
	"github.com/sarah-larkin/ai-learning-series/internal/usecase"
	"github.com/sarah-larkin/ai-learning-series/internal/web"
)

// Slider defaults of the web page when the config leaves them unset.
var webDefaults = model.GenerationOptions{
	Temperature:     model.Float32(0.7),
	MaxOutputTokens: model.Int32(200),
	TopP:            model.Float32(0.9),
}

type App struct {
	Config   *config.Config
	Endpoint session.Endpoint
	Logger   zerolog.Logger
}

// New validates cfg and connects the configured endpoint. Close releases it.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := provider.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create endpoint: %w", err)
	}
	return &App{Config: cfg, Endpoint: endpoint, Logger: logger}, nil
}

func (a *App) Close() error {
	return provider.Close(a.Endpoint)
}

// SessionConfig returns the model settings from the config with the given
// system instruction.
func (a *App) SessionConfig(systemInstruction string) (session.Config, error) {
	opts, err := a.Config.Model.Options()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		ModelID:           a.Config.Model.ID,
		SystemInstruction: systemInstruction,
		Options:           opts,
		Timeout:           a.Config.Model.Timeout,
	}, nil
}

// NewSession starts a standalone session using the configured window.
func (a *App) NewSession(systemInstruction string) (*session.Session, error) {
	cfg, err := a.SessionConfig(systemInstruction)
	if err != nil {
		return nil, err
	}
	window, err := a.Window(a.Config.Model.HistoryWindow)
	if err != nil {
		return nil, err
	}
	opts := []session.Option{session.WithLogger(a.Logger)}
	if window != nil {
		opts = append(opts, session.WithWindow(window))
	}
	return session.New(a.Endpoint, cfg, opts...)
}

// Window picks the request window: a token budget wins over a turn count.
// It returns nil when neither is set.
func (a *App) Window(trailing int) (session.Window, error) {
	if budget := a.Config.Model.TokenBudget; budget > 0 {
		counter, err := history.NewTiktokenCounter("")
		if err != nil {
			return nil, err
		}
		return history.TokenBudget(budget, counter), nil
	}
	if trailing > 0 {
		return history.Trailing(trailing), nil
	}
	return nil, nil
}

// ChatStorage returns Redis storage when an endpoint is configured, otherwise
// an in-memory map. The returned func closes the client.
func (a *App) ChatStorage(ctx context.Context) (usecase.ChatStorage, func() error, error) {
	st := a.Config.Storage
	if st.RedisEndpoint == "" {
		return in_memory.NewChatStorage(st.ChatTTL), func() error { return nil }, nil
	}
	rdb := redis.NewClient(
		&redis.Options{
			Addr:     st.RedisEndpoint,
			Password: st.RedisPassword,
			DB:       st.RedisDB,
		},
	)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis %s: %w", st.RedisEndpoint, err)
	}
	a.Logger.Info().Str("addr", st.RedisEndpoint).Msg("using redis chat storage")
	return key_value.NewChatStorage(rdb, st.ChatTTL), rdb.Close, nil
}

// WCCInstruction loads the FAQ file and, when enabled, the scraped events
// into the info bot's system instruction.
func (a *App) WCCInstruction(ctx context.Context) (string, error) {
	k := a.Config.Knowledge
	faqs, err := knowledge.LoadFAQs(k.FAQPath)
	if err != nil {
		return "", err
	}
	var events []model.Event
	if k.ScrapeEvents {
		events = a.Events(ctx)
	}
	a.Logger.Info().Int("faqs", len(faqs)).Int("events", len(events)).Msg("knowledge loaded")
	return prompt.WCC(faqs, events), nil
}

func (a *App) Events(ctx context.Context) []model.Event {
	k := a.Config.Knowledge
	client := &http.Client{Timeout: k.ScrapeTimeout}
	return scraper.Events(a.Logger.WithContext(ctx), client, k.EventsURL)
}

// ChatUsecase builds the keyed session registry used by the web and
// Telegram front ends.
func (a *App) ChatUsecase(ctx context.Context, cfg session.Config, trailing int) (*usecase.ChatUsecase, func() error, error) {
	storage, closeStorage, err := a.ChatStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	window, err := a.Window(trailing)
	if err != nil {
		_ = closeStorage()
		return nil, nil, err
	}
	chat := usecase.NewChatUsecase(cfg, usecase.ChatUsecaseDeps{
		Endpoint:    a.Endpoint,
		Storage:     storage,
		Window:      window,
		Logger:      a.Logger,
		IdleTimeout: a.Config.Storage.ChatTTL,
	})
	return chat, closeStorage, nil
}

// RunWeb serves the WCC info bot page until ctx is cancelled.
func (a *App) RunWeb(ctx context.Context) error {
	instruction, err := a.WCCInstruction(ctx)
	if err != nil {
		return err
	}
	cfg, err := a.SessionConfig(instruction)
	if err != nil {
		return err
	}
	cfg.Options = webDefaults.Merge(cfg.Options)

	chat, closeStorage, err := a.ChatUsecase(ctx, cfg, a.Config.Web.ContextMessages)
	if err != nil {
		return err
	}
	defer closeStorage()

	server, err := web.NewServer(chat, web.Config{
		Title:    "WCC Info Bot",
		Greeting: prompt.Greeting,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}
	return server.ListenAndServe(ctx, a.Config.Web.Addr)
}

// RunTelegram runs the WCC info bot on Telegram until ctx is cancelled.
func (a *App) RunTelegram(ctx context.Context) error {
	if err := a.Config.ValidateTelegram(); err != nil {
		return err
	}
	bot, err := api.NewBotAPI(a.Config.Telegram.APIToken)
	if err != nil {
		return fmt.Errorf("failed to create new bot: %w", err)
	}
	a.Logger.Info().Str("account", bot.Self.UserName).Msg("authorized on telegram")

	instruction, err := a.WCCInstruction(ctx)
	if err != nil {
		return err
	}
	cfg, err := a.SessionConfig(instruction)
	if err != nil {
		return err
	}
	chat, closeStorage, err := a.ChatUsecase(ctx, cfg, a.Config.Model.HistoryWindow)
	if err != nil {
		return err
	}
	defer closeStorage()

	telegramUsecase, err := usecase.NewTelegramUsecase(
		a.Config.Telegram, usecase.TelegramUsecaseDeps{
			Bot:    bot,
			Chat:   chat,
			Logger: a.Logger,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create telegram usecase: %w", err)
	}
	return telegramUsecase.Run(ctx)
}

// ProviderName is the lowercased provider, for display.
func (a *App) ProviderName() string {
	return strings.ToLower(a.Config.Model.Provider)
}

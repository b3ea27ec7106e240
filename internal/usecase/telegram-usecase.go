package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/config"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
	"github.com/sarah-larkin/ai-learning-series/pkg/local"
	"github.com/sourcegraph/conc"
)

const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandNew   = "new"

	telegramKeyPrefix = "telegram:"
	// Telegram rejects longer messages.
	maxMessageLength = 4096
	typingInterval   = 4 * time.Second
)

// Bot is the part of the Telegram client the usecase needs.
type Bot interface {
	Send(c api.Chattable) (api.Message, error)
	Request(c api.Chattable) (*api.APIResponse, error)
	GetUpdatesChan(config api.UpdateConfig) api.UpdatesChannel
	StopReceivingUpdates()
}

type TelegramUsecaseDeps struct {
	Bot    Bot
	Chat   *ChatUsecase
	Logger zerolog.Logger
}

type TelegramUsecase struct {
	TelegramUsecaseDeps
	cfg          config.Telegram
	allowedUsers map[int64]struct{}
}

func NewTelegramUsecase(cfg config.Telegram, deps TelegramUsecaseDeps) (*TelegramUsecase, error) {
	allowedUsers := make(map[int64]struct{}, len(cfg.AllowedTelegramID))
	for _, id := range cfg.AllowedTelegramID {
		allowedUsers[id] = struct{}{}
	}

	_, err := deps.Bot.Request(
		api.NewSetMyCommands(
			[]api.BotCommand{
				{
					Command:     CommandHelp,
					Description: "Get help",
				},
				{
					Command:     CommandNew,
					Description: "Clear context and start a new conversation",
				},
			}...,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set bot commands: %w", err)
	}

	return &TelegramUsecase{
		TelegramUsecaseDeps: deps,
		cfg:                 cfg,
		allowedUsers:        allowedUsers,
	}, nil
}

// Run handles updates until ctx is cancelled.
func (t *TelegramUsecase) Run(ctx context.Context) error {
	u := api.NewUpdate(0)
	u.Timeout = 60

	updates := t.Bot.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			t.Bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			if err := t.HandleMessage(ctx, update.Message); err != nil {
				t.Logger.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("error handling message")
			}
		}
	}
}

func (t *TelegramUsecase) HandleMessage(ctx context.Context, msg *api.Message) error {
	chatID := msg.Chat.ID
	lang := local.Eng
	if msg.From != nil {
		lang = local.ParseLanguage(msg.From.LanguageCode)
	}

	if len(t.allowedUsers) > 0 {
		if _, ok := t.allowedUsers[chatID]; !ok {
			t.sendMessageAndHandleErr(chatID, local.UserNoAccess.Text(lang))
			return nil
		}
	}

	key := telegramKey(chatID)
	if msg.IsCommand() {
		var answerText string
		switch msg.Command() {
		case CommandStart:
			answerText = local.TelegramStart.Text(lang)
		case CommandHelp:
			answerText = local.TelegramHelp.Text(lang)
		case CommandNew:
			if err := t.Chat.Reset(ctx, key); err != nil {
				t.sendMessageAndHandleErr(chatID, local.ServerError.Text(lang))
				return fmt.Errorf("failed to reset chat: %w", err)
			}
			answerText = local.TelegramNew.Text(lang)
		default:
			answerText = local.UnknownCommand.Text(lang)
		}
		t.sendMessageAndHandleErr(chatID, answerText)
		return nil
	}

	var reply string
	var sendErr error
	done := make(chan struct{})
	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			defer close(done)
			reply, sendErr = t.Chat.Send(ctx, key, msg.Text)
		},
	)
	wg.Go(
		func() {
			ticker := time.NewTicker(typingInterval)
			defer ticker.Stop()
			for {
				if _, err := t.Bot.Request(api.NewChatAction(chatID, api.ChatTyping)); err != nil {
					t.Logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send typing action")
				}
				select {
				case <-done:
					return
				case <-ticker.C:
				}
			}
		},
	)
	wg.Wait()

	if errors.Is(sendErr, session.ErrEmptyMessage) {
		return nil
	}
	if sendErr != nil {
		t.sendMessageAndHandleErr(chatID, session.DisplayText(sendErr))
		return fmt.Errorf("failed to send message: %w", sendErr)
	}
	for _, part := range splitMessage(reply, maxMessageLength) {
		t.sendMessageAndHandleErr(chatID, part)
	}
	return nil
}

func telegramKey(chatID int64) string {
	return telegramKeyPrefix + strconv.FormatInt(chatID, 10)
}

// splitMessage cuts text into chunks of at most limit runes.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var parts []string
	runes := []rune(text)
	for len(runes) > 0 {
		n := min(limit, len(runes))
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	return parts
}

func (t *TelegramUsecase) sendMessageAndHandleErr(chatID int64, message string) api.Message {
	msg, err := t.Bot.Send(api.NewMessage(chatID, message))
	if err != nil {
		t.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send new message to bot")
	}
	return msg
}

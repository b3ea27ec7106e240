package key_value

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
)

type turnInternal struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type chatInternal struct {
	ChatID          string         `json:"chat_id"`
	ModelID         string         `json:"model_id"`
	Temperature     *float32       `json:"model_temperature,omitempty"`
	TopP            *float32       `json:"model_top_p,omitempty"`
	MaxOutputTokens *int32         `json:"model_max_output_tokens,omitempty"`
	Turns           []turnInternal `json:"turns"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type ChatStorage struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewChatStorage stores each chat as a JSON blob. A positive ttl is
// refreshed on every save.
func NewChatStorage(rdb *redis.Client, ttl time.Duration) *ChatStorage {
	return &ChatStorage{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *ChatStorage) GetChat(ctx context.Context, id string) (model.ChatState, error) {
	chatInt, err := c.getChatInt(ctx, id)
	if err != nil {
		return model.ChatState{}, err
	}
	turns := make([]model.Turn, 0, len(chatInt.Turns))
	for _, turn := range chatInt.Turns {
		role, err := model.ParseRole(turn.Role)
		if err != nil {
			return model.ChatState{}, fmt.Errorf("failed to parse chat %s: %w", id, err)
		}
		turns = append(turns, model.Turn{Role: role, Text: turn.Text})
	}
	return model.ChatState{
		ID:      chatInt.ChatID,
		ModelID: chatInt.ModelID,
		Options: model.GenerationOptions{
			Temperature:     chatInt.Temperature,
			TopP:            chatInt.TopP,
			MaxOutputTokens: chatInt.MaxOutputTokens,
		},
		Turns:     turns,
		UpdatedAt: chatInt.UpdatedAt,
	}, nil
}

func (c *ChatStorage) SaveChat(ctx context.Context, chat model.ChatState) error {
	turns := make([]turnInternal, 0, len(chat.Turns))
	for _, turn := range chat.Turns {
		turns = append(turns, turnInternal{Role: string(turn.Role), Text: turn.Text})
	}
	updatedAt := chat.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	chatInt := chatInternal{
		ChatID:          chat.ID,
		ModelID:         chat.ModelID,
		Temperature:     chat.Options.Temperature,
		TopP:            chat.Options.TopP,
		MaxOutputTokens: chat.Options.MaxOutputTokens,
		Turns:           turns,
		UpdatedAt:       updatedAt.UTC(),
	}
	if err := c.setChatInt(ctx, chat.ID, chatInt); err != nil {
		return fmt.Errorf("failed to set chat internal %s: %w", chat.ID, err)
	}
	return nil
}

func (c *ChatStorage) DeleteChat(ctx context.Context, id string) error {
	n, err := c.rdb.Del(ctx, getChatIDKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete chat %s: %w", id, err)
	}
	if n == 0 {
		return model.ErrChatDoesNotExist
	}
	return nil
}

func (c *ChatStorage) getChatInt(ctx context.Context, id string) (chatInternal, error) {
	chatIntRaw, err := c.rdb.Get(ctx, getChatIDKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return chatInternal{}, model.ErrChatDoesNotExist
		}
		return chatInternal{}, fmt.Errorf("failed to get chat %s: %w", id, err)
	}
	var chatInt chatInternal
	if err = json.Unmarshal([]byte(chatIntRaw), &chatInt); err != nil {
		return chatInternal{}, fmt.Errorf("failed to unmarshal chat %s: %w", id, err)
	}
	return chatInt, nil
}

func (c *ChatStorage) setChatInt(ctx context.Context, id string, chatInt chatInternal) error {
	chatIntJSON, err := json.Marshal(chatInt)
	if err != nil {
		return fmt.Errorf("failed to marshal internal chat: %w", err)
	}
	if err = c.rdb.Set(ctx, getChatIDKey(id), chatIntJSON, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save chat internal %s: %w", id, err)
	}
	return nil
}

func getChatIDKey(id string) string {
	return fmt.Sprintf("chat_%s", id)
}

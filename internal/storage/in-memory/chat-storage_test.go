package in_memory

import (
	"context"
	"testing"
	"time"

	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewChatStorage(0)

	_, err := storage.GetChat(ctx, "web:1")
	require.ErrorIs(t, err, model.ErrChatDoesNotExist)

	chat := model.ChatState{
		ID:      "web:1",
		ModelID: "gemini-2.5-flash-lite",
		Turns:   []model.Turn{model.UserTurn("hi"), model.AssistantTurn("hello")},
	}
	require.NoError(t, storage.SaveChat(ctx, chat))

	got, err := storage.GetChat(ctx, "web:1")
	require.NoError(t, err)
	assert.Equal(t, chat.Turns, got.Turns)
	assert.Equal(t, chat.ModelID, got.ModelID)
	assert.False(t, got.UpdatedAt.IsZero())

	got.Turns[0].Text = "changed"
	again, err := storage.GetChat(ctx, "web:1")
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Turns[0].Text)

	require.NoError(t, storage.DeleteChat(ctx, "web:1"))
	require.ErrorIs(t, storage.DeleteChat(ctx, "web:1"), model.ErrChatDoesNotExist)
	_, err = storage.GetChat(ctx, "web:1")
	require.ErrorIs(t, err, model.ErrChatDoesNotExist)
}

func TestChatStorageExpiresIdleChats(t *testing.T) {
	ctx := context.Background()
	storage := NewChatStorage(time.Minute)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return now }

	require.NoError(t, storage.SaveChat(ctx, model.ChatState{ID: "telegram:42"}))

	now = now.Add(30 * time.Second)
	_, err := storage.GetChat(ctx, "telegram:42")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = storage.GetChat(ctx, "telegram:42")
	require.ErrorIs(t, err, model.ErrChatDoesNotExist)
}

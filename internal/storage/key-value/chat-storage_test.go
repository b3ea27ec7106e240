package key_value

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetChatIDKey(t *testing.T) {
	assert.Equal(t, "chat_web:abc", getChatIDKey("web:abc"))
}

func newTestStorage(t *testing.T, ttl time.Duration) (*ChatStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewChatStorage(rdb, ttl), mr
}

func TestChatStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t, 0)
	id := "web:abc"

	_, err := storage.GetChat(ctx, id)
	require.ErrorIs(t, err, model.ErrChatDoesNotExist)

	chat := model.ChatState{
		ID:      id,
		ModelID: "gemini-2.5-flash-lite",
		Options: model.GenerationOptions{Temperature: model.Float32(0.7)},
		Turns:   []model.Turn{model.UserTurn("Hi, I'm Sarah"), model.AssistantTurn("Hi Sarah!")},
	}
	require.NoError(t, storage.SaveChat(ctx, chat))
	assert.True(t, mr.Exists("chat_web:abc"))
	assert.Equal(t, time.Duration(0), mr.TTL("chat_web:abc"))

	got, err := storage.GetChat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, got.ID)
	assert.Equal(t, chat.ModelID, got.ModelID)
	assert.Equal(t, chat.Turns, got.Turns)
	assert.Equal(t, chat.Options, got.Options)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, storage.DeleteChat(ctx, id))
	require.ErrorIs(t, storage.DeleteChat(ctx, id), model.ErrChatDoesNotExist)
	_, err = storage.GetChat(ctx, id)
	require.ErrorIs(t, err, model.ErrChatDoesNotExist)
}

func TestChatStorageJSONLayout(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t, 0)

	require.NoError(t, storage.SaveChat(ctx, model.ChatState{
		ID:      "telegram:1",
		ModelID: "m",
		Options: model.GenerationOptions{MaxOutputTokens: model.Int32(200)},
		Turns:   []model.Turn{model.UserTurn("hello")},
	}))

	raw, err := mr.Get("chat_telegram:1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"chat_id":"telegram:1"`)
	assert.Contains(t, raw, `"model_max_output_tokens":200`)
	assert.Contains(t, raw, `"turns":[{"role":"user","text":"hello"}]`)
	assert.NotContains(t, raw, "model_temperature")
}

func TestChatStorageTTL(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t, time.Minute)

	require.NoError(t, storage.SaveChat(ctx, model.ChatState{ID: "web:a", ModelID: "m"}))
	assert.Equal(t, time.Minute, mr.TTL("chat_web:a"))

	mr.FastForward(30 * time.Second)
	require.NoError(t, storage.SaveChat(ctx, model.ChatState{ID: "web:a", ModelID: "m"}))
	assert.Equal(t, time.Minute, mr.TTL("chat_web:a"))

	mr.FastForward(2 * time.Minute)
	_, err := storage.GetChat(ctx, "web:a")
	require.ErrorIs(t, err, model.ErrChatDoesNotExist)
}

func TestChatStorageCorruptData(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t, 0)

	require.NoError(t, mr.Set("chat_web:bad", "not json"))
	_, err := storage.GetChat(ctx, "web:bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrChatDoesNotExist)

	require.NoError(t, mr.Set("chat_web:role", `{"chat_id":"web:role","turns":[{"role":"system","text":"x"}]}`))
	_, err = storage.GetChat(ctx, "web:role")
	require.Error(t, err)
}

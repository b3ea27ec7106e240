package in_memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sarah-larkin/ai-learning-series/internal/model"
)

type ChatStorage struct {
	mu    sync.RWMutex
	chats map[string]model.ChatState
	ttl   time.Duration
	now   func() time.Time
}

// NewChatStorage keeps chats in process memory. Chats idle for longer than
// ttl are dropped on read; ttl <= 0 keeps them forever.
func NewChatStorage(ttl time.Duration) *ChatStorage {
	return &ChatStorage{
		chats: make(map[string]model.ChatState),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *ChatStorage) GetChat(_ context.Context, id string) (model.ChatState, error) {
	c.mu.RLock()
	chat, ok := c.chats[id]
	c.mu.RUnlock()
	if !ok {
		return model.ChatState{}, model.ErrChatDoesNotExist
	}
	if c.expired(chat) {
		c.mu.Lock()
		delete(c.chats, id)
		c.mu.Unlock()
		return model.ChatState{}, model.ErrChatDoesNotExist
	}
	chat.Turns = slices.Clone(chat.Turns)
	return chat, nil
}

func (c *ChatStorage) SaveChat(_ context.Context, chat model.ChatState) error {
	chat.Turns = slices.Clone(chat.Turns)
	if chat.UpdatedAt.IsZero() {
		chat.UpdatedAt = c.now()
	}
	c.mu.Lock()
	c.chats[chat.ID] = chat
	c.mu.Unlock()
	return nil
}

func (c *ChatStorage) DeleteChat(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.chats[id]; !ok {
		return model.ErrChatDoesNotExist
	}
	delete(c.chats, id)
	return nil
}

func (c *ChatStorage) expired(chat model.ChatState) bool {
	return c.ttl > 0 && chat.UpdatedAt.Add(c.ttl).Before(c.now())
}

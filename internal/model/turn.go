package model

import (
	"errors"
	"time"
)

// Turn is one role-tagged message of a conversation. Turns are values and
// are never edited once appended to a transcript.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}

// ChatState is the persisted form of a conversation.
type ChatState struct {
	ID        string            `json:"id"`
	ModelID   string            `json:"model_id"`
	Options   GenerationOptions `json:"options"`
	Turns     []Turn            `json:"turns"`
	UpdatedAt time.Time         `json:"updated_at"`
}

var ErrChatDoesNotExist = errors.New("chat does not exist")

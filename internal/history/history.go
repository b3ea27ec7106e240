// Package history selects the part of a transcript that is sent with a
// request. The stored transcript is never modified.
package history

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
)

const DefaultEncoding = "cl100k_base"

// tokensPerTurn approximates the role and separator overhead of one message.
const tokensPerTurn = 4

// Trailing keeps the n most recent turns. The window never opens on an
// assistant turn.
type Trailing int

func (n Trailing) Apply(turns []model.Turn) []model.Turn {
	if n <= 0 || len(turns) <= int(n) {
		return turns
	}
	return dropLeadingAssistant(turns[len(turns)-int(n):])
}

type Counter interface {
	Count(turns []model.Turn) (int, error)
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter(encoding string) (Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding %s: %w", encoding, err)
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (c *tiktokenCounter) Count(turns []model.Turn) (int, error) {
	total := 0
	for _, turn := range turns {
		total += len(c.enc.Encode(turn.Text, nil, nil)) + tokensPerTurn
	}
	return total, nil
}

// Budget drops the oldest turns until the counted size is below Max. The
// most recent turn is always kept.
type Budget struct {
	Max     int
	Counter Counter
}

func TokenBudget(max int, counter Counter) Budget {
	return Budget{Max: max, Counter: counter}
}

func (b Budget) Apply(turns []model.Turn) []model.Turn {
	if b.Max <= 0 || b.Counter == nil {
		return turns
	}
	for len(turns) > 1 {
		count, err := b.Counter.Count(turns)
		if err == nil && count < b.Max {
			break
		}
		turns = turns[1:]
	}
	return dropLeadingAssistant(turns)
}

func dropLeadingAssistant(turns []model.Turn) []model.Turn {
	for len(turns) > 1 && turns[0].Role == model.RoleAssistant {
		turns = turns[1:]
	}
	return turns
}

package usecase

import (
	"context"
	"strings"

	"github.com/sarah-larkin/ai-learning-series/internal/prompt"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
)

const (
	PrefixError   = "error:"
	PrefixDebug   = "debug:"
	PrefixConcept = "concept:"
)

// BuddyUsecase is the Code Buddy helper: a session with the Code Buddy
// instruction and canned phrasings for common requests.
type BuddyUsecase struct {
	session *session.Session
}

func NewBuddyUsecase(s *session.Session) *BuddyUsecase {
	return &BuddyUsecase{session: s}
}

func (b *BuddyUsecase) Chat(ctx context.Context, message string) (string, error) {
	return b.session.Send(ctx, message)
}

// ExplainError asks about an error message, adding the reference summary
// when the error type is a known one.
func (b *BuddyUsecase) ExplainError(ctx context.Context, errorMessage string) (string, error) {
	question := prompt.ExplainError(errorMessage)
	return b.session.Send(ctx, prompt.WithReference(question, prompt.CommonErrors, prompt.ErrorName(errorMessage)))
}

func (b *BuddyUsecase) DebugCode(ctx context.Context, code string) (string, error) {
	return b.session.Send(ctx, prompt.DebugCode(code))
}

func (b *BuddyUsecase) ExplainConcept(ctx context.Context, concept string) (string, error) {
	return b.session.Send(ctx, prompt.WithReference(prompt.ExplainConcept(concept), prompt.ProgrammingConcepts, concept))
}

// Tips is answered locally, without a remote call.
func (b *BuddyUsecase) Tips() string {
	return prompt.Tips()
}

// Route dispatches input by its prefix: "error:", "debug:" and "concept:"
// go to the matching helper, anything else is sent as is.
func (b *BuddyUsecase) Route(ctx context.Context, input string) (string, error) {
	for _, route := range []struct {
		prefix string
		handle func(context.Context, string) (string, error)
	}{
		{PrefixError, b.ExplainError},
		{PrefixDebug, b.DebugCode},
		{PrefixConcept, b.ExplainConcept},
	} {
		if len(input) < len(route.prefix) || !strings.EqualFold(input[:len(route.prefix)], route.prefix) {
			continue
		}
		arg := strings.TrimSpace(input[len(route.prefix):])
		if arg == "" {
			return "", session.ErrEmptyMessage
		}
		return route.handle(ctx, arg)
	}
	return b.Chat(ctx, input)
}

func (b *BuddyUsecase) Clear() {
	b.session.ClearHistory()
}

func (b *BuddyUsecase) Session() *session.Session {
	return b.session
}

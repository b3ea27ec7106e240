// Package gemini adapts sessions to the Gemini API via generative-ai-go.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

var (
	ErrNoUserTurn    = errors.New("transcript must end with a user turn")
	ErrMissingAPIKey = errors.New("gemini api key is empty")
)

type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, mainly for tests and proxies.
	BaseURL string
}

type Endpoint struct {
	client *genai.Client
	logger zerolog.Logger
}

func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Endpoint, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Endpoint{client: client, logger: logger}, nil
}

func (e *Endpoint) Generate(ctx context.Context, req model.Request) (model.Reply, error) {
	history, last, err := splitTranscript(req)
	if err != nil {
		return model.Reply{}, err
	}

	m := e.client.GenerativeModel(req.ModelID)
	if req.SystemInstruction != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	m.GenerationConfig = generationConfig(req.Options)

	chat := m.StartChat()
	chat.History = history

	e.logger.Debug().
		Str("model", req.ModelID).
		Int("history_len", len(history)).
		Msg("gemini generate")
	resp, err := chat.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to generate content: %w", err)
	}
	return replyFromResponse(resp)
}

// ListModels returns the names of the models available to the API key.
func (e *Endpoint) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	it := e.client.ListModels(ctx)
	for {
		info, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		names = append(names, strings.TrimPrefix(info.Name, "models/"))
	}
	return names, nil
}

func (e *Endpoint) Close() error {
	return e.client.Close()
}

// splitTranscript maps turns to Gemini contents and separates the final user
// message, which is sent as the new chat message.
func splitTranscript(req model.Request) ([]*genai.Content, string, error) {
	last, ok := req.LastUserText()
	if !ok {
		return nil, "", ErrNoUserTurn
	}
	turns := req.Transcript
	history := make([]*genai.Content, 0, len(turns)-1)
	for _, turn := range turns[:len(turns)-1] {
		role, err := wireRole(turn.Role)
		if err != nil {
			return nil, "", err
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return history, last, nil
}

func wireRole(role model.Role) (string, error) {
	switch role {
	case model.RoleUser:
		return roleUser, nil
	case model.RoleAssistant:
		return roleModel, nil
	default:
		return "", fmt.Errorf("unsupported role %q", role)
	}
}

func generationConfig(opts model.GenerationOptions) genai.GenerationConfig {
	var cfg genai.GenerationConfig
	if opts.Temperature != nil {
		cfg.SetTemperature(*opts.Temperature)
	}
	if opts.TopP != nil {
		cfg.SetTopP(*opts.TopP)
	}
	if opts.MaxOutputTokens != nil {
		cfg.SetMaxOutputTokens(*opts.MaxOutputTokens)
	}
	return cfg
}

func replyFromResponse(resp *genai.GenerateContentResponse) (model.Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return model.Reply{}, errors.New("response has no candidates")
	}
	var reply model.Reply
	var text strings.Builder
	cand := resp.Candidates[0]
	if cand.FinishReason != genai.FinishReasonUnspecified {
		reply.FinishReason = cand.FinishReason.String()
	}
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	reply.Text = text.String()
	if resp.UsageMetadata != nil {
		reply.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		reply.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return reply, nil
}

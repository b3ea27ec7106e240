// Package openai adapts sessions to OpenAI-compatible chat completion APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/sashabaranov/go-openai"
)

var ErrNoChoices = errors.New("response has no choices")

type Config struct {
	APIKey  string
	BaseURL string
	// Stream reads the completion as a stream of deltas.
	Stream bool
	// HTTPClient replaces the default client, e.g. with an authenticated one.
	HTTPClient openai.HTTPDoer
}

type Endpoint struct {
	client *openai.Client
	stream bool
	logger zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) *Endpoint {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}
	return &Endpoint{
		client: openai.NewClientWithConfig(clientConfig),
		stream: cfg.Stream,
		logger: logger,
	}
}

func (e *Endpoint) Generate(ctx context.Context, req model.Request) (model.Reply, error) {
	messages, err := chatMessages(req.SystemInstruction, req.Transcript)
	if err != nil {
		return model.Reply{}, err
	}
	chatReq := chatRequest(req.ModelID, messages, req.Options)

	e.logger.Debug().
		Str("model", req.ModelID).
		Int("messages", len(messages)).
		Bool("stream", e.stream).
		Msg("openai chat completion")
	if e.stream {
		return e.generateStream(ctx, chatReq)
	}

	resp, err := e.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.Reply{}, ErrNoChoices
	}
	return model.Reply{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (e *Endpoint) generateStream(ctx context.Context, chatReq openai.ChatCompletionRequest) (model.Reply, error) {
	chatReq.Stream = true
	stream, err := e.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to create chat completion stream: %w", err)
	}
	defer stream.Close()

	var reply model.Reply
	var answer strings.Builder
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Reply{}, fmt.Errorf("failed to receive stream: %w", err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		answer.WriteString(response.Choices[0].Delta.Content)
		if response.Choices[0].FinishReason != "" {
			reply.FinishReason = string(response.Choices[0].FinishReason)
		}
	}
	reply.Text = answer.String()
	return reply, nil
}

// ListModels returns the model ids served by the endpoint.
func (e *Endpoint) ListModels(ctx context.Context) ([]string, error) {
	list, err := e.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// chatMessages puts the system instruction first, then the transcript.
func chatMessages(systemInstruction string, turns []model.Turn) ([]openai.ChatCompletionMessage, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstruction,
		})
	}
	for _, turn := range turns {
		role, err := wireRole(turn.Role)
		if err != nil {
			return nil, err
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Text,
		})
	}
	return messages, nil
}

func wireRole(role model.Role) (string, error) {
	switch role {
	case model.RoleUser:
		return openai.ChatMessageRoleUser, nil
	case model.RoleAssistant:
		return openai.ChatMessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("unsupported role %q", role)
	}
}

// chatRequest leaves unset options out of the payload. go-openai omits a
// zero temperature, so an explicit 0 falls back to the server default.
func chatRequest(modelID string, messages []openai.ChatCompletionMessage, opts model.GenerationOptions) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    modelID,
		Messages: messages,
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.TopP != nil {
		req.TopP = *opts.TopP
	}
	if opts.MaxOutputTokens != nil {
		req.MaxTokens = int(*opts.MaxOutputTokens)
	}
	return req
}

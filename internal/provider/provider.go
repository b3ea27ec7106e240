// Package provider builds the endpoint selected by configuration.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/config"
	"github.com/sarah-larkin/ai-learning-series/internal/provider/gemini"
	"github.com/sarah-larkin/ai-learning-series/internal/provider/openai"
	"github.com/sarah-larkin/ai-learning-series/internal/provider/vertex"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
)

var ErrListNotSupported = errors.New("provider cannot list models")

type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Endpoint, error) {
	name := strings.ToLower(cfg.Model.Provider)
	logger = logger.With().Str("provider", name).Logger()
	switch name {
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
		}, logger)
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Stream:  cfg.OpenAI.Stream,
		}, logger), nil
	case config.ProviderVertex:
		return vertex.New(ctx, vertex.Config{
			ProjectID: cfg.Vertex.ProjectID,
			Location:  cfg.Vertex.Location,
		}, logger)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Model.Provider)
	}
}

func ListModels(ctx context.Context, endpoint session.Endpoint) ([]string, error) {
	lister, ok := endpoint.(ModelLister)
	if !ok {
		return nil, ErrListNotSupported
	}
	return lister.ListModels(ctx)
}

// Close releases the endpoint's client when it holds one.
func Close(endpoint session.Endpoint) error {
	if closer, ok := endpoint.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

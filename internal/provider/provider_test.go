package provider

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/config"
	"github.com/sarah-larkin/ai-learning-series/internal/provider/openai"
	"github.com/sarah-larkin/ai-learning-series/internal/provider/vertex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewSelectsProvider(t *testing.T) {
	cfg := &config.Config{
		Model:  config.Model{Provider: "OpenAI", ID: "gpt-4o-mini"},
		OpenAI: config.OpenAI{APIKey: "k"},
	}
	endpoint, err := New(t.Context(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &openai.Endpoint{}, endpoint)
	assert.NoError(t, Close(endpoint))
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := &config.Config{Model: config.Model{Provider: "palm"}}
	_, err := New(t.Context(), cfg, zerolog.Nop())
	require.ErrorIs(t, err, config.ErrUnknownProvider)
}

func TestNewVertexRequiresProject(t *testing.T) {
	cfg := &config.Config{Model: config.Model{Provider: config.ProviderVertex}}
	_, err := New(t.Context(), cfg, zerolog.Nop())
	require.ErrorIs(t, err, vertex.ErrMissingProject)
}

func TestListModelsNotSupported(t *testing.T) {
	endpoint, err := vertex.New(t.Context(), vertex.Config{ProjectID: "p", TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})}, zerolog.Nop())
	require.NoError(t, err)
	_, err = ListModels(t.Context(), endpoint)
	require.ErrorIs(t, err, ErrListNotSupported)
}

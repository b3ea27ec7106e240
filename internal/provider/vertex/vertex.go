// Package vertex reaches Gemini models through the OpenAI-compatible
// endpoint of a Vertex AI project.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/sarah-larkin/ai-learning-series/internal/provider/openai"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	DefaultLocation = "us-central1"
	cloudPlatform   = "https://www.googleapis.com/auth/cloud-platform"
	publisherPrefix = "google/"
)

var ErrMissingProject = errors.New("vertex project id is empty")

type Config struct {
	ProjectID string
	Location  string
	// TokenSource overrides Application Default Credentials.
	TokenSource oauth2.TokenSource
	// BaseURL overrides the URL derived from project and location.
	BaseURL string
}

type Endpoint struct {
	inner *openai.Endpoint
}

func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Endpoint, error) {
	if cfg.ProjectID == "" {
		return nil, ErrMissingProject
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	ts := cfg.TokenSource
	if ts == nil {
		var err error
		ts, err = google.DefaultTokenSource(ctx, cloudPlatform)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL(cfg.ProjectID, cfg.Location)
	}
	inner := openai.New(openai.Config{
		BaseURL:    baseURL,
		HTTPClient: oauth2.NewClient(ctx, ts),
	}, logger.With().Str("project", cfg.ProjectID).Str("location", cfg.Location).Logger())
	return &Endpoint{inner: inner}, nil
}

// BaseURL returns the OpenAI-compatible endpoint of a project location.
func BaseURL(projectID, location string) string {
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/endpoints/openapi",
		location, projectID, location,
	)
}

// ModelName qualifies a bare Gemini model id with its publisher.
func ModelName(id string) string {
	if strings.Contains(id, "/") {
		return id
	}
	return publisherPrefix + id
}

func (e *Endpoint) Generate(ctx context.Context, req model.Request) (model.Reply, error) {
	req.ModelID = ModelName(req.ModelID)
	return e.inner.Generate(ctx, req)
}

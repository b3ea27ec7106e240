package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/config"
	"github.com/sarah-larkin/ai-learning-series/internal/history"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
	in_memory "github.com/sarah-larkin/ai-learning-series/internal/storage/in-memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoEndpoint() session.Endpoint {
	return session.EndpointFunc(func(_ context.Context, req model.Request) (model.Reply, error) {
		last, _ := req.LastUserText()
		return model.Reply{Text: "echo: " + last}, nil
	})
}

func newTestApp(cfg config.Config) *App {
	if cfg.Model.ID == "" {
		cfg.Model.ID = "test-model"
	}
	return &App{Config: &cfg, Endpoint: echoEndpoint(), Logger: zerolog.Nop()}
}

func TestNewRejectsMissingCredential(t *testing.T) {
	_, err := New(context.Background(), &config.Config{
		Model: config.Model{Provider: config.ProviderGemini, ID: "m"},
	}, zerolog.Nop())
	require.ErrorIs(t, err, config.ErrMissingCredential)
}

func TestSessionConfig(t *testing.T) {
	a := newTestApp(config.Config{Model: config.Model{
		Temperature: "0.3",
		Timeout:     time.Second,
	}})

	cfg, err := a.SessionConfig("be nice")
	require.NoError(t, err)
	assert.Equal(t, "test-model", cfg.ModelID)
	assert.Equal(t, "be nice", cfg.SystemInstruction)
	assert.Equal(t, time.Second, cfg.Timeout)
	require.NotNil(t, cfg.Options.Temperature)
	assert.InDelta(t, 0.3, *cfg.Options.Temperature, 1e-6)
	assert.Nil(t, cfg.Options.TopP)

	a.Config.Model.TopP = "high"
	_, err = a.SessionConfig("")
	require.ErrorIs(t, err, model.ErrInvalidOption)
}

func TestWindow(t *testing.T) {
	a := newTestApp(config.Config{})

	w, err := a.Window(0)
	require.NoError(t, err)
	assert.Nil(t, w)

	w, err = a.Window(5)
	require.NoError(t, err)
	assert.Equal(t, history.Trailing(5), w)

	if testing.Short() {
		t.Skip("token budget needs the tiktoken encoding")
	}
	a.Config.Model.TokenBudget = 1000
	w, err = a.Window(5)
	require.NoError(t, err)
	assert.IsType(t, history.Budget{}, w)
}

func TestNewSession(t *testing.T) {
	a := newTestApp(config.Config{Model: config.Model{HistoryWindow: 2}})

	s, err := a.NewSession("instruction")
	require.NoError(t, err)
	reply, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", reply)
	assert.Equal(t, "instruction", s.SystemInstruction())
}

func TestChatStorageDefaultsToMemory(t *testing.T) {
	a := newTestApp(config.Config{Storage: config.Storage{ChatTTL: time.Hour}})

	storage, closeStorage, err := a.ChatStorage(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &in_memory.ChatStorage{}, storage)
	assert.NoError(t, closeStorage())
}

func TestChatUsecaseRoundTrip(t *testing.T) {
	a := newTestApp(config.Config{})
	cfg, err := a.SessionConfig("instruction")
	require.NoError(t, err)

	chat, closeStorage, err := a.ChatUsecase(context.Background(), cfg, 4)
	require.NoError(t, err)
	defer closeStorage()

	_, err = chat.Send(context.Background(), "web:1", "hello")
	require.NoError(t, err)
	turns, err := chat.Transcript(context.Background(), "web:1")
	require.NoError(t, err)
	assert.Equal(t, []model.Turn{model.UserTurn("hello"), model.AssistantTurn("echo: hello")}, turns)
}

func TestWCCInstruction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<div class="event"><h3>Python Workshop</h3><span class="date">March 3</span><p>Intro session</p></div>`))
	}))
	defer srv.Close()

	a := newTestApp(config.Config{Knowledge: config.Knowledge{
		FAQPath:       "../knowledge/testdata/faqs.json",
		EventsURL:     srv.URL,
		ScrapeEvents:  true,
		ScrapeTimeout: time.Second,
	}})

	instruction, err := a.WCCInstruction(context.Background())
	require.NoError(t, err)
	assert.Contains(t, instruction, "Q: What is WCC?")
	assert.Contains(t, instruction, "- Python Workshop on March 3: Intro session")

	a.Config.Knowledge.FAQPath = "missing.json"
	_, err = a.WCCInstruction(context.Background())
	require.Error(t, err)
}

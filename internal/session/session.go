// Package session implements a conversational session over a stateless
// text-generation endpoint. Memory is simulated by resending the whole
// transcript on every call.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrEmptyReply   = errors.New("endpoint returned an empty reply")
	ErrNoModel      = errors.New("model id is required")
	ErrNoEndpoint   = errors.New("endpoint is required")
)

// Endpoint is a remote text-generation service. Implementations must not
// keep conversation state between calls.
type Endpoint interface {
	Generate(ctx context.Context, req model.Request) (model.Reply, error)
}

// EndpointFunc adapts a function to Endpoint.
type EndpointFunc func(ctx context.Context, req model.Request) (model.Reply, error)

func (f EndpointFunc) Generate(ctx context.Context, req model.Request) (model.Reply, error) {
	return f(ctx, req)
}

// Window selects which part of the transcript is sent with a request. It
// must not modify its input.
type Window interface {
	Apply(turns []model.Turn) []model.Turn
}

type Config struct {
	ModelID           string
	SystemInstruction string
	Options           model.GenerationOptions
	// Timeout bounds each remote call when positive.
	Timeout time.Duration
}

type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithTranscript seeds the session with previously stored turns.
func WithTranscript(turns []model.Turn) Option {
	return func(s *Session) { s.transcript = slices.Clone(turns) }
}

func WithWindow(w Window) Option {
	return func(s *Session) { s.window = w }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// Session holds a system instruction, an ordered transcript and the
// endpoint configuration. Send and ClearHistory are serialized, so at most
// one remote call is in flight per session.
type Session struct {
	id       string
	cfg      Config
	endpoint Endpoint
	window   Window
	logger   zerolog.Logger

	mu         sync.Mutex
	transcript []model.Turn
}

func New(endpoint Endpoint, cfg Config, opts ...Option) (*Session, error) {
	if endpoint == nil {
		return nil, ErrNoEndpoint
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		return nil, ErrNoModel
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		endpoint: endpoint,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i, turn := range s.transcript {
		if !turn.Role.Valid() {
			return nil, fmt.Errorf("transcript turn %d has invalid role %q", i, turn.Role)
		}
	}
	return s, nil
}

// Send appends the user message, calls the endpoint with the full
// transcript and appends the reply. On failure the transcript is left as it
// was before the call and the returned error is a *RemoteError.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = append(s.transcript, model.UserTurn(message))

	req := model.Request{
		ModelID:           s.cfg.ModelID,
		SystemInstruction: s.cfg.SystemInstruction,
		Transcript:        slices.Clone(s.transcript),
		Options:           s.cfg.Options,
	}
	if s.window != nil {
		req.Transcript = s.window.Apply(req.Transcript)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.endpoint.Generate(ctx, req)
	if err == nil && strings.TrimSpace(reply.Text) == "" {
		err = ErrEmptyReply
	}
	if err != nil {
		s.transcript = s.transcript[:len(s.transcript)-1]
		s.logger.Warn().
			Err(err).
			Str("session_id", s.id).
			Str("model", s.cfg.ModelID).
			Dur("elapsed", time.Since(start)).
			Msg("remote call failed")
		return "", &RemoteError{ModelID: s.cfg.ModelID, Err: err}
	}

	s.transcript = append(s.transcript, model.AssistantTurn(reply.Text))
	s.logger.Debug().
		Str("session_id", s.id).
		Str("model", s.cfg.ModelID).
		Int("sent_turns", len(req.Transcript)).
		Int("transcript_len", len(s.transcript)).
		Int("input_tokens", reply.InputTokens).
		Int("output_tokens", reply.OutputTokens).
		Str("finish_reason", reply.FinishReason).
		Dur("elapsed", time.Since(start)).
		Msg("reply received")
	return reply.Text, nil
}

// ClearHistory empties the transcript. The system instruction and options
// are kept.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) ModelID() string {
	return s.cfg.ModelID
}

func (s *Session) SystemInstruction() string {
	return s.cfg.SystemInstruction
}

func (s *Session) Options() model.GenerationOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Options
}

// SetOptions replaces the generation options used by later sends. It waits
// for a send in flight to finish.
func (s *Session) SetOptions(opts model.GenerationOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Options = opts
	return nil
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

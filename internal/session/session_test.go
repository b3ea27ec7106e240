package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEndpoint struct {
	mu       sync.Mutex
	requests []model.Request
	reply    func(req model.Request) (model.Reply, error)
}

func (e *recordingEndpoint) Generate(_ context.Context, req model.Request) (model.Reply, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()
	if e.reply != nil {
		return e.reply(req)
	}
	last, _ := req.LastUserText()
	return model.Reply{Text: "echo: " + last}, nil
}

func (e *recordingEndpoint) last() model.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requests[len(e.requests)-1]
}

func (e *recordingEndpoint) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

func newTestSession(t *testing.T, endpoint Endpoint, opts ...Option) *Session {
	t.Helper()
	s, err := New(endpoint, Config{
		ModelID:           "test-model",
		SystemInstruction: "You are a test assistant.",
		Options: model.GenerationOptions{
			Temperature:     model.Float32(0.7),
			MaxOutputTokens: model.Int32(200),
		},
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	endpoint := &recordingEndpoint{}

	_, err := New(nil, Config{ModelID: "m"})
	require.ErrorIs(t, err, ErrNoEndpoint)

	_, err = New(endpoint, Config{ModelID: "  "})
	require.ErrorIs(t, err, ErrNoModel)

	_, err = New(endpoint, Config{ModelID: "m", Options: model.GenerationOptions{TopP: model.Float32(2)}})
	require.ErrorIs(t, err, model.ErrInvalidOption)

	_, err = New(endpoint, Config{ModelID: "m"}, WithTranscript([]model.Turn{{Role: "system", Text: "x"}}))
	require.Error(t, err)

	s, err := New(endpoint, Config{ModelID: "m"}, WithID("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID())
	assert.Equal(t, 0, s.Len())
}

func TestSendEndToEnd(t *testing.T) {
	endpoint := &recordingEndpoint{}
	s := newTestSession(t, endpoint)

	reply, err := s.Send(context.Background(), "Hello")
	require.NoError(t, err)
	require.NotEmpty(t, reply)
	require.Equal(t, []model.Turn{
		model.UserTurn("Hello"),
		model.AssistantTurn(reply),
	}, s.Transcript())

	s.ClearHistory()
	require.Empty(t, s.Transcript())

	_, err = s.Send(context.Background(), "Hi again")
	require.NoError(t, err)

	req := endpoint.last()
	assert.Equal(t, "You are a test assistant.", req.SystemInstruction)
	assert.Equal(t, "test-model", req.ModelID)
	assert.Equal(t, []model.Turn{model.UserTurn("Hi again")}, req.Transcript)
	require.NotNil(t, req.Options.Temperature)
	assert.InDelta(t, 0.7, *req.Options.Temperature, 1e-6)
	require.NotNil(t, req.Options.MaxOutputTokens)
	assert.Equal(t, int32(200), *req.Options.MaxOutputTokens)
	assert.Nil(t, req.Options.TopP)
}

func TestSendGrowsTranscript(t *testing.T) {
	endpoint := &recordingEndpoint{}
	s := newTestSession(t, endpoint)

	for k := 1; k <= 6; k++ {
		_, err := s.Send(context.Background(), fmt.Sprintf("message %d", k))
		require.NoError(t, err)

		transcript := s.Transcript()
		require.Len(t, transcript, 2*k)
		for i, turn := range transcript {
			if i%2 == 0 {
				assert.Equal(t, model.RoleUser, turn.Role)
			} else {
				assert.Equal(t, model.RoleAssistant, turn.Role)
			}
		}
		// The request carries every prior turn plus the new user message.
		assert.Len(t, endpoint.last().Transcript, 2*k-1)
	}
}

func TestSendRejectsBlankMessage(t *testing.T) {
	endpoint := &recordingEndpoint{}
	s := newTestSession(t, endpoint)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := s.Send(context.Background(), msg)
		require.ErrorIs(t, err, ErrEmptyMessage)
		assert.False(t, IsRemote(err))
	}
	assert.Equal(t, 0, endpoint.count())
	assert.Equal(t, 0, s.Len())
}

func TestSendFailureRollsBack(t *testing.T) {
	quota := errors.New("429 quota exceeded")
	fail := true
	endpoint := &recordingEndpoint{reply: func(req model.Request) (model.Reply, error) {
		if fail {
			return model.Reply{}, quota
		}
		return model.Reply{Text: "ok"}, nil
	}}
	s := newTestSession(t, endpoint)

	_, err := s.Send(context.Background(), "first")
	require.Error(t, err)
	require.ErrorIs(t, err, quota)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "test-model", remoteErr.ModelID)
	assert.Equal(t, "Error: 429 quota exceeded", DisplayText(err))
	assert.Empty(t, s.Transcript())

	fail = false
	_, err = s.Send(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, []model.Turn{model.UserTurn("second"), model.AssistantTurn("ok")}, s.Transcript())
}

func TestSendEmptyReply(t *testing.T) {
	endpoint := &recordingEndpoint{reply: func(model.Request) (model.Reply, error) {
		return model.Reply{Text: " "}, nil
	}}
	s := newTestSession(t, endpoint)

	_, err := s.Send(context.Background(), "hello")
	require.ErrorIs(t, err, ErrEmptyReply)
	assert.True(t, IsRemote(err))
	assert.Equal(t, 0, s.Len())
}

func TestSendTimeout(t *testing.T) {
	endpoint := EndpointFunc(func(ctx context.Context, _ model.Request) (model.Reply, error) {
		<-ctx.Done()
		return model.Reply{}, ctx.Err()
	})
	s, err := New(endpoint, Config{ModelID: "m", Timeout: 10 * time.Millisecond})
	require.NoError(t, err)

	_, err = s.Send(context.Background(), "hello")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, s.Len())
}

type lastTurns int

func (n lastTurns) Apply(turns []model.Turn) []model.Turn {
	if len(turns) <= int(n) {
		return turns
	}
	return turns[len(turns)-int(n):]
}

func TestSendWindowDoesNotTrimTranscript(t *testing.T) {
	endpoint := &recordingEndpoint{}
	s := newTestSession(t, endpoint, WithWindow(lastTurns(1)))

	for i := 0; i < 3; i++ {
		_, err := s.Send(context.Background(), "hi")
		require.NoError(t, err)
	}
	assert.Len(t, endpoint.last().Transcript, 1)
	assert.Equal(t, 6, s.Len())
}

func TestTranscriptIsCopy(t *testing.T) {
	s := newTestSession(t, &recordingEndpoint{}, WithTranscript([]model.Turn{
		model.UserTurn("a"),
		model.AssistantTurn("b"),
	}))

	transcript := s.Transcript()
	transcript[0].Text = "changed"
	assert.Equal(t, "a", s.Transcript()[0].Text)
}

func TestConcurrentSendsAreSerialized(t *testing.T) {
	var inFlight, maxInFlight int
	var mu sync.Mutex
	endpoint := EndpointFunc(func(context.Context, model.Request) (model.Reply, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return model.Reply{Text: "ok"}, nil
	})
	s := newTestSession(t, endpoint)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Send(context.Background(), "hi")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
	assert.Equal(t, 16, s.Len())
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "", DisplayText(nil))
	assert.Equal(t, "Error: boom", DisplayText(errors.New("boom")))
	assert.Equal(t, "Error: boom", DisplayText(&RemoteError{ModelID: "m", Err: errors.New("boom")}))
}

func TestSetOptionsWaitsForSend(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	endpoint := &recordingEndpoint{reply: func(req model.Request) (model.Reply, error) {
		if last, _ := req.LastUserText(); last == "slow" {
			close(started)
			<-release
		}
		return model.Reply{Text: "ok"}, nil
	}}
	s := newTestSession(t, endpoint)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "slow")
		done <- err
	}()
	<-started

	set := make(chan error, 1)
	go func() { set <- s.SetOptions(model.GenerationOptions{TopP: model.Float32(0.5)}) }()
	select {
	case <-set:
		t.Fatal("options changed during a send")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-set)

	assert.Equal(t, 2, s.Len())
	require.NotNil(t, s.Options().TopP)
	assert.InDelta(t, 0.5, *s.Options().TopP, 1e-6)
	assert.Nil(t, s.Options().Temperature)

	require.ErrorIs(t, s.SetOptions(model.GenerationOptions{TopP: model.Float32(3)}), model.ErrInvalidOption)
}

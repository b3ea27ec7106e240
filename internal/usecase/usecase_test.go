package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
)

type fakeEndpoint struct {
	mu       sync.Mutex
	requests []model.Request
	fail     error
}

func (f *fakeEndpoint) Generate(_ context.Context, req model.Request) (model.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.fail != nil {
		return model.Reply{}, f.fail
	}
	last, _ := req.LastUserText()
	return model.Reply{Text: "reply to " + last}, nil
}

func (f *fakeEndpoint) last() model.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeEndpoint) all() []model.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Request(nil), f.requests...)
}

var errQuota = errors.New("quota exceeded")

var _ session.Endpoint = (*fakeEndpoint)(nil)

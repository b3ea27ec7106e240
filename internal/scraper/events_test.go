package scraper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsPage = `<html><body>
<div class="event">
  <h3>Python Study Group</h3>
  <span class="date">12 March 2025</span>
  <p>Weekly beginners session.</p>
</div>
<div class="event">
  <h3>Broken record</h3>
</div>
<div class="event">
  <h3> Mentorship Meetup </h3>
  <span class="date">20 March 2025</span>
  <p>Meet mentors and mentees.</p>
  <p>Second paragraph is ignored.</p>
</div>
</body></html>`

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestEvents(t *testing.T) {
	url := serve(t, http.StatusOK, eventsPage)

	events := Events(context.Background(), nil, url)
	require.Equal(t, []model.Event{
		{Title: "Python Study Group", Date: "12 March 2025", Description: "Weekly beginners session."},
		{Title: "Mentorship Meetup", Date: "20 March 2025", Description: "Meet mentors and mentees."},
	}, events)
}

func TestEventsNeverFails(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	tests := []struct {
		name string
		url  string
	}{
		{name: "server error", url: serve(t, http.StatusInternalServerError, eventsPage)},
		{name: "malformed html", url: serve(t, http.StatusOK, `<div class="event"><h3>`)},
		{name: "no events", url: serve(t, http.StatusOK, "")},
		{name: "unreachable", url: closed.URL},
		{name: "invalid url", url: "://bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Events(context.Background(), http.DefaultClient, tt.url)
			assert.NotNil(t, events)
			assert.Empty(t, events)
		})
	}
}

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"github.com/sarah-larkin/ai-learning-series/internal/session"
)

// Slider bounds of the settings form.
const (
	minTemperature = 0.0
	maxTemperature = 2.0
	minMaxTokens   = 50
	maxMaxTokens   = 500
	minTopP        = 0.1
	maxTopP        = 1.0
)

type turnView struct {
	Role string
	Text string
}

type pageData struct {
	Title     string
	Greeting  string
	Turns     []turnView
	Settings  settingsView
	FormError string
}

type settingsView struct {
	Temperature     string
	MaxOutputTokens string
	TopP            string
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

type transcriptResponse struct {
	Turns   []model.Turn            `json:"turns"`
	Options model.GenerationOptions `json:"options"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	s.renderIndex(w, r, key, http.StatusOK, nil, "")
}

// renderIndex draws the page; extra turns are shown after the stored
// transcript without being part of it.
func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, key string, status int, extra []turnView, formError string) {
	turns, err := s.chat.Transcript(r.Context(), key)
	if err != nil {
		s.logger.Error().Err(err).Str("chat", key).Msg("failed to load transcript")
		http.Error(w, "failed to load conversation", http.StatusInternalServerError)
		return
	}
	opts, err := s.chat.Options(r.Context(), key)
	if err != nil {
		s.logger.Error().Err(err).Str("chat", key).Msg("failed to load options")
		http.Error(w, "failed to load conversation", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Title:     s.cfg.Title,
		Settings:  settingsFromOptions(opts),
		FormError: formError,
	}
	for _, turn := range turns {
		data.Turns = append(data.Turns, turnView{Role: string(turn.Role), Text: turn.Text})
	}
	data.Turns = append(data.Turns, extra...)
	if len(data.Turns) == 0 {
		data.Greeting = s.cfg.Greeting
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err = s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error().Err(err).Msg("failed to render index page")
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	message := r.FormValue("message")

	_, err := s.chat.Send(r.Context(), key, message)
	switch {
	case errors.Is(err, session.ErrEmptyMessage):
	case err != nil:
		s.logger.Warn().Err(err).Str("chat", key).Msg("send failed")
		s.renderIndex(w, r, key, http.StatusOK, []turnView{
			{Role: string(model.RoleUser), Text: message},
			{Role: string(model.RoleAssistant), Text: session.DisplayText(err)},
		}, "")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	if err := s.chat.Clear(r.Context(), key); err != nil {
		s.logger.Error().Err(err).Str("chat", key).Msg("failed to clear chat")
		http.Error(w, "failed to clear conversation", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	opts, err := parseSettings(r)
	if err == nil {
		err = s.chat.Configure(r.Context(), key, opts)
	}
	if err != nil {
		s.logger.Debug().Err(err).Str("chat", key).Msg("invalid settings")
		s.renderIndex(w, r, key, http.StatusBadRequest, nil, err.Error())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAPITranscript(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	turns, err := s.chat.Transcript(r.Context(), key)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, chatResponse{Error: "failed to load conversation"})
		return
	}
	opts, err := s.chat.Options(r.Context(), key)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, chatResponse{Error: "failed to load conversation"})
		return
	}
	if turns == nil {
		turns = []model.Turn{}
	}
	s.writeJSON(w, http.StatusOK, transcriptResponse{Turns: turns, Options: opts})
}

func (s *Server) handleAPIChat(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, chatResponse{Error: "bad request"})
		return
	}
	status, resp := s.send(r, key, req.Message)
	s.writeJSON(w, status, resp)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	var header http.Header
	id, err := cookieID(r)
	if err != nil {
		id = uuid.NewString()
		header = http.Header{}
		header.Add("Set-Cookie", (&http.Cookie{
			Name:     cookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(cookieMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}).String())
	}
	key := keyPrefix + id

	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	s.logger.Debug().Str("chat", key).Msg("websocket connected")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Str("chat", key).Msg("websocket read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_, resp := s.send(r, key, string(data))
		if err = conn.WriteJSON(resp); err != nil {
			s.logger.Debug().Err(err).Str("chat", key).Msg("websocket write failed")
			return
		}
	}
}

func (s *Server) send(r *http.Request, key, message string) (int, chatResponse) {
	reply, err := s.chat.Send(r.Context(), key, message)
	switch {
	case err == nil:
		return http.StatusOK, chatResponse{Reply: reply}
	case errors.Is(err, session.ErrEmptyMessage):
		return http.StatusBadRequest, chatResponse{Error: session.DisplayText(err)}
	case session.IsRemote(err):
		s.logger.Warn().Err(err).Str("chat", key).Msg("send failed")
		return http.StatusBadGateway, chatResponse{Error: session.DisplayText(err)}
	default:
		s.logger.Error().Err(err).Str("chat", key).Msg("send failed")
		return http.StatusInternalServerError, chatResponse{Error: session.DisplayText(err)}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to write response")
	}
}

func cookieID(r *http.Request) (string, error) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", err
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func parseSettings(r *http.Request) (model.GenerationOptions, error) {
	temperature, err := strconv.ParseFloat(r.FormValue("temperature"), 32)
	if err != nil || temperature < minTemperature || temperature > maxTemperature {
		return model.GenerationOptions{}, fmt.Errorf("temperature must be between %.1f and %.1f", minTemperature, maxTemperature)
	}
	maxTokens, err := strconv.Atoi(r.FormValue("max_output_tokens"))
	if err != nil || maxTokens < minMaxTokens || maxTokens > maxMaxTokens {
		return model.GenerationOptions{}, fmt.Errorf("max tokens must be between %d and %d", minMaxTokens, maxMaxTokens)
	}
	topP, err := strconv.ParseFloat(r.FormValue("top_p"), 32)
	if err != nil || topP < minTopP || topP > maxTopP {
		return model.GenerationOptions{}, fmt.Errorf("top-p must be between %.1f and %.1f", minTopP, maxTopP)
	}
	return model.GenerationOptions{
		Temperature:     model.Float32(float32(temperature)),
		MaxOutputTokens: model.Int32(int32(maxTokens)),
		TopP:            model.Float32(float32(topP)),
	}, nil
}

func settingsFromOptions(opts model.GenerationOptions) settingsView {
	view := settingsView{Temperature: "0.7", MaxOutputTokens: "200", TopP: "0.9"}
	if opts.Temperature != nil {
		view.Temperature = strconv.FormatFloat(float64(*opts.Temperature), 'f', 1, 32)
	}
	if opts.MaxOutputTokens != nil {
		view.MaxOutputTokens = strconv.Itoa(int(*opts.MaxOutputTokens))
	}
	if opts.TopP != nil {
		view.TopP = strconv.FormatFloat(float64(*opts.TopP), 'f', 1, 32)
	}
	return view
}

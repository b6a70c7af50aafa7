package webapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"taskchat/internal/taskstore"
)

type TaskStore interface {
	List() ([]taskstore.Task, error)
	Create(draft taskstore.Draft) (taskstore.Task, error)
	Update(id string, draft taskstore.Draft) (taskstore.Task, error)
	SetCompleted(id string, completed bool) (taskstore.Task, error)
	Delete(id string) (taskstore.Task, error)
	CountPending() (int64, error)
}

type AssistantClient interface {
	Respond(ctx context.Context, input string) (string, error)
}

type Deps struct {
	TaskStore TaskStore
	Assistant AssistantClient
	WebUI     http.Handler
	Logger    *slog.Logger
}

type Server struct {
	deps Deps
	mux  *http.ServeMux
	hub  *WSHub
}

func NewServer(deps Deps) *Server {
	s := &Server{deps: deps, mux: http.NewServeMux(), hub: NewWSHub()}
	s.registerTaskRoutes()
	s.registerAIRoutes()
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/ws", s.hub.HandleWS)
	if deps.WebUI != nil {
		s.mux.Handle("/", deps.WebUI)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) logger() *slog.Logger {
	if s.deps.Logger != nil {
		return s.deps.Logger
	}
	return slog.Default()
}

func (s *Server) publishEvent(topic, taskID string, payload map[string]any) {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.Publish(topic, taskID, payload)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, map[string]any{"status": "ok"})
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": data})
}

func respondCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "data": data})
}

func respondError(w http.ResponseWriter, code int, errCode string, msg string) {
	writeJSON(w, code, map[string]any{"ok": false, "error": map[string]any{"code": errCode, "message": msg}})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

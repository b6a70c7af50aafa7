package webapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (s *Server) registerAIRoutes() {
	s.mux.HandleFunc("/api/ai", s.handleAIPrompt)
}

type aiPromptRequest struct {
	Input string `json:"input"`
}

// handleAIPrompt forwards free text to the hosted model and returns the raw
// reply. Intent parsing happens on the client; the proxy stays a pass-through.
func (s *Server) handleAIPrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if s.deps.Assistant == nil {
		respondError(w, http.StatusServiceUnavailable, "AI_UNAVAILABLE", "assistant is not configured")
		return
	}
	var req aiPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", `"input" is required`)
		return
	}
	reply, err := s.deps.Assistant.Respond(r.Context(), req.Input)
	if err != nil {
		s.logger().Error("ai request failed", "error", err)
		respondError(w, http.StatusBadGateway, "AI_REQUEST_FAILED", "error generating AI response")
		return
	}
	respondOK(w, map[string]any{"response": reply})
}

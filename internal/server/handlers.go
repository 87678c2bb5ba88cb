package server

import (
	"context"
	"embed"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/phuslu/log"

	"github.com/abduilm/lexuz-bot/internal/domain"
)

//go:embed web/index.html
var webFS embed.FS

// askRequest is the POST /ask body. TopK is honored only by the live
// variant, which can fetch a caller-chosen number of pages.
type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// askerWithCount is implemented by the live variant, which accepts a
// per-request result-count override.
type askerWithCount interface {
	AskN(ctx context.Context, question string, k int) (domain.Answer, error)
}

func (s *Server) ask(r *http.Request, req askRequest) (domain.Answer, error) {
	if req.TopK > 0 {
		if n, ok := s.asker.(askerWithCount); ok {
			return n.AskN(r.Context(), req.Question, req.TopK)
		}
	}
	return s.asker.Ask(r.Context(), req.Question)
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) askHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	ans, err := s.ask(r, req)
	if err != nil {
		log.Error().Err(err).Msg("Ask failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

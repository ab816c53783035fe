package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/policy"
	"github.com/modlens/modlens/internal/retrieval"
)

// Search limits for GET /policy/search.
const (
	defaultSearchLimit = 3
	maxSearchLimit     = 50
)

// maxBodyBytes caps request bodies well above the longest accepted text.
const maxBodyBytes = 1 << 20

type analyzeRequest struct {
	Text string `json:"text"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail     string `json:"detail"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

type addPolicyResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type searchResponse struct {
	Results []retrieval.Hit `json:"results"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, moderation.NewInvalidInput("malformed", "Request body must be a JSON object with a text field."))
		return
	}

	resp, err := s.deps.Analyzer.Analyze(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddPolicy(w http.ResponseWriter, r *http.Request) {
	var req policy.AddRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Request body must be a JSON object."})
		return
	}

	id, err := s.deps.Policies.Add(r.Context(), req)
	if err != nil {
		s.logger.Warn("policy add failed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, addPolicyResponse{Message: "Policy stored successfully", ID: id})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "query parameter is required"})
		return
	}

	limit := defaultSearchLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSearchLimit)
	}

	hits, err := s.deps.Search.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("policy search failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}
	if hits == nil {
		hits = []retrieval.Hit{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits})
}

// writeError reports err with its user-facing description: 400 for invalid
// input, 500 for everything else.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	report := moderation.Describe(err)
	status := http.StatusInternalServerError
	if moderation.IsInvalidInput(err) {
		status = http.StatusBadRequest
	} else {
		s.logger.Error("analysis request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Detail:     report.Message,
		Type:       report.Type,
		Suggestion: report.Suggestion,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

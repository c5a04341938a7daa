package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"cloudvars/internal/storage"
)

// Server is the HTTP transport adapter over a single store instance.
type Server struct {
	store   *storage.Store
	origins []string
	logger  zerolog.Logger
	start   time.Time
}

// New creates a server for the given store. origins lists the CORS
// origins allowed to call the API; "*" allows any.
func New(store *storage.Store, origins []string, logger zerolog.Logger) *Server {
	return &Server{
		store:   store,
		origins: origins,
		logger:  logger,
		start:   time.Now(),
	}
}

// Handler returns the routed handler, CORS middleware included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /api/cloud", s.handleGet)
	mux.HandleFunc("POST /api/cloud", s.handleSet)
	mux.HandleFunc("GET /api/cloud/all", s.handleGetAll)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.withCORS(mux)
}

// setRequest is the POST /api/cloud body. Value is kept raw so numbers
// and booleans can be stringified the way the store expects.
type setRequest struct {
	Project   string          `json:"project"`
	Name      string          `json:"name"`
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
}

type getResponse struct {
	Success   bool   `json:"success"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

type setResponse struct {
	Success   bool   `json:"success"`
	Name      string `json:"name"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
	Timestamp int64  `json:"timestamp"`
}

type allResponse struct {
	Success   bool              `json:"success"`
	Variables map[string]string `json:"variables"`
}

type healthResponse struct {
	Status         string   `json:"status"`
	ActiveProjects int      `json:"activeProjects"`
	TotalVariables int      `json:"totalVariables"`
	ProjectIDs     []string `json:"projectIds"`
	Uptime         string   `json:"uptime"`
}

type errorResponse struct {
	Success         bool   `json:"success"`
	Kind            string `json:"kind"`
	Error           string `json:"error"`
	ServerValue     string `json:"serverValue,omitempty"`
	ServerTimestamp int64  `json:"serverTimestamp,omitempty"`
}

// handleHome serves the info page hosting platforms probe.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cloud Variables Server",
		"status":  "running",
		"policy":  s.store.Policy().String(),
		"endpoints": map[string]string{
			"get":     "/api/cloud?project=<id>&name=<variable_name>",
			"post":    "/api/cloud",
			"get_all": "/api/cloud/all?project=<id>",
			"health":  "/health",
		},
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	name := r.URL.Query().Get("name")

	rec, err := s.store.Get(project, name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info().
		Str("project", project).
		Str("name", name).
		Str("value", rec.Value).
		Msg("GET variable")

	writeJSON(w, http.StatusOK, getResponse{
		Success:   true,
		Name:      name,
		Value:     rec.Value,
		Timestamp: rec.Timestamp,
	})
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &storage.Error{
			Kind:    storage.Internal,
			Message: fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}

	if req.Name == "" || req.Value == nil {
		s.writeError(w, &storage.Error{
			Kind:    storage.InvalidArgument,
			Message: "name and value are required",
		})
		return
	}

	value, err := stringifyValue(req.Value)
	if err != nil {
		s.writeError(w, &storage.Error{
			Kind:    storage.Internal,
			Message: fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}

	res, err := s.store.Set(req.Project, req.Name, value, req.Timestamp)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info().
		Str("project", req.Project).
		Str("name", req.Name).
		Str("old", res.OldValue).
		Str("new", res.NewValue).
		Msg("POST variable")

	writeJSON(w, http.StatusOK, setResponse{
		Success:   true,
		Name:      req.Name,
		OldValue:  res.OldValue,
		NewValue:  res.NewValue,
		Timestamp: res.Timestamp,
	})
}

func (s *Server) handleGetAll(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")

	vars, err := s.store.GetAll(project)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info().
		Str("project", project).
		Int("count", len(vars)).
		Msg("GET all variables")

	writeJSON(w, http.StatusOK, allResponse{Success: true, Variables: vars})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.store.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		ActiveProjects: st.ProjectCount,
		TotalVariables: st.VariableCount,
		ProjectIDs:     st.ProjectIDs,
		Uptime:         fmt.Sprintf("%.2f seconds", time.Since(s.start).Seconds()),
	})
}

// withCORS applies the CORS policy and short-circuits preflight
// requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowOrigin returns the Access-Control-Allow-Origin value for a
// request origin, or "" when the origin is not allowed.
func (s *Server) allowOrigin(origin string) string {
	for _, allowed := range s.origins {
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
	}
	return ""
}

// writeError maps a store error onto its HTTP status and JSON body.
// Unknown error types are reported as internal.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var serr *storage.Error
	if !errors.As(err, &serr) {
		serr = &storage.Error{Kind: storage.Internal, Message: err.Error()}
	}

	status := http.StatusInternalServerError
	switch serr.Kind {
	case storage.InvalidArgument, storage.ValueTooLarge:
		status = http.StatusBadRequest
	case storage.Conflict:
		status = http.StatusConflict
	}

	s.logger.Warn().
		Str("kind", serr.Kind.String()).
		Str("error", serr.Message).
		Msg("request failed")

	writeJSON(w, status, errorResponse{
		Kind:            serr.Kind.String(),
		Error:           serr.Message,
		ServerValue:     serr.ServerValue,
		ServerTimestamp: serr.ServerTimestamp,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// stringifyValue converts a raw JSON value to its stored string form.
// Strings are stored as-is; numbers, booleans and null keep their JSON
// literal text, the server-side equivalent of stringifying client
// values before storage.
func stringifyValue(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("malformed value: %w", err)
	}
	return buf.String(), nil
}

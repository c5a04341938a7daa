package it

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/rs/zerolog"

	"cloudvars/internal/clock"
	"cloudvars/internal/server"
	"cloudvars/internal/storage"
)

// Harness runs a cloud variables server in-process over real HTTP.
type Harness struct {
	Store  *storage.Store
	srv    *httptest.Server
	client *http.Client
}

// NewHarness starts a server with the given conflict policy.
func NewHarness(policy storage.Policy) *Harness {
	store := storage.New(clock.Wall{}, policy)
	s := server.New(store, []string{"*"}, zerolog.Nop())
	return &Harness{
		Store:  store,
		srv:    httptest.NewServer(s.Handler()),
		client: &http.Client{},
	}
}

// Close shuts the server down.
func (h *Harness) Close() {
	h.srv.Close()
}

// URL returns the base URL of the running server.
func (h *Harness) URL() string {
	return h.srv.URL
}

// GetVar fetches one variable and returns the status code and decoded
// body.
func (h *Harness) GetVar(project, name string) (int, map[string]any, error) {
	u := fmt.Sprintf("%s/api/cloud?project=%s&name=%s",
		h.srv.URL, url.QueryEscape(project), url.QueryEscape(name))
	return h.do(http.MethodGet, u, nil)
}

// SetVar writes one variable. value may be any JSON-encodable type;
// timestamp is the client ordering token.
func (h *Harness) SetVar(project, name string, value any, timestamp int64) (int, map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"project":   project,
		"name":      name,
		"value":     value,
		"timestamp": timestamp,
	})
	if err != nil {
		return 0, nil, err
	}
	return h.do(http.MethodPost, h.srv.URL+"/api/cloud", body)
}

// GetAllVars fetches the project's variable snapshot.
func (h *Harness) GetAllVars(project string) (int, map[string]any, error) {
	u := fmt.Sprintf("%s/api/cloud/all?project=%s", h.srv.URL, url.QueryEscape(project))
	return h.do(http.MethodGet, u, nil)
}

// Health fetches the health endpoint.
func (h *Harness) Health() (int, map[string]any, error) {
	return h.do(http.MethodGet, h.srv.URL+"/health", nil)
}

func (h *Harness) do(method, u string, body []byte) (int, map[string]any, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, decoded, nil
}

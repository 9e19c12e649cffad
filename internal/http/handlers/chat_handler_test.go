// README: Handler tests for the thread and chat endpoints (real Concierge, in-memory stores).
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"concierge/internal/config"
	"concierge/internal/http/handlers"
	httpmiddleware "concierge/internal/http/middleware"
	"concierge/internal/infra"
	"concierge/internal/modules/hotel"
	"concierge/internal/modules/session"
	"concierge/internal/service"
)

// tokenVerifier treats the bearer token as the uid.
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (*infra.Identity, error) {
	if token == "bad" {
		return nil, errors.New("bad token")
	}
	return &infra.Identity{UID: token}, nil
}

func buildTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	hotels := hotel.NewService(hotel.FixtureInventory{}, hotel.NewMemoryCache(time.Hour),
		config.HotelsConfig{PremiumThreshold: 200, FallbackCount: 20}, zap.NewNop())
	c := service.NewConcierge(service.Deps{
		Sessions: session.NewMemoryStore(),
		Hotels:   hotels,
	})
	h := handlers.NewChatHandler(c, 5*time.Second)

	r := gin.New()
	api := r.Group("/api", httpmiddleware.Auth(verifier))
	api.POST("/threads", h.CreateThread)
	api.GET("/threads/:id", h.GetThread)
	api.GET("/threads/:id/history", h.History)
	api.DELETE("/threads/:id", h.DeleteThread)
	api.POST("/threads/:id/messages", h.PostMessage)
	api.POST("/chat", h.Chat)
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func createThread(t *testing.T, r *gin.Engine, auth string) string {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/threads", nil, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create thread: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var out struct {
		ThreadID string `json:"thread_id"`
	}
	decode(t, w, &out)
	if out.ThreadID == "" {
		t.Fatal("expected thread_id")
	}
	return out.ThreadID
}

func TestThreadLifecycle(t *testing.T) {
	r := buildTestRouter(nil)
	id := createThread(t, r, "")

	w := doRequest(r, http.MethodPost, "/api/threads/"+id+"/messages", map[string]string{"message": "I want a hotel in Lisbon"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("post message: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var turn struct {
		ThreadID string        `json:"thread_id"`
		Messages []string      `json:"messages"`
		State    session.State `json:"state"`
	}
	decode(t, w, &turn)
	if turn.ThreadID != id || len(turn.Messages) == 0 {
		t.Fatalf("unexpected turn response: %+v", turn)
	}
	if turn.State.Destination != "Lisbon" {
		t.Errorf("destination = %q, want Lisbon", turn.State.Destination)
	}

	w = doRequest(r, http.MethodGet, "/api/threads/"+id+"/history", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	var hist struct {
		Messages []struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"messages"`
	}
	decode(t, w, &hist)
	if len(hist.Messages) != 2 {
		t.Fatalf("history length = %d, want 2", len(hist.Messages))
	}
	for _, m := range hist.Messages {
		if !strings.HasPrefix(m.ID, "msg_") || len(m.ID) != 36 {
			t.Errorf("bad message id %q", m.ID)
		}
	}
	if hist.Messages[0].Role != "user" || hist.Messages[1].Role != "assistant" {
		t.Errorf("roles = %s, %s", hist.Messages[0].Role, hist.Messages[1].Role)
	}

	w = doRequest(r, http.MethodDelete, "/api/threads/"+id, nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	w = doRequest(r, http.MethodGet, "/api/threads/"+id, nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestPostMessage_Errors(t *testing.T) {
	r := buildTestRouter(nil)
	id := createThread(t, r, "")

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"empty message", "/api/threads/" + id + "/messages", map[string]string{"message": "   "}, http.StatusBadRequest},
		{"unknown thread", "/api/threads/does-not-exist/messages", map[string]string{"message": "hi"}, http.StatusNotFound},
		{"invalid id", "/api/threads/bad%20id/messages", map[string]string{"message": "hi"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, tt.path, tt.body, "")
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d (%s)", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func historyIDs(t *testing.T, r *gin.Engine, id string) []string {
	t.Helper()
	w := doRequest(r, http.MethodGet, "/api/threads/"+id+"/history", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	var hist struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	decode(t, w, &hist)
	ids := make([]string, len(hist.Messages))
	for i, m := range hist.Messages {
		ids[i] = m.ID
	}
	return ids
}

func TestHistory_IDsAreStable(t *testing.T) {
	r := buildTestRouter(nil)
	id := createThread(t, r, "")
	for _, msg := range []string{"I want a hotel in Lisbon", "from 2026-06-01 to 2026-06-03"} {
		if w := doRequest(r, http.MethodPost, "/api/threads/"+id+"/messages", map[string]string{"message": msg}, ""); w.Code != http.StatusOK {
			t.Fatalf("post %q: expected 200, got %d", msg, w.Code)
		}
	}

	first := historyIDs(t, r, id)
	second := historyIDs(t, r, id)
	if len(first) < 4 || len(second) != len(first) {
		t.Fatalf("history lengths = %d, %d", len(first), len(second))
	}
	seen := map[string]bool{}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("id %d changed between reads: %s -> %s", i, first[i], second[i])
		}
		if seen[first[i]] {
			t.Errorf("duplicate id %s", first[i])
		}
		seen[first[i]] = true
	}
}

func TestPostMessage_DeletedThreadIsNotRecreated(t *testing.T) {
	r := buildTestRouter(tokenVerifier{})
	id := createThread(t, r, "Bearer alice")
	if w := doRequest(r, http.MethodDelete, "/api/threads/"+id, nil, "Bearer alice"); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}

	w := doRequest(r, http.MethodPost, "/api/threads/"+id+"/messages", map[string]string{"message": "hi"}, "Bearer mallory")
	if w.Code != http.StatusNotFound {
		t.Fatalf("post after delete: expected 404, got %d", w.Code)
	}
	w = doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "hi", "thread_id": id}, "Bearer mallory")
	if w.Code != http.StatusNotFound {
		t.Fatalf("chat after delete: expected 404, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/threads/"+id, nil, "Bearer mallory"); w.Code != http.StatusNotFound {
		t.Errorf("thread came back: got %d", w.Code)
	}
}

func TestPostMessage_InvalidJSON(t *testing.T) {
	r := buildTestRouter(nil)
	id := createThread(t, r, "")
	req := httptest.NewRequest(http.MethodPost, "/api/threads/"+id+"/messages", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestThreadOwnership(t *testing.T) {
	r := buildTestRouter(tokenVerifier{})
	id := createThread(t, r, "Bearer alice")

	if w := doRequest(r, http.MethodGet, "/api/threads/"+id, nil, "Bearer alice"); w.Code != http.StatusOK {
		t.Errorf("owner read: expected 200, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/threads/"+id, nil, "Bearer bob"); w.Code != http.StatusForbidden {
		t.Errorf("other read: expected 403, got %d", w.Code)
	}
	w := doRequest(r, http.MethodPost, "/api/threads/"+id+"/messages", map[string]string{"message": "hi"}, "Bearer bob")
	if w.Code != http.StatusForbidden {
		t.Errorf("other post: expected 403, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/api/threads/"+id, nil, "Bearer bob"); w.Code != http.StatusForbidden {
		t.Errorf("other delete: expected 403, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/api/threads", nil, "Bearer bad"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", w.Code)
	}
}

func TestChat_StartsAndContinuesThread(t *testing.T) {
	r := buildTestRouter(nil)

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "hello"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("chat: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var first struct {
		ThreadID string `json:"thread_id"`
		Reply    string `json:"reply"`
	}
	decode(t, w, &first)
	if first.ThreadID == "" || !strings.Contains(first.Reply, "**City**") {
		t.Fatalf("unexpected first reply: %+v", first)
	}

	w = doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "Kyoto", "thread_id": first.ThreadID}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("chat continue: expected 200, got %d", w.Code)
	}
	var second struct {
		ThreadID string `json:"thread_id"`
		Reply    string `json:"reply"`
	}
	decode(t, w, &second)
	if second.ThreadID != first.ThreadID {
		t.Errorf("thread changed: %s -> %s", first.ThreadID, second.ThreadID)
	}
	if !strings.Contains(second.Reply, "Kyoto") {
		t.Errorf("expected the city to be acknowledged, got %q", second.Reply)
	}

	if w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": ""}, ""); w.Code != http.StatusBadRequest {
		t.Errorf("empty chat: expected 400, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "hi", "thread_id": "missing"}, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown thread: expected 404, got %d", w.Code)
	}
}

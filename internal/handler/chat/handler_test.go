package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
	agentModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/agent"
	chatservice "github.com/L4Y3R/ai-agent-work-sample/internal/service/chat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubAsker struct {
	release chan struct{}
	resp    *agentModel.RawResponse
}

func (s *stubAsker) Ask(context.Context, string) (*agentModel.RawResponse, error) {
	if s.release != nil {
		<-s.release
	}
	return s.resp, nil
}

func setupRouter(t *testing.T, asker *stubAsker) (*chi.Mux, *chatservice.Service) {
	t.Helper()
	chatSvc, err := chatservice.NewService(asker, config.ChatConfig{MaxSessions: 8}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, chatSvc.Shutdown(ctx))
	})
	handler := New(chatSvc, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) chat.Snapshot {
	t.Helper()
	resp := do(r, http.MethodPost, "/session", nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var snap chat.Snapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snap))
	require.NotEmpty(t, snap.SessionID)
	return snap
}

func TestCreateAndGetSession(t *testing.T) {
	r, _ := setupRouter(t, &stubAsker{})
	snap := createSession(t, r)

	resp := do(r, http.MethodGet, "/session/"+snap.SessionID, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"messages":[]`)
}

func TestGetUnknownSession(t *testing.T) {
	r, _ := setupRouter(t, &stubAsker{})

	resp := do(r, http.MethodGet, "/session/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestQueryWaitReturnsAnswer(t *testing.T) {
	r, _ := setupRouter(t, &stubAsker{resp: agentModel.TextResponse("42 ppm")})
	snap := createSession(t, r)

	resp := do(r, http.MethodPost, "/session/"+snap.SessionID+"/query", map[string]any{"query": "co2?", "wait": true})
	require.Equal(t, http.StatusOK, resp.Code)

	var body queryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "co2?", body.Question.Text)
	require.NotNil(t, body.Answer)
	assert.Equal(t, "42 ppm", body.Answer.Text)
	assert.Equal(t, chat.KindText, body.Answer.Kind)
}

func TestQueryBlankIsBadRequest(t *testing.T) {
	r, svc := setupRouter(t, &stubAsker{})
	snap := createSession(t, r)

	resp := do(r, http.MethodPost, "/session/"+snap.SessionID+"/query", map[string]any{"query": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	messages, err := svc.LoadTranscript(context.Background(), snap.SessionID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestQueryInvalidBody(t *testing.T) {
	r, _ := setupRouter(t, &stubAsker{})
	snap := createSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/session/"+snap.SessionID+"/query", bytes.NewReader([]byte("{")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestQueryWhilePendingConflicts(t *testing.T) {
	asker := &stubAsker{release: make(chan struct{}), resp: agentModel.TextResponse("ok")}
	r, svc := setupRouter(t, asker)
	snap := createSession(t, r)
	path := "/session/" + snap.SessionID + "/query"

	first := do(r, http.MethodPost, path, map[string]any{"query": "one"})
	require.Equal(t, http.StatusAccepted, first.Code)

	second := do(r, http.MethodPost, path, map[string]any{"query": "two"})
	assert.Equal(t, http.StatusConflict, second.Code)

	close(asker.release)
	session, err := svc.GetSession(context.Background(), snap.SessionID)
	require.NoError(t, err)
	require.NoError(t, session.Wait(context.Background()))
	assert.Len(t, session.Snapshot().Messages, 2)
}

func TestClearAndDeleteSession(t *testing.T) {
	r, svc := setupRouter(t, &stubAsker{resp: agentModel.TextResponse("ok")})
	snap := createSession(t, r)
	base := "/session/" + snap.SessionID

	resp := do(r, http.MethodPost, base+"/query", map[string]any{"query": "q", "wait": true})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(r, http.MethodDelete, base+"/messages", nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	messages, err := svc.LoadTranscript(context.Background(), snap.SessionID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	resp = do(r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = do(r, http.MethodDelete, base+"/messages", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

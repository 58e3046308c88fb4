package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	agentModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/agent"
	chatService "github.com/L4Y3R/ai-agent-work-sample/internal/service/chat"
)

type stubAsker struct{}

func (stubAsker) Ask(context.Context, string) (*agentModel.RawResponse, error) {
	return agentModel.TextResponse("ok"), nil
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := chatService.NewService(stubAsker{}, config.ChatConfig{MaxSessions: 2}, nil)
	require.NoError(t, err)
	return NewRouter(svc, "remote", nil)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","agent":"remote","sessions":0}`, rec.Body.String())
}

func TestRouterServesPageAndAPI(t *testing.T) {
	r := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>AI Agent Work Sample</title>")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

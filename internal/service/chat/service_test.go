package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	agentModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/agent"
)

func newTestService(t *testing.T, maxSessions int, asker *fakeAsker) *Service {
	t.Helper()
	svc, err := NewService(asker, config.ChatConfig{MaxSessions: maxSessions, StalePolicy: config.StaleAppend}, nil)
	require.NoError(t, err)
	return svc
}

func TestServiceGetSession(t *testing.T) {
	svc := newTestService(t, 4, &fakeAsker{})
	ctx := context.Background()

	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.SessionID)
	assert.Empty(t, snap.Messages)
	assert.False(t, snap.Pending)

	got, err := svc.GetSession(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, got.ID())
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := newTestService(t, 4, &fakeAsker{})
	ctx := context.Background()

	_, err := svc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Submit(ctx, "missing", "q")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.Clear(ctx, "missing"), ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, "missing"), ErrSessionNotFound)
	_, err = svc.LoadTranscript(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestServiceSubmitAndTranscript(t *testing.T) {
	svc := newTestService(t, 4, &fakeAsker{resp: agentModel.TextResponse("42 ppm")})
	ctx := context.Background()
	snap, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	turn, err := svc.Submit(ctx, snap.SessionID, "co2?")
	require.NoError(t, err)
	receive(t, turn.Answer)

	messages, err := svc.LoadTranscript(ctx, snap.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "42 ppm", messages[1].Text)

	require.NoError(t, svc.Clear(ctx, snap.SessionID))
	messages, err = svc.LoadTranscript(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestServiceSessionsAreIndependent(t *testing.T) {
	asker := &fakeAsker{release: make(chan struct{}), resp: agentModel.TextResponse("ok")}
	svc := newTestService(t, 4, asker)
	ctx := context.Background()

	a, _ := svc.CreateSession(ctx)
	b, _ := svc.CreateSession(ctx)

	turnA, err := svc.Submit(ctx, a.SessionID, "q")
	require.NoError(t, err)
	turnB, err := svc.Submit(ctx, b.SessionID, "q")
	require.NoError(t, err, "a pending tab must not block another tab")

	asker.release <- struct{}{}
	asker.release <- struct{}{}
	receive(t, turnA.Answer)
	receive(t, turnB.Answer)
}

func TestServiceEvictsLeastRecentlyUsed(t *testing.T) {
	svc := newTestService(t, 2, &fakeAsker{})
	ctx := context.Background()

	first, _ := svc.CreateSession(ctx)
	second, _ := svc.CreateSession(ctx)
	firstSession, err := svc.GetSession(ctx, first.SessionID)
	require.NoError(t, err)

	third, _ := svc.CreateSession(ctx)

	assert.Equal(t, 2, svc.Len())
	_, err = svc.GetSession(ctx, second.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.GetSession(ctx, first.SessionID)
	assert.NoError(t, err)
	_, err = svc.GetSession(ctx, third.SessionID)
	assert.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, first.SessionID))
	_, err = firstSession.Submit(ctx, "q")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestServiceShutdownWaitsForInflight(t *testing.T) {
	asker := &fakeAsker{release: make(chan struct{}), resp: agentModel.TextResponse("ok")}
	svc := newTestService(t, 4, asker)
	ctx := context.Background()

	snap, _ := svc.CreateSession(ctx)
	turn, err := svc.Submit(ctx, snap.SessionID, "q")
	require.NoError(t, err)

	shutdown := make(chan error, 1)
	go func() { shutdown <- svc.Shutdown(ctx) }()

	asker.release <- struct{}{}
	require.NoError(t, <-shutdown)
	receive(t, turn.Answer)
	assert.Zero(t, svc.Len())
}

func TestServiceCloseAllEndsStreamsAndShutdownStillWaits(t *testing.T) {
	asker := &fakeAsker{release: make(chan struct{}), resp: agentModel.TextResponse("ok")}
	svc := newTestService(t, 4, asker)
	ctx := context.Background()

	snap, _ := svc.CreateSession(ctx)
	session, err := svc.GetSession(ctx, snap.SessionID)
	require.NoError(t, err)
	events, stop := session.Subscribe()
	defer stop()

	turn, err := svc.Submit(ctx, snap.SessionID, "q")
	require.NoError(t, err)

	svc.CloseAll()
	assert.Zero(t, svc.Len())
	for range events {
	}

	shutdown := make(chan error, 1)
	go func() { shutdown <- svc.Shutdown(ctx) }()

	asker.release <- struct{}{}
	require.NoError(t, <-shutdown)
	receive(t, turn.Answer)
}

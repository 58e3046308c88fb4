package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
)

func TestStateSubmitAndSettle(t *testing.T) {
	var s State

	user := chat.NewUserMessage("co2?")
	s, ok := s.Submit(user)
	require.True(t, ok)
	assert.True(t, s.Pending)
	require.Len(t, s.Messages, 1)

	_, ok = s.Submit(chat.NewUserMessage("again"))
	assert.False(t, ok, "second submit while pending must be rejected")

	reply := chat.NewTextMessage("42 ppm", false)
	s, appended := s.Settle(reply, s.Epoch, config.StaleAppend)
	assert.True(t, appended)
	assert.False(t, s.Pending)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, chat.RoleUser, s.Messages[0].Role)
	assert.Equal(t, chat.RoleAssistant, s.Messages[1].Role)
}

func TestStateTransitionsDoNotMutatePreviousValues(t *testing.T) {
	before, _ := State{}.Submit(chat.NewUserMessage("one"))
	after, _ := before.Settle(chat.NewTextMessage("two", false), before.Epoch, config.StaleAppend)

	assert.Len(t, before.Messages, 1)
	assert.Len(t, after.Messages, 2)

	cleared := after.Clear()
	assert.Empty(t, cleared.Messages)
	assert.Len(t, after.Messages, 2)
}

func TestStateClearIsIdempotent(t *testing.T) {
	s, _ := State{}.Submit(chat.NewUserMessage("one"))
	s, _ = s.Settle(chat.NewTextMessage("two", false), s.Epoch, config.StaleAppend)

	once := s.Clear()
	twice := once.Clear()
	assert.Equal(t, once, twice)
	assert.Empty(t, twice.Messages)
	assert.False(t, twice.Pending)
}

func TestStateClearWhilePendingKeepsPending(t *testing.T) {
	s, _ := State{}.Submit(chat.NewUserMessage("one"))
	epoch := s.Epoch

	s = s.Clear()
	assert.True(t, s.Pending)
	assert.Empty(t, s.Messages)
	assert.NotEqual(t, epoch, s.Epoch)

	appended, ok := s.Settle(chat.NewTextMessage("late", false), epoch, config.StaleAppend)
	assert.True(t, ok)
	assert.Len(t, appended.Messages, 1)
	assert.False(t, appended.Pending)

	dropped, ok := s.Settle(chat.NewTextMessage("late", false), epoch, config.StaleDrop)
	assert.False(t, ok)
	assert.Empty(t, dropped.Messages)
	assert.False(t, dropped.Pending)
}

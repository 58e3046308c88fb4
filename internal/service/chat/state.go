package chat

import (
	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
)

// State is the chat log plus the pending flag. Transitions return a new
// value and never modify the receiver's message slice, so a State handed to a
// renderer stays valid after further transitions.
type State struct {
	Messages []chat.Message
	Pending  bool
	// Epoch changes when a clear happens while a request is in flight, so the
	// eventual reply can be recognised as stale.
	Epoch uint64
}

// Submit records the user's message and enters the pending state. It reports
// false, leaving the state untouched, when a request is already in flight.
func (s State) Submit(user chat.Message) (State, bool) {
	if s.Pending {
		return s, false
	}
	return State{
		Messages: appendMessage(s.Messages, user),
		Pending:  true,
		Epoch:    s.Epoch,
	}, true
}

// Settle records the reply to the request started at epoch and leaves the
// pending state. Under StaleDrop a reply that outlived a clear is discarded;
// the second result reports whether the reply was appended.
func (s State) Settle(reply chat.Message, epoch uint64, policy config.StalePolicy) (State, bool) {
	next := State{Messages: s.Messages, Epoch: s.Epoch}
	if epoch != s.Epoch && policy == config.StaleDrop {
		return next, false
	}
	next.Messages = appendMessage(s.Messages, reply)
	return next, true
}

// Clear empties the log. The pending flag is kept: clearing does not cancel
// the request in flight.
func (s State) Clear() State {
	epoch := s.Epoch
	if s.Pending {
		epoch++
	}
	return State{Pending: s.Pending, Epoch: epoch}
}

func appendMessage(messages []chat.Message, msg chat.Message) []chat.Message {
	out := make([]chat.Message, len(messages), len(messages)+1)
	copy(out, messages)
	return append(out, msg)
}

package app

import (
	"context"
	"errors"
	"strings"
	"time"

	agentModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/agent"
	"github.com/L4Y3R/ai-agent-work-sample/internal/service/agent"
)

// timeoutAsker gives the chat-model backend the same bound and error
// taxonomy as the remote agent client.
type timeoutAsker struct {
	next    agent.Asker
	timeout time.Duration
}

func (t *timeoutAsker) Ask(ctx context.Context, query string) (*agentModel.RawResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &agent.ValidationError{Reason: agent.EmptyQueryReason}
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	resp, err := t.next.Ask(ctx, query)
	if err != nil {
		return nil, &agent.TransportError{Err: err, Timeout: errors.Is(err, context.DeadlineExceeded)}
	}
	return resp, nil
}

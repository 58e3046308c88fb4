package chat

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	agentModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/agent"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeAsker answers with a fixed reply. When release is set, each call
// blocks until a value is sent on it.
type fakeAsker struct {
	mu      sync.Mutex
	calls   int
	queries []string
	release chan struct{}
	resp    *agentModel.RawResponse
	err     error
}

func (f *fakeAsker) Ask(_ context.Context, query string) (*agentModel.RawResponse, error) {
	f.mu.Lock()
	f.calls++
	f.queries = append(f.queries, query)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	return f.resp, f.err
}

func (f *fakeAsker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

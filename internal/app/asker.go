// Package app holds the wiring shared by the gateway and the terminal client.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	"github.com/L4Y3R/ai-agent-work-sample/internal/service/agent"
	"github.com/L4Y3R/ai-agent-work-sample/internal/service/ai"
)

const (
	ModeRemote = "remote"
	ModeLLM    = "llm"
)

var ErrNoAgent = errors.New("no agent configured: set AGENT_BASE_URL, or ARK_API_KEY and Model")

// NewAsker picks the backend that answers questions: the remote agent when
// AGENT_BASE_URL is set, otherwise the Ark chat model.
func NewAsker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (agent.Asker, string, error) {
	if cfg.Agent.Enabled() {
		logger.Info("using remote agent", zap.String("baseURL", cfg.Agent.BaseURL), zap.Duration("timeout", cfg.Agent.Timeout))
		return agent.NewClient(cfg.Agent, logger), ModeRemote, nil
	}

	if cfg.AI.Enabled() {
		svc, err := ai.NewService(ctx, cfg.AI, logger)
		if err != nil {
			return nil, "", fmt.Errorf("initialize ai service: %w", err)
		}
		logger.Info("no remote agent configured, answering with chat model", zap.String("model", cfg.AI.Model))
		return &timeoutAsker{next: svc, timeout: cfg.Agent.Timeout}, ModeLLM, nil
	}

	return nil, "", ErrNoAgent
}

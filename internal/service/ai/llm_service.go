package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	agentModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/agent"
)

const defaultSystemPrompt = `You are an AI assistant that answers questions about indoor air quality data
(CO2 in ppm, temperature, relative humidity, per room).
Answer in one or two short sentences. If the question cannot be answered from
air quality data, say so plainly.`

// Service answers questions directly with a chat model. It is used in place
// of the remote agent when only model credentials are configured. Every
// question is answered without history.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	system string
	logger *zap.Logger
}

// NewService builds the chat chain from the Ark configuration.
func NewService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newServiceWithModel(ctx, chatModel, logger)
}

func newServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chain:  runnable,
		system: defaultSystemPrompt,
		logger: logger.Named("ai"),
	}, nil
}

// Ask runs the question through the model and wraps the answer in the same
// envelope the remote agent returns.
func (s *Service) Ask(ctx context.Context, query string) (*agentModel.RawResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": s.system,
		"query":  query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}

	content := strings.TrimSpace(response.Content)
	s.logger.Debug("generated answer", zap.Int("length", len(content)))
	if content == "" {
		return &agentModel.RawResponse{Output: agentModel.Output{Success: false}}, nil
	}
	return agentModel.TextResponse(content), nil
}

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	agentModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/agent"
)

const (
	queryPath       = "/query"
	maxResponseSize = 16 << 20
)

// EmptyQueryReason is the validation text for blank questions.
const EmptyQueryReason = "Please enter a question."

// Asker answers a single natural-language question.
type Asker interface {
	Ask(ctx context.Context, query string) (*agentModel.RawResponse, error)
}

// Client talks to the remote agent over HTTP. One POST per question, no
// retries and no caching.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client for the configured agent endpoint.
func NewClient(cfg config.AgentConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("agent"),
	}
}

// Ask posts the query and decodes the agent envelope.
func (c *Client) Ask(ctx context.Context, query string) (*agentModel.RawResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Reason: EmptyQueryReason}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(agentModel.Request{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encode agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+queryPath, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		tErr := &TransportError{Err: err, Timeout: isTimeout(err)}
		c.logger.Warn("agent request failed", zap.Error(err), zap.Bool("timeout", tErr.Timeout), zap.Duration("elapsed", time.Since(started)))
		return nil, tErr
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err, Timeout: isTimeout(err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tErr := &TransportError{StatusCode: resp.StatusCode, ServerMessage: extractMessage(payload)}
		c.logger.Warn("agent returned error status", zap.Int("status", resp.StatusCode), zap.String("message", tErr.ServerMessage))
		return nil, tErr
	}

	var out agentModel.RawResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		c.logger.Warn("agent returned malformed body", zap.Error(err), zap.Int("bytes", len(payload)))
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode agent response: %w", err)}
	}

	c.logger.Debug("agent answered",
		zap.Bool("success", out.Output.Success),
		zap.String("type", out.Output.Type),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &out, nil
}

func extractMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/app"
	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	"github.com/L4Y3R/ai-agent-work-sample/internal/logging"
	chatModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
	"github.com/L4Y3R/ai-agent-work-sample/internal/service/chat"
	"github.com/L4Y3R/ai-agent-work-sample/internal/tui"
)

// errAnswerFailed signals that the agent's reply was an error message.
var errAnswerFailed = errors.New("agent returned an error")

type options struct {
	logFile string
	timeout time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errAnswerFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "chat",
		Short: "Ask the data agent questions from the terminal",
		Long: `chat talks to the data agent configured by AGENT_BASE_URL, or to the Ark
chat model when no agent is set.

Run without arguments to start the interactive chat interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, logger, cleanup, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer cleanup()

			p := tea.NewProgram(tui.New(session, logger), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("chat ui: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logFile, "log-file", filepath.Join(os.TempDir(), "agent-chat.log"), "where to write logs")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "agent request timeout (overrides AGENT_TIMEOUT)")

	ask := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask one question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, cleanup, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer cleanup()
			return runAsk(cmd.Context(), session, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}
	root.AddCommand(ask)

	return root
}

func setup(ctx context.Context, opts *options) (*chat.Session, *zap.Logger, func(), error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.timeout > 0 {
		cfg.Agent.Timeout = opts.timeout
	}

	logger, err := logging.ToFile(cfg.Log.Level, opts.logFile)
	if err != nil {
		return nil, nil, nil, err
	}
	zap.ReplaceGlobals(logger)

	asker, _, err := app.NewAsker(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}

	session := chat.NewSession(chatModel.NewID(), asker, cfg.Chat.StalePolicy, logger)
	cleanup := func() {
		session.Close()
		waitCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := session.Wait(waitCtx); err != nil {
			logger.Warn("question still in flight at exit", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return session, logger, cleanup, nil
}

// runAsk submits one question, prints the answer and reports
// errAnswerFailed when the answer is an error message.
func runAsk(ctx context.Context, session *chat.Session, question string, out io.Writer) error {
	turn, err := session.Submit(ctx, question)
	if err != nil {
		return err
	}

	var answer chatModel.Message
	select {
	case msg, ok := <-turn.Answer:
		if !ok {
			return errAnswerFailed
		}
		answer = msg
	case <-ctx.Done():
		return ctx.Err()
	}

	fmt.Fprintln(out, tui.RenderMessage(tui.Styles{}, answer, 100))
	if answer.IsError {
		return errAnswerFailed
	}
	return nil
}

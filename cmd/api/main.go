package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/app"
	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	"github.com/L4Y3R/ai-agent-work-sample/internal/handler"
	"github.com/L4Y3R/ai-agent-work-sample/internal/logging"
	"github.com/L4Y3R/ai-agent-work-sample/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, using process environment", zap.Error(envErr))
	}

	asker, mode, err := app.NewAsker(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize agent", zap.Error(err))
	}

	chatService, err := chat.NewService(asker, cfg.Chat, logger)
	if err != nil {
		logger.Fatal("failed to initialize chat service", zap.Error(err))
	}

	router := handler.NewRouter(chatService, mode, logger)

	startServer(ctx, cfg.Server, router, chatService, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, chatService *chat.Service, logger *zap.Logger) {
	srv := newServer(serverCfg, router, chatService)

	logger.Info("agent chat gateway listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := chatService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("questions still in flight at shutdown", zap.Error(err))
	}
}

// newServer builds the HTTP server. Shutdown closes every session first,
// which ends open SSE streams and hijacked WebSocket connections.
func newServer(serverCfg config.ServerConfig, router http.Handler, chatService *chat.Service) *http.Server {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv.RegisterOnShutdown(chatService.CloseAll)
	return srv
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr := srv.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		if shutdownErr != nil {
			return fmt.Errorf("graceful shutdown: %w", shutdownErr)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
	chatService "github.com/L4Y3R/ai-agent-work-sample/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

type inboundMessage struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
}

type errorMessage struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := h.logger.With(zap.String("session", sessionID))
	logger.Debug("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, stop := session.Subscribe()
	defer stop()

	// gorilla connections allow one concurrent writer, so every write goes
	// through writeLoop.
	outbound := make(chan any, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, events, outbound, logger)
		cancel()
		// Unblocks ReadJSON when the writer stops first.
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if reply := h.handleInbound(ctx, session, msg); reply != nil {
			select {
			case outbound <- reply:
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	cancel()
	<-writerDone
}

// handleInbound applies a client command and returns an error message for
// the client, if any.
func (h *Handler) handleInbound(ctx context.Context, session *chatService.Session, msg inboundMessage) any {
	switch msg.Type {
	case "submit":
		if _, err := session.Submit(ctx, msg.Query); err != nil {
			return errorMessage{Event: "error", Error: submitErrorText(err)}
		}
	case "clear":
		session.Clear()
	default:
		return errorMessage{Event: "error", Error: "unsupported message type: " + msg.Type}
	}
	return nil
}

func submitErrorText(err error) string {
	switch {
	case errors.Is(err, chatService.ErrEmptyQuery):
		return "query is empty"
	case errors.Is(err, chatService.ErrBusy):
		return "still answering the previous question"
	case errors.Is(err, chatService.ErrSessionClosed):
		return "session closed"
	default:
		return err.Error()
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan chat.Event, outbound <-chan any, logger *zap.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	write := func(v any) bool {
		payload, err := json.Marshal(v)
		if err != nil {
			logger.Warn("failed to encode websocket message", zap.Error(err))
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Debug("websocket write failed", zap.Error(err))
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case event, open := <-events:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(writeTimeout))
				return
			}
			if !write(event) {
				return
			}
		case msg := <-outbound:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

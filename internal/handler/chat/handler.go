package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
	chatService "github.com/L4Y3R/ai-agent-work-sample/internal/service/chat"
	"github.com/L4Y3R/ai-agent-work-sample/pkg/utils"
)

// Handler serves the session REST API.
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
	respond utils.Responder
}

// New creates the chat handler.
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("chat-handler")
	return &Handler{
		chatSvc: chatSvc,
		logger:  logger,
		respond: utils.NewResponder(logger),
	}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleDeleteSession)
		r.Post("/query", h.handleQuery)
		r.Delete("/messages", h.handleClear)
	})
}

type queryRequest struct {
	Query string `json:"query"`
	// Wait holds the response until the answer is in.
	Wait bool `json:"wait"`
}

type queryResponse struct {
	Question chat.Message  `json:"question"`
	Answer   *chat.Message `json:"answer,omitempty"`
	Dropped  bool          `json:"dropped,omitempty"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		h.respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respond.JSON(w, http.StatusCreated, snapshot)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respond.JSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var payload queryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	turn, err := h.chatSvc.Submit(r.Context(), sessionID, payload.Query)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if !payload.Wait {
		h.respond.JSON(w, http.StatusAccepted, queryResponse{Question: turn.Question})
		return
	}

	select {
	case answer, ok := <-turn.Answer:
		resp := queryResponse{Question: turn.Question}
		if ok {
			resp.Answer = &answer
		} else {
			resp.Dropped = true
		}
		h.respond.JSON(w, http.StatusOK, resp)
	case <-r.Context().Done():
		h.logger.Debug("client left before the answer arrived", zap.String("session", sessionID))
	}
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.Clear(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound), errors.Is(err, chatService.ErrSessionClosed):
		h.respond.Error(w, http.StatusNotFound, chatService.ErrSessionNotFound.Error())
	case errors.Is(err, chatService.ErrEmptyQuery):
		h.respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrBusy):
		h.respond.Error(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("unexpected service error", zap.Error(err))
		h.respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

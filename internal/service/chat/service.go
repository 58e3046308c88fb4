package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
	"github.com/L4Y3R/ai-agent-work-sample/internal/service/agent"
)

var ErrSessionNotFound = errors.New("session not found")

// Service keeps one Session per browser tab. Sessions live in memory only;
// when the bound is reached the least recently used one is closed.
type Service struct {
	asker    agent.Asker
	policy   config.StalePolicy
	logger   *zap.Logger
	sessions *lru.Cache[string, *Session]

	mu      sync.Mutex
	closing []*Session
}

// NewService bootstraps the in-memory session registry.
func NewService(asker agent.Asker, cfg config.ChatConfig, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.MaxSessions
	if size < 1 {
		size = config.DefaultMaxSessions
	}

	s := &Service{
		asker:  asker,
		policy: cfg.StalePolicy,
		logger: logger.Named("chat"),
	}

	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, session *Session) {
		session.Close()
		s.logger.Debug("session closed", zap.String("session", id))
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	s.sessions = cache
	return s, nil
}

// CreateSession provisions an empty session.
func (s *Service) CreateSession(_ context.Context) (chat.Snapshot, error) {
	session := NewSession(uuid.NewString(), s.asker, s.policy, s.logger)
	if evicted := s.sessions.Add(session.ID(), session); evicted {
		s.logger.Info("session limit reached, evicted least recently used session")
	}
	return session.Snapshot(), nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Submit forwards a question to the named session.
func (s *Service) Submit(ctx context.Context, sessionID, query string) (Turn, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return Turn{}, err
	}
	return session.Submit(ctx, query)
}

// Clear empties the named session's log.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Clear()
	return nil
}

// LoadTranscript returns the stored messages of a session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Snapshot().Messages, nil
}

// DeleteSession closes and forgets a session.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	if !s.sessions.Remove(sessionID) {
		return ErrSessionNotFound
	}
	return nil
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	return s.sessions.Len()
}

// CloseAll closes and forgets every session. Their event streams end, and
// questions in flight still settle.
func (s *Service) CloseAll() {
	sessions := s.sessions.Values()
	s.sessions.Purge()

	s.mu.Lock()
	s.closing = append(s.closing, sessions...)
	s.mu.Unlock()
}

// Shutdown closes every session and waits for requests in flight.
func (s *Service) Shutdown(ctx context.Context) error {
	s.CloseAll()

	s.mu.Lock()
	sessions := s.closing
	s.closing = nil
	s.mu.Unlock()

	var eg errgroup.Group
	for _, session := range sessions {
		eg.Go(func() error {
			if err := session.Wait(ctx); err != nil {
				return fmt.Errorf("waiting for session %s: %w", session.ID(), err)
			}
			return nil
		})
	}
	return eg.Wait()
}

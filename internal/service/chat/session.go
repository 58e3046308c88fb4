package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/config"
	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
	"github.com/L4Y3R/ai-agent-work-sample/internal/service/agent"
)

var (
	ErrEmptyQuery    = errors.New("query is empty")
	ErrBusy          = errors.New("a question is already being answered")
	ErrSessionClosed = errors.New("session closed")
)

const subscriberBuffer = 32

// Session is one conversation: an ordered log and at most one question in
// flight. All methods are safe for concurrent use.
type Session struct {
	id        string
	createdAt time.Time
	asker     agent.Asker
	policy    config.StalePolicy
	logger    *zap.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]chan chat.Event
	nextSub int
	closed  bool

	// inflight counts background requests; idle is closed when it drops
	// back to zero.
	inflight int
	idle     chan struct{}
}

// NewSession creates an empty session that sends questions to asker.
func NewSession(id string, asker agent.Asker, policy config.StalePolicy, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = config.StaleAppend
	}
	return &Session{
		id:        id,
		createdAt: time.Now().UTC(),
		asker:     asker,
		policy:    policy,
		logger:    logger.With(zap.String("session", id)),
		subs:      make(map[int]chan chat.Event),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Turn is one accepted question. Answer yields the assistant message once the
// request settles and is then closed; it is closed without a value when the
// reply is dropped as stale.
type Turn struct {
	Question chat.Message
	Answer   <-chan chat.Message
}

// Submit appends the user's message and asks the agent in the background.
// Blank queries and submits while pending change nothing and return
// ErrEmptyQuery or ErrBusy.
//
// The request is detached from ctx cancellation; only the agent timeout
// bounds it.
func (s *Session) Submit(ctx context.Context, query string) (Turn, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Turn{}, ErrEmptyQuery
	}

	user := chat.NewUserMessage(query)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Turn{}, ErrSessionClosed
	}
	next, ok := s.state.Submit(user)
	if !ok {
		s.mu.Unlock()
		return Turn{}, ErrBusy
	}
	s.state = next
	epoch := next.Epoch
	s.publishLocked(chat.Event{Type: chat.EventMessage, Message: &user, Pending: true})
	s.publishLocked(chat.Event{Type: chat.EventPending, Pending: true})
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
	s.mu.Unlock()

	done := make(chan chat.Message, 1)
	go s.ask(context.WithoutCancel(ctx), query, epoch, done)
	return Turn{Question: user, Answer: done}, nil
}

func (s *Session) ask(ctx context.Context, query string, epoch uint64, done chan<- chat.Message) {
	defer s.finishRequest()
	defer close(done)

	started := time.Now()
	raw, err := s.asker.Ask(ctx, query)
	reply := Normalize(raw, err)
	if err != nil {
		s.logger.Warn("question failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
	}

	s.mu.Lock()
	next, appended := s.state.Settle(reply, epoch, s.policy)
	s.state = next
	if appended {
		s.publishLocked(chat.Event{Type: chat.EventMessage, Message: &reply})
	} else {
		s.logger.Info("dropped reply that arrived after clear", zap.String("message", reply.ID))
	}
	s.publishLocked(chat.Event{Type: chat.EventPending, Pending: false})
	s.mu.Unlock()

	s.logger.Debug("question settled",
		zap.String("kind", string(reply.Kind)),
		zap.Bool("isError", reply.IsError),
		zap.Duration("elapsed", time.Since(started)),
	)

	if appended {
		done <- reply
	}
}

// Clear empties the log. It is allowed while pending and does not cancel the
// request in flight.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.Clear()
	s.publishLocked(chat.Event{Type: chat.EventCleared, Pending: s.state.Pending})
}

// Pending reports whether a question is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pending
}

// Snapshot copies the current state.
func (s *Session) Snapshot() chat.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() chat.Snapshot {
	messages := make([]chat.Message, len(s.state.Messages))
	copy(messages, s.state.Messages)
	return chat.Snapshot{
		SessionID: s.id,
		Messages:  messages,
		Pending:   s.state.Pending,
		CreatedAt: s.createdAt,
	}
}

// Subscribe streams session events, starting with a snapshot. Call the
// returned function to stop; the channel is closed afterwards or when the
// session closes. A subscriber that falls behind gets a fresh snapshot in
// place of its backlog.
func (s *Session) Subscribe() (<-chan chat.Event, func()) {
	ch := make(chan chat.Event, subscriberBuffer)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	snapshot := s.snapshotLocked()
	ch <- chat.Event{Type: chat.EventSnapshot, SessionID: s.id, Snapshot: &snapshot, Pending: snapshot.Pending}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

func (s *Session) publishLocked(event chat.Event) {
	event.SessionID = s.id
	for id, ch := range s.subs {
		select {
		case ch <- event:
		default:
			s.resyncLocked(id, ch)
		}
	}
}

// resyncLocked replaces the backlog of a subscriber that fell behind with a
// single snapshot of the current state, which already includes the event
// being published.
func (s *Session) resyncLocked(id int, ch chan chat.Event) {
	dropped := 0
drain:
	for {
		select {
		case <-ch:
			dropped++
		default:
			break drain
		}
	}

	snapshot := s.snapshotLocked()
	ch <- chat.Event{Type: chat.EventSnapshot, SessionID: s.id, Snapshot: &snapshot, Pending: snapshot.Pending}
	s.logger.Warn("subscriber fell behind, resent snapshot", zap.Int("subscriber", id), zap.Int("dropped", dropped))
}

// Close detaches every subscriber and rejects further submits. A request in
// flight still settles.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) finishRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
		s.idle = nil
	}
}

// Wait blocks until no request is in flight or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	if idle == nil {
		return nil
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

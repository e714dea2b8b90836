// Package engine holds one context's in-memory copy of the conversation
// aggregate and keeps it synchronized with the shared store. Local sends
// apply synchronously (a SendMessage caller sees its own message on the next
// read); writes from other contexts arrive through the store subscription and
// replace the local state wholesale. There is no merge: concurrent writers
// race at the granularity of the entire aggregate and the last write wins.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthcrm/inbox-server-go/internal/chat"
	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/model"
	"github.com/healthcrm/inbox-server-go/internal/store"
)

// Change notifies in-process observers (inbox views, the SSE broker) that
// the engine state moved. External changes carry the writer's origin tag.
type Change struct {
	External bool
	Origin   string
}

const changeBuffer = 16

type Engine struct {
	store     store.Store
	agentName string

	mu             sync.RWMutex
	state          *model.Aggregate
	lastLocalWrite time.Time
	lastExternal   time.Time

	subMu sync.Mutex
	subs  map[<-chan Change]chan Change

	updates   <-chan store.Update
	closeOnce sync.Once
	done      chan struct{}
}

// New loads the current aggregate and starts the sync loop on the store's
// change subscription.
func New(ctx context.Context, s store.Store, agentName string) (*Engine, error) {
	state, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:     s,
		agentName: agentName,
		state:     state.Clone(),
		subs:      make(map[<-chan Change]chan Change),
		updates:   s.Subscribe(),
		done:      make(chan struct{}),
	}
	go e.syncLoop()
	return e, nil
}

// Conversations returns the conversation list in store order.
func (e *Engine) Conversations() []model.Conversation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Conversation, len(e.state.Conversations))
	copy(out, e.state.Conversations)
	return out
}

// Messages returns a conversation's log, oldest first. Unknown ids yield an
// empty slice, not an error.
func (e *Engine) Messages(conversationID int) []model.Message {
	e.mu.RLock()
	defer e.mu.RUnlock()
	msgs := e.state.Messages[conversationID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// TotalUnread sums unread counts across all conversations (the sidebar
// badge contract).
func (e *Engine) TotalUnread() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.TotalUnread()
}

// Snapshot returns a deep copy of the whole aggregate.
func (e *Engine) Snapshot() *model.Aggregate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// SendMessage appends a message to a conversation's log, mirrors it onto the
// conversation and persists the whole aggregate before returning. The local
// state reflects the message immediately; other contexts learn about it
// through the store's change notification.
func (e *Engine) SendMessage(ctx context.Context, conversationID int, draft model.Draft) (model.Message, error) {
	if !draft.Sender.Valid() {
		return model.Message{}, apperrors.InvalidInput("sender", string(draft.Sender))
	}
	if draft.Kind != "" && !draft.Kind.Valid() {
		return model.Message{}, apperrors.InvalidInput("kind", string(draft.Kind))
	}
	if draft.Text == "" && draft.Attachment == nil {
		return model.Message{}, apperrors.MissingRequired("text")
	}
	if draft.Sender == model.SenderAgent && draft.AgentName == "" {
		draft.AgentName = e.agentName
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	conv := e.state.Conversation(conversationID)
	if conv == nil {
		return model.Message{}, apperrors.NotFound("Conversation")
	}

	// Append does not mutate its inputs, so the prior log and conversation
	// survive for the rollback below.
	prevLog, prevConv := e.state.Messages[conversationID], *conv

	msgs, updated, msg := chat.Append(prevLog, prevConv, draft, time.Now())
	e.state.Messages[conversationID] = msgs
	*conv = updated

	if err := e.store.Save(ctx, e.state); err != nil {
		e.state.Messages[conversationID] = prevLog
		*conv = prevConv
		return model.Message{}, err
	}
	e.lastLocalWrite = time.Now()

	log.Info().
		Int("conversationId", conversationID).
		Int("messageId", msg.ID).
		Str("sender", string(msg.Sender)).
		Msg("message sent")

	e.notify(Change{})
	return msg, nil
}

// MarkAllRead zeroes every conversation's unread count and persists. This is
// the notification-panel trigger; selecting a conversation in the inbox does
// not clear counts.
func (e *Engine) MarkAllRead(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	prevCounts := make([]int, len(e.state.Conversations))
	for i := range e.state.Conversations {
		prevCounts[i] = e.state.Conversations[i].UnreadCount
		if e.state.Conversations[i].UnreadCount != 0 {
			e.state.Conversations[i].UnreadCount = 0
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := e.store.Save(ctx, e.state); err != nil {
		for i := range e.state.Conversations {
			e.state.Conversations[i].UnreadCount = prevCounts[i]
		}
		return err
	}
	e.lastLocalWrite = time.Now()

	e.notify(Change{})
	return nil
}

func (e *Engine) syncLoop() {
	for {
		select {
		case <-e.done:
			return
		case u, ok := <-e.updates:
			if !ok {
				return
			}
			e.apply(u)
		}
	}
}

// apply replaces the local state with an external writer's aggregate. Local
// writes made after that writer read its copy are discarded; the log line is
// the only trace.
func (e *Engine) apply(u store.Update) {
	e.mu.Lock()
	if e.lastLocalWrite.After(e.lastExternal) {
		log.Warn().
			Str("origin", u.Origin).
			Time("lastLocalWrite", e.lastLocalWrite).
			Msg("external update replaces state written locally since last sync; concurrent local writes may be lost")
	}
	e.state = u.State.Clone()
	e.lastExternal = time.Now()
	e.mu.Unlock()

	log.Debug().Str("origin", u.Origin).Msg("applied external state update")
	e.notify(Change{External: true, Origin: u.Origin})
}

// Subscribe registers an in-process observer of engine state changes.
func (e *Engine) Subscribe() <-chan Change {
	ch := make(chan Change, changeBuffer)
	e.subMu.Lock()
	e.subs[ch] = ch
	e.subMu.Unlock()
	return ch
}

func (e *Engine) Unsubscribe(ch <-chan Change) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	if send, ok := e.subs[ch]; ok {
		delete(e.subs, ch)
		close(send)
	}
}

func (e *Engine) notify(c Change) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, send := range e.subs {
		select {
		case send <- c:
		default:
		}
	}
}

// Close tears down the store subscription. Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.store.Unsubscribe(e.updates)

		e.subMu.Lock()
		for _, send := range e.subs {
			close(send)
		}
		e.subs = make(map[<-chan Change]chan Change)
		e.subMu.Unlock()
	})
}

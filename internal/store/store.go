// Package store persists the whole conversation aggregate as a single blob
// shared by every context (dashboard engines, widget clients, other
// processes). A write from one context raises a change notification in every
// other context but never in the writer's own: each store context carries an
// origin tag, stamps it on every write, and its subscription loop drops
// notifications carrying its own tag.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/model"
)

// DefaultKey is the storage key the dashboard and the widget share.
const DefaultKey = "healthcrm_chats"

// Update is an external change to the shared blob, delivered to subscribers
// of every context other than the one identified by Origin.
type Update struct {
	Origin string
	State  *model.Aggregate
}

type Store interface {
	// Load returns the current aggregate. An empty backend is seeded with the
	// built-in defaults and persisted immediately; a corrupt blob falls back
	// to the defaults; a missing reserved web-chat conversation is
	// synthesized. Load never fails for those cases.
	Load(ctx context.Context) (*model.Aggregate, error)

	// LoadRaw returns the aggregate exactly as persisted: an empty backend
	// yields an empty aggregate and a corrupt blob yields an error. No
	// seeding, no synthesis. This is the widget's read path.
	LoadRaw(ctx context.Context) (*model.Aggregate, error)

	// Save overwrites the persisted blob in full and notifies every other
	// context. The writer's own subscribers are not notified.
	Save(ctx context.Context, state *model.Aggregate) error

	// Subscribe registers a channel receiving external updates. Unsubscribe
	// is idempotent.
	Subscribe() <-chan Update
	Unsubscribe(ch <-chan Update)

	// Origin returns this context's tag.
	Origin() string

	Close() error
}

// envelope is the wire shape of a change notification.
type envelope struct {
	Origin string           `json:"origin"`
	State  *model.Aggregate `json:"state"`
}

const subscriberBuffer = 16

// notifier implements the subscriber set shared by all backends.
type notifier struct {
	mu   sync.Mutex
	subs map[<-chan Update]chan Update
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[<-chan Update]chan Update)}
}

func (n *notifier) Subscribe() <-chan Update {
	ch := make(chan Update, subscriberBuffer)
	n.mu.Lock()
	n.subs[ch] = ch
	n.mu.Unlock()
	return ch
}

func (n *notifier) Unsubscribe(ch <-chan Update) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if send, ok := n.subs[ch]; ok {
		delete(n.subs, ch)
		close(send)
	}
}

func (n *notifier) emit(u Update) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, send := range n.subs {
		select {
		case send <- u:
		default:
			log.Warn().Str("origin", u.Origin).Msg("subscriber buffer full, dropping update")
		}
	}
}

func (n *notifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, send := range n.subs {
		close(send)
	}
	n.subs = make(map[<-chan Update]chan Update)
}

// decodeOrSeed parses a persisted blob for the dashboard's Load path. A
// malformed blob is logged and replaced by the seeded defaults; a missing
// reserved web-chat conversation is synthesized from its template. Callers
// never see the parse error.
func decodeOrSeed(data []byte) *model.Aggregate {
	var state model.Aggregate
	if err := json.Unmarshal(data, &state); err != nil {
		log.Error().Err(err).Msg("stored conversation state is corrupt, falling back to seed")
		return model.Seed()
	}
	sanitize(&state)
	if state.Conversation(model.WebChatConversationID) == nil {
		state.Conversations = append(state.Conversations, model.WebChatTemplate())
		state.Messages[model.WebChatConversationID] = model.WebChatSeedLog()
	}
	return &state
}

// decodeStrict parses a persisted blob for LoadRaw. Corruption is surfaced to
// the caller instead of being papered over.
func decodeStrict(data []byte) (*model.Aggregate, error) {
	var state model.Aggregate
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, apperrors.StorageCorrupt(err)
	}
	sanitize(&state)
	return &state, nil
}

// decodeNotification parses a blob arriving on the change channel. External
// updates replace subscriber state wholesale, so the blob is delivered as
// persisted: sanitized but with nothing synthesized. A blob that does not
// parse is dropped.
func decodeNotification(data []byte) (*model.Aggregate, bool) {
	var state model.Aggregate
	if err := json.Unmarshal(data, &state); err != nil {
		log.Warn().Err(err).Msg("ignoring malformed change notification")
		return nil, false
	}
	sanitize(&state)
	return &state, true
}

// sanitize restores the structural invariant that every conversation has a
// log entry in the message map.
func sanitize(state *model.Aggregate) {
	if state.Messages == nil {
		state.Messages = make(map[int][]model.Message)
	}
	for i := range state.Conversations {
		id := state.Conversations[i].ID
		if _, ok := state.Messages[id]; !ok {
			state.Messages[id] = []model.Message{}
		}
	}
}

func emptyAggregate() *model.Aggregate {
	return &model.Aggregate{
		Conversations: []model.Conversation{},
		Messages:      make(map[int][]model.Message),
	}
}

func encode(state *model.Aggregate) ([]byte, error) {
	return json.Marshal(state)
}

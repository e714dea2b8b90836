package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/model"
)

// MemoryBus is a process-local stand-in for the shared storage partition.
// Several store contexts can be opened on one bus to model independent
// writers (the dashboard, a second dashboard instance, a widget page)
// sharing the same blob. It backs the "memory" storage mode and the tests.
type MemoryBus struct {
	mu       sync.Mutex
	blob     []byte
	contexts map[*Memory]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{contexts: make(map[*Memory]struct{})}
}

// Context opens a new store context on this bus with its own origin tag.
func (b *MemoryBus) Context() *Memory {
	m := &Memory{
		bus:      b,
		origin:   uuid.NewString(),
		notifier: newNotifier(),
	}
	b.mu.Lock()
	b.contexts[m] = struct{}{}
	b.mu.Unlock()
	return m
}

func (b *MemoryBus) write(origin string, data []byte) {
	b.mu.Lock()
	b.blob = data
	contexts := make([]*Memory, 0, len(b.contexts))
	for m := range b.contexts {
		contexts = append(contexts, m)
	}
	b.mu.Unlock()

	state, ok := decodeNotification(data)
	if !ok {
		return
	}
	for _, m := range contexts {
		if m.origin == origin {
			continue
		}
		m.notifier.emit(Update{Origin: origin, State: state.Clone()})
	}
}

func (b *MemoryBus) read() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blob == nil {
		return nil, false
	}
	data := make([]byte, len(b.blob))
	copy(data, b.blob)
	return data, true
}

func (b *MemoryBus) drop(m *Memory) {
	b.mu.Lock()
	delete(b.contexts, m)
	b.mu.Unlock()
}

// Memory is one context's view of a MemoryBus.
type Memory struct {
	bus    *MemoryBus
	origin string
	*notifier
}

var _ Store = (*Memory)(nil)

func (m *Memory) Load(ctx context.Context) (*model.Aggregate, error) {
	data, ok := m.bus.read()
	if !ok {
		seed := model.Seed()
		if err := m.Save(ctx, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	return decodeOrSeed(data), nil
}

func (m *Memory) LoadRaw(ctx context.Context) (*model.Aggregate, error) {
	data, ok := m.bus.read()
	if !ok {
		return emptyAggregate(), nil
	}
	return decodeStrict(data)
}

func (m *Memory) Save(ctx context.Context, state *model.Aggregate) error {
	data, err := encode(state)
	if err != nil {
		return apperrors.Storage(err)
	}
	m.bus.write(m.origin, data)
	return nil
}

func (m *Memory) Origin() string {
	return m.origin
}

func (m *Memory) Close() error {
	m.bus.drop(m)
	m.notifier.closeAll()
	return nil
}

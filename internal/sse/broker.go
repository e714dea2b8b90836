package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthcrm/inbox-server-go/internal/engine"
)

const (
	HeartbeatInterval = 30 * time.Second

	clientBuffer = 100
)

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Client struct {
	Events chan Event
	Done   chan struct{}
}

// Broker fans engine state changes out to connected dashboard clients. Each
// change becomes one "state" event carrying the conversation list and the
// aggregated unread count; clients fetch message logs for the thread they
// are viewing.
type Broker struct {
	engine  *engine.Engine
	changes <-chan engine.Change

	clients map[*Client]bool
	mu      sync.RWMutex

	closeOnce sync.Once
	done      chan struct{}
}

func NewBroker(eng *engine.Engine) *Broker {
	b := &Broker{
		engine:  eng,
		changes: eng.Subscribe(),
		clients: make(map[*Client]bool),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) Subscribe() *Client {
	client := &Client{
		Events: make(chan Event, clientBuffer),
		Done:   make(chan struct{}),
	}

	b.mu.Lock()
	b.clients[client] = true
	count := len(b.clients)
	b.mu.Unlock()

	log.Info().Int("clientCount", count).Msg("sse client subscribed")
	return client
}

func (b *Broker) Unsubscribe(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.clients[client] {
		delete(b.clients, client)
		close(client.Done)
		log.Info().Int("clientCount", len(b.clients)).Msg("sse client unsubscribed")
	}
}

// StateEvent builds the event describing the engine's current state.
func (b *Broker) StateEvent() Event {
	data, _ := json.Marshal(map[string]any{
		"conversations": b.engine.Conversations(),
		"totalUnread":   b.engine.TotalUnread(),
	})
	return Event{Type: "state", Data: data}
}

func (b *Broker) run() {
	for {
		select {
		case <-b.done:
			return
		case _, ok := <-b.changes:
			if !ok {
				return
			}
			b.broadcast(b.StateEvent())
		}
	}
}

func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for client := range b.clients {
		select {
		case client.Events <- event:
		default:
			log.Warn().Msg("client event buffer full, dropping event")
		}
	}
}

func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broker) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		b.engine.Unsubscribe(b.changes)

		b.mu.Lock()
		defer b.mu.Unlock()
		for client := range b.clients {
			close(client.Done)
		}
		b.clients = make(map[*Client]bool)
	})
}

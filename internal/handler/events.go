package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthcrm/inbox-server-go/internal/httputil"
	"github.com/healthcrm/inbox-server-go/internal/sse"
)

type EventsHandler struct {
	broker *sse.Broker
}

func NewEventsHandler(broker *sse.Broker) *EventsHandler {
	return &EventsHandler{broker: broker}
}

// ServeHTTP streams engine state changes to a dashboard client. The first
// event carries the current state so a freshly connected client renders
// without waiting for a change.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := h.broker.Subscribe()
	defer h.broker.Unsubscribe(client)

	log.Info().Msg("sse connection established")

	if err := h.sendEvent(w, flusher, h.broker.StateEvent()); err != nil {
		log.Error().Err(err).Msg("failed to send initial state event")
		return
	}

	ctx := r.Context()
	heartbeat := time.NewTicker(sse.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sse connection closed by client")
			return

		case <-client.Done:
			log.Info().Msg("sse connection closed by broker")
			return

		case event := <-client.Events:
			if err := h.sendEvent(w, flusher, event); err != nil {
				log.Error().Err(err).Msg("failed to send event")
				return
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				log.Debug().Msg("heartbeat failed, closing connection")
				return
			}
			flusher.Flush()
		}
	}
}

func (h *EventsHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event sse.Event) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event.Type); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", event.Data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

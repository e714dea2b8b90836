package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/healthcrm/inbox-server-go/internal/widget"
)

type WidgetHandler struct {
	client *widget.Client
}

func NewWidgetHandler(client *widget.Client) *WidgetHandler {
	return &WidgetHandler{client: client}
}

// Snippet serves the copy-pasteable embed code.
func (h *WidgetHandler) Snippet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(widget.Snippet))
}

type widgetMessageRequest struct {
	Text string `json:"text"`
}

// Message accepts a visitor message from the embedded widget. The widget
// contract is that nothing ever surfaces to the host page: failures are
// logged here and the response is 204 regardless.
func (h *WidgetHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req widgetMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("widget: malformed message request")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.client.Send(r.Context(), req.Text); err != nil {
		log.Error().Err(err).Msg("widget: message dropped")
	}
	w.WriteHeader(http.StatusNoContent)
}

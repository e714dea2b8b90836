package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/healthcrm/inbox-server-go/internal/engine"
	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/httputil"
	"github.com/healthcrm/inbox-server-go/internal/model"
)

type ConversationsHandler struct {
	engine *engine.Engine
}

func NewConversationsHandler(eng *engine.Engine) *ConversationsHandler {
	return &ConversationsHandler{engine: eng}
}

// List returns the conversation list in store order plus the aggregated
// unread count for the sidebar badge.
func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"conversations": h.engine.Conversations(),
		"totalUnread":   h.engine.TotalUnread(),
	})
}

// Messages returns one conversation's log, oldest first.
func (h *ConversationsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"messages": h.engine.Messages(id),
	})
}

type sendMessageRequest struct {
	Sender     model.Sender      `json:"sender"`
	Text       string            `json:"text"`
	Kind       model.MessageKind `json:"kind,omitempty"`
	Attachment *model.Attachment `json:"attachment,omitempty"`
}

// Send appends a message to a conversation. The dashboard sends as the
// agent; a missing sender defaults to that.
func (h *ConversationsHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Sender == "" {
		req.Sender = model.SenderAgent
	}

	msg, err := h.engine.SendMessage(r.Context(), id, model.Draft{
		Sender:     req.Sender,
		Text:       req.Text,
		Kind:       req.Kind,
		Attachment: req.Attachment,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, msg)
}

// MarkAllRead is the notification-panel trigger: it zeroes every unread
// count.
func (h *ConversationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.MarkAllRead(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func conversationID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput("conversation id", raw)
	}
	return id, nil
}

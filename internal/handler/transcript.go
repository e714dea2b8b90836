package handler

import (
	"fmt"
	"net/http"

	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/export"
	"github.com/healthcrm/inbox-server-go/internal/httputil"
	"github.com/rs/zerolog/log"
)

// Transcript streams one conversation's log as a CSV download.
func (h *ConversationsHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snapshot := h.engine.Snapshot()
	conv := snapshot.Conversation(id)
	if conv == nil {
		httputil.WriteError(w, apperrors.NotFound("Conversation"))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(*conv)))

	if err := export.WriteTranscript(w, *conv, snapshot.Messages[id]); err != nil {
		log.Error().Err(err).Int("conversationId", id).Msg("failed to write transcript")
	}
}

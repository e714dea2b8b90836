// Package chat holds the append algorithm shared by the dashboard engine and
// the web-chat widget client. Both sides must stamp ids, timestamps and the
// denormalized conversation fields identically, so the logic lives here once.
package chat

import (
	"time"

	"github.com/healthcrm/inbox-server-go/internal/model"
)

const clockFormat = "3:04 PM"

// FormatClock renders the display timestamp shown next to a message.
func FormatClock(t time.Time) string {
	return t.Format(clockFormat)
}

// NextID returns the id for the next message in a log: max(existing)+1, or 1
// for an empty log. Ids are unique per log only, never globally.
func NextID(log []model.Message) int {
	maxID := 0
	for i := range log {
		if log[i].ID > maxID {
			maxID = log[i].ID
		}
	}
	return maxID + 1
}

// Append builds the next message from draft, appends it to log and mirrors it
// onto conv: lastMessage and both timestamps follow the new log tail, and the
// unread count grows by one only for customer-sent messages. The inputs are
// not mutated; the updated log and conversation are returned along with the
// stamped message.
func Append(log []model.Message, conv model.Conversation, draft model.Draft, now time.Time) ([]model.Message, model.Conversation, model.Message) {
	kind := draft.Kind
	if kind == "" {
		kind = model.KindPlain
	}

	msg := model.Message{
		ID:         NextID(log),
		Sender:     draft.Sender,
		Text:       draft.Text,
		Timestamp:  FormatClock(now),
		SentAt:     now,
		Kind:       kind,
		Attachment: draft.Attachment,
	}
	if draft.Sender == model.SenderAgent {
		msg.AgentName = draft.AgentName
	}

	updated := make([]model.Message, len(log), len(log)+1)
	copy(updated, log)
	updated = append(updated, msg)

	conv.LastMessage = msg.Text
	conv.Timestamp = msg.Timestamp
	conv.SentAt = msg.SentAt
	if msg.Sender == model.SenderUser {
		conv.UnreadCount++
	}

	return updated, conv, msg
}

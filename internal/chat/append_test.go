package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthcrm/inbox-server-go/internal/model"
)

func TestNextID(t *testing.T) {
	t.Run("empty log starts at 1", func(t *testing.T) {
		assert.Equal(t, 1, NextID(nil))
		assert.Equal(t, 1, NextID([]model.Message{}))
	})

	t.Run("uses max plus one, not length", func(t *testing.T) {
		log := []model.Message{{ID: 3}, {ID: 7}, {ID: 5}}
		assert.Equal(t, 8, NextID(log))
	})
}

func TestAppend(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 42, 0, 0, time.UTC)
	conv := model.Conversation{ID: 2, CustomerName: "Bob Williams", UnreadCount: 2}

	t.Run("ids stay monotonic over many appends", func(t *testing.T) {
		var log []model.Message
		c := conv
		for i := 1; i <= 5; i++ {
			var msg model.Message
			log, c, msg = Append(log, c, model.Draft{Sender: model.SenderUser, Text: fmt.Sprintf("m%d", i)}, now)
			assert.Equal(t, i, msg.ID)
		}
		for i, msg := range log {
			assert.Equal(t, i+1, msg.ID)
		}
	})

	t.Run("user message increments unread by exactly one", func(t *testing.T) {
		_, updated, _ := Append(nil, conv, model.Draft{Sender: model.SenderUser, Text: "hi"}, now)
		assert.Equal(t, 3, updated.UnreadCount)
	})

	t.Run("agent message never changes unread", func(t *testing.T) {
		_, updated, _ := Append(nil, conv, model.Draft{Sender: model.SenderAgent, Text: "hi", AgentName: "Admin User"}, now)
		assert.Equal(t, 2, updated.UnreadCount)
	})

	t.Run("conversation mirrors the new log tail", func(t *testing.T) {
		log, updated, msg := Append(nil, conv, model.Draft{Sender: model.SenderUser, Text: "latest"}, now)
		require.Len(t, log, 1)
		assert.Equal(t, msg.Text, updated.LastMessage)
		assert.Equal(t, msg.Timestamp, updated.Timestamp)
		assert.Equal(t, msg.SentAt, updated.SentAt)
	})

	t.Run("display timestamp uses clock format", func(t *testing.T) {
		_, _, msg := Append(nil, conv, model.Draft{Sender: model.SenderUser, Text: "x"}, now)
		assert.Equal(t, "10:42 AM", msg.Timestamp)
		assert.Equal(t, now, msg.SentAt)
	})

	t.Run("agent name stamped only for agent sender", func(t *testing.T) {
		_, _, agentMsg := Append(nil, conv, model.Draft{Sender: model.SenderAgent, Text: "x", AgentName: "Admin User"}, now)
		assert.Equal(t, "Admin User", agentMsg.AgentName)

		_, _, userMsg := Append(nil, conv, model.Draft{Sender: model.SenderUser, Text: "x", AgentName: "Admin User"}, now)
		assert.Empty(t, userMsg.AgentName)
	})

	t.Run("kind defaults to plain", func(t *testing.T) {
		_, _, msg := Append(nil, conv, model.Draft{Sender: model.SenderUser, Text: "x"}, now)
		assert.Equal(t, model.KindPlain, msg.Kind)
	})

	t.Run("payment link and attachment variants survive", func(t *testing.T) {
		att := &model.Attachment{Name: "photo.jpg", URL: "https://cdn/photo.jpg", MimeType: "image/jpeg"}

		_, _, link := Append(nil, conv, model.Draft{Sender: model.SenderAgent, Text: "pay here", Kind: model.KindPaymentLink}, now)
		assert.Equal(t, model.KindPaymentLink, link.Kind)

		_, _, file := Append(nil, conv, model.Draft{Sender: model.SenderUser, Text: "photo.jpg", Kind: model.KindAttachment, Attachment: att}, now)
		assert.Equal(t, model.KindAttachment, file.Kind)
		assert.Equal(t, att, file.Attachment)
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		log := []model.Message{{ID: 1, Text: "old"}}
		c := model.Conversation{ID: 1, UnreadCount: 1}

		newLog, _, _ := Append(log, c, model.Draft{Sender: model.SenderUser, Text: "new"}, now)
		assert.Len(t, log, 1)
		assert.Len(t, newLog, 2)
		assert.Equal(t, 1, c.UnreadCount)
	})
}

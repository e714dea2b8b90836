// Package widget is the web-chat side of the shared store: the appender that
// runs on behalf of a visitor on a third-party page. It talks to the store
// directly, never to a dashboard engine, and uses the same append algorithm
// (chat.Append) and the same conversation-identity convention, so a visitor
// message lands in the inbox exactly like a platform message would.
package widget

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthcrm/inbox-server-go/internal/chat"
	"github.com/healthcrm/inbox-server-go/internal/model"
	"github.com/healthcrm/inbox-server-go/internal/store"
)

type Client struct {
	store store.Store
}

func NewClient(s store.Store) *Client {
	return &Client{store: s}
}

// blankConversation is the reserved conversation as the widget first creates
// it: no last message, no unread. The first append fills those in.
func blankConversation() model.Conversation {
	return model.Conversation{
		ID:           model.WebChatConversationID,
		CustomerName: "Web Chat Visitor",
		Platform:     model.PlatformWebChat,
		AvatarURL:    "https://picsum.photos/id/1005/200/200",
	}
}

// Send appends a visitor message to the reserved web-chat conversation,
// creating the conversation if the persisted state lacks it. Failures are
// logged and returned for the transport layer's benefit, but nothing here
// panics: the widget must never throw into its host page.
func (c *Client) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	state, err := c.store.LoadRaw(ctx)
	if err != nil {
		log.Error().Err(err).Msg("widget: failed to read conversation state")
		return err
	}

	conv := state.Conversation(model.WebChatConversationID)
	if conv == nil {
		state.Conversations = append(state.Conversations, blankConversation())
		conv = state.Conversation(model.WebChatConversationID)
	}

	msgs, updated, msg := chat.Append(
		state.Messages[model.WebChatConversationID],
		*conv,
		model.Draft{Sender: model.SenderUser, Text: text, Kind: model.KindPlain},
		time.Now(),
	)
	state.Messages[model.WebChatConversationID] = msgs
	*conv = updated

	if err := c.store.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("widget: failed to persist visitor message")
		return err
	}

	log.Info().Int("messageId", msg.ID).Msg("widget: visitor message stored")
	return nil
}

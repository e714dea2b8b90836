package model

import "time"

// WebChatConversationID is the reserved id of the single conversation fed by
// the embeddable web-chat widget. It is auto-created on the widget's first
// message when missing from the store; it is never deleted.
const WebChatConversationID = 999

type Conversation struct {
	ID           int       `json:"id"`
	CustomerName string    `json:"customerName"`
	LastMessage  string    `json:"lastMessage"`
	Timestamp    string    `json:"timestamp"`
	SentAt       time.Time `json:"sentAt"`
	Platform     Platform  `json:"platform"`
	AvatarURL    string    `json:"avatarUrl"`
	UnreadCount  int       `json:"unreadCount"`
}

// IsWebChat reports whether this is the reserved widget conversation.
func (c *Conversation) IsWebChat() bool {
	return c.ID == WebChatConversationID
}

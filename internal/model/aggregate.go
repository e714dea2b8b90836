package model

// Aggregate is the whole conversation state persisted as one blob: the
// conversation list plus every conversation's message log, keyed by
// conversation id. It is always read and written in full.
type Aggregate struct {
	Conversations []Conversation    `json:"conversations"`
	Messages      map[int][]Message `json:"messages"`
}

// Conversation returns a pointer into Conversations for the given id, or nil.
func (a *Aggregate) Conversation(id int) *Conversation {
	for i := range a.Conversations {
		if a.Conversations[i].ID == id {
			return &a.Conversations[i]
		}
	}
	return nil
}

// TotalUnread sums unread counts across all conversations.
func (a *Aggregate) TotalUnread() int {
	total := 0
	for i := range a.Conversations {
		total += a.Conversations[i].UnreadCount
	}
	return total
}

// Clone returns a deep copy. Engines hand copies to callers and keep their
// own copy isolated from the store's.
func (a *Aggregate) Clone() *Aggregate {
	out := &Aggregate{
		Conversations: make([]Conversation, len(a.Conversations)),
		Messages:      make(map[int][]Message, len(a.Messages)),
	}
	copy(out.Conversations, a.Conversations)
	for id, log := range a.Messages {
		msgs := make([]Message, len(log))
		copy(msgs, log)
		out.Messages[id] = msgs
	}
	return out
}

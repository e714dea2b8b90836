package model

// Seed returns the built-in sample state used when the store is empty or
// unreadable. The widget's reserved conversation is part of the seed so the
// inbox always has a Web Chat entry to filter on.
func Seed() *Aggregate {
	return &Aggregate{
		Conversations: []Conversation{
			{ID: 1, CustomerName: "Alice Johnson", LastMessage: "Okay, thank you for the information!", Timestamp: "10:45 AM", Platform: PlatformWhatsApp, AvatarURL: "https://picsum.photos/id/11/200/200", UnreadCount: 0},
			{ID: 2, CustomerName: "Bob Williams", LastMessage: "Can you send me the payment link?", Timestamp: "10:42 AM", Platform: PlatformFacebook, AvatarURL: "https://picsum.photos/id/12/200/200", UnreadCount: 2},
			{ID: 3, CustomerName: "Charlie Brown", LastMessage: "I have a question about the procedure.", Timestamp: "Yesterday", Platform: PlatformInstagram, AvatarURL: "https://picsum.photos/id/13/200/200", UnreadCount: 0},
			WebChatTemplate(),
		},
		Messages: map[int][]Message{
			1: {},
			2: {
				{ID: 1, Sender: SenderUser, Text: "Hello, I would like to get a quote for a hair transplant.", Timestamp: "10:30 AM", Kind: KindPlain},
				{ID: 2, Sender: SenderAgent, Text: "Of course! I can help with that. Could you please provide some photos?", Timestamp: "10:31 AM", Kind: KindPlain, AgentName: "Admin User"},
				{ID: 3, Sender: SenderUser, Text: "Sure, here they are.", Timestamp: "10:35 AM", Kind: KindPlain},
				{ID: 4, Sender: SenderAgent, Text: "Thank you. Based on the photos, the estimated cost is $2500. This includes the procedure, hotel, and transfers.", Timestamp: "10:40 AM", Kind: KindPlain, AgentName: "Admin User"},
				{ID: 5, Sender: SenderUser, Text: "That sounds great. How can I proceed with the payment?", Timestamp: "10:41 AM", Kind: KindPlain},
				{ID: 6, Sender: SenderAgent, Text: "I will generate a secure payment link for you now.", Timestamp: "10:42 AM", Kind: KindPlain, AgentName: "Admin User"},
			},
			3: {},
			WebChatConversationID: WebChatSeedLog(),
		},
	}
}

// WebChatTemplate is the reserved widget conversation as first synthesized.
func WebChatTemplate() Conversation {
	return Conversation{
		ID:           WebChatConversationID,
		CustomerName: "Web Chat Visitor",
		LastMessage:  "Hello! How can we help you?",
		Timestamp:    "Yesterday",
		Platform:     PlatformWebChat,
		AvatarURL:    "https://picsum.photos/id/1005/200/200",
		UnreadCount:  1,
	}
}

// WebChatSeedLog is the initial log for the reserved widget conversation.
func WebChatSeedLog() []Message {
	return []Message{
		{ID: 1, Sender: SenderUser, Text: "Hello! How can we help you?", Timestamp: "Yesterday", Kind: KindPlain},
	}
}

package model

import "time"

type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

// Message ids are unique within one conversation's log only, assigned as
// max(existing ids)+1. Timestamp is the display string shown in the UI;
// SentAt is the sortable instant recorded alongside it.
type Message struct {
	ID         int         `json:"id"`
	Sender     Sender      `json:"sender"`
	Text       string      `json:"text"`
	Timestamp  string      `json:"timestamp"`
	SentAt     time.Time   `json:"sentAt"`
	Kind       MessageKind `json:"kind"`
	Attachment *Attachment `json:"attachment,omitempty"`
	AgentName  string      `json:"agentName,omitempty"`
}

// Draft is the caller-supplied part of a message; id, timestamps and the
// agent name are stamped at append time.
type Draft struct {
	Sender     Sender      `json:"sender"`
	Text       string      `json:"text"`
	Kind       MessageKind `json:"kind,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	AgentName  string      `json:"-"`
}

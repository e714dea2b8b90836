// Package export renders read-only views of the conversation aggregate for
// download, currently CSV transcripts of a single conversation's log.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/healthcrm/inbox-server-go/internal/model"
)

// WriteTranscript writes one conversation's log as CSV: date, time, sender
// name, message text. The sender column shows the agent's name for agent
// messages and the customer's name otherwise.
func WriteTranscript(w io.Writer, conv model.Conversation, msgs []model.Message) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Time", "Sender", "Message"}); err != nil {
		return fmt.Errorf("write transcript header: %w", err)
	}

	for _, msg := range msgs {
		date := ""
		if !msg.SentAt.IsZero() {
			date = msg.SentAt.Format("2006-01-02")
		}

		sender := conv.CustomerName
		if msg.Sender == model.SenderAgent {
			sender = msg.AgentName
			if sender == "" {
				sender = "Agent"
			}
		}

		if err := cw.Write([]string{date, msg.Timestamp, sender, msg.Text}); err != nil {
			return fmt.Errorf("write transcript row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename builds a safe download name from the customer's name.
func Filename(conv model.Conversation) string {
	name := strings.ToLower(conv.CustomerName)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("transcript_%d.csv", conv.ID)
	}
	return fmt.Sprintf("transcript_%s.csv", b.String())
}

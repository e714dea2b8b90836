package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthcrm/inbox-server-go/internal/model"
)

func TestWriteTranscript(t *testing.T) {
	conv := model.Conversation{ID: 2, CustomerName: "Bob Williams"}
	sent := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	msgs := []model.Message{
		{ID: 1, Sender: model.SenderUser, Text: "Hello, I need a quote.", Timestamp: "10:30 AM", SentAt: sent},
		{ID: 2, Sender: model.SenderAgent, Text: "Of course!", Timestamp: "10:31 AM", AgentName: "Admin User"},
		{ID: 3, Sender: model.SenderAgent, Text: "Anything else?", Timestamp: "10:32 AM"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTranscript(&buf, conv, msgs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Date", "Time", "Sender", "Message"}, rows[0])
	assert.Equal(t, []string{"2026-03-14", "10:30 AM", "Bob Williams", "Hello, I need a quote."}, rows[1])
	assert.Equal(t, []string{"", "10:31 AM", "Admin User", "Of course!"}, rows[2])
	assert.Equal(t, "Agent", rows[3][2], "agent messages without a name fall back to Agent")
}

func TestWriteTranscriptEmptyLog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTranscript(&buf, model.Conversation{ID: 1, CustomerName: "Alice"}, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		conv     model.Conversation
		expected string
	}{
		{"plain name", model.Conversation{ID: 1, CustomerName: "Bob Williams"}, "transcript_bob_williams.csv"},
		{"strips punctuation", model.Conversation{ID: 2, CustomerName: "A. O'Neil!"}, "transcript_a_oneil.csv"},
		{"falls back to id", model.Conversation{ID: 999, CustomerName: "口口口"}, "transcript_999.csv"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Filename(tc.conv))
		})
	}
}

package inbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/model"
)

// fakeSource is a hand-rolled engine stand-in the view reads from.
type fakeSource struct {
	conversations []model.Conversation
	messages      map[int][]model.Message
}

func (f *fakeSource) Conversations() []model.Conversation {
	out := make([]model.Conversation, len(f.conversations))
	copy(out, f.conversations)
	return out
}

func (f *fakeSource) Messages(id int) []model.Message {
	return f.messages[id]
}

func (f *fakeSource) TotalUnread() int {
	total := 0
	for _, c := range f.conversations {
		total += c.UnreadCount
	}
	return total
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		conversations: []model.Conversation{
			{ID: 1, CustomerName: "Alice Johnson"},
			{ID: 2, CustomerName: "Bob Williams", UnreadCount: 2},
			{ID: 3, CustomerName: "Charlie Brown"},
		},
		messages: map[int][]model.Message{
			1: {},
			2: {{ID: 1, Sender: model.SenderUser, Text: "hi"}},
			3: {},
		},
	}
}

func TestAutoSelect(t *testing.T) {
	t.Run("first unread conversation wins", func(t *testing.T) {
		v := NewView(newFakeSource(), false)
		s := v.Refresh()
		require.NotNil(t, s.Active)
		assert.Equal(t, 2, s.Active.ID)
	})

	t.Run("falls back to first in list order", func(t *testing.T) {
		src := newFakeSource()
		src.conversations[1].UnreadCount = 0
		v := NewView(src, false)
		s := v.Refresh()
		require.NotNil(t, s.Active)
		assert.Equal(t, 1, s.Active.ID)
	})

	t.Run("no conversations means no selection", func(t *testing.T) {
		v := NewView(&fakeSource{}, false)
		s := v.Refresh()
		assert.Nil(t, s.Active)
		assert.True(t, s.ShowList)
	})

	t.Run("narrow viewport stays unselected", func(t *testing.T) {
		v := NewView(newFakeSource(), true)
		s := v.Refresh()
		assert.Nil(t, s.Active)
		assert.True(t, s.ShowList)
	})
}

func TestSelectAndDeselect(t *testing.T) {
	t.Run("select shows the thread", func(t *testing.T) {
		v := NewView(newFakeSource(), true)
		s, err := v.Select(2)
		require.NoError(t, err)
		require.NotNil(t, s.Active)
		assert.Equal(t, 2, s.Active.ID)
		assert.False(t, s.ShowList)
		assert.Len(t, s.Messages, 1)
	})

	t.Run("select unknown id is a caller error", func(t *testing.T) {
		v := NewView(newFakeSource(), false)
		_, err := v.Select(777)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("deselect returns narrow viewport to the list", func(t *testing.T) {
		v := NewView(newFakeSource(), true)
		_, err := v.Select(2)
		require.NoError(t, err)

		s := v.Deselect()
		assert.Nil(t, s.Active)
		assert.True(t, s.ShowList)

		// Still unselected on the next refresh: narrow never auto-selects.
		s = v.Refresh()
		assert.Nil(t, s.Active)
	})

	t.Run("selection does not clear unread counts", func(t *testing.T) {
		src := newFakeSource()
		v := NewView(src, false)
		_, err := v.Select(2)
		require.NoError(t, err)
		assert.Equal(t, 2, src.conversations[1].UnreadCount)
		assert.Equal(t, 2, v.Refresh().TotalUnread)
	})
}

func TestRefreshAfterExternalUpdate(t *testing.T) {
	t.Run("active conversation is re-pointed at the refreshed copy", func(t *testing.T) {
		src := newFakeSource()
		v := NewView(src, false)
		_, err := v.Select(2)
		require.NoError(t, err)

		src.conversations[1].LastMessage = "fresh"
		src.conversations[1].UnreadCount = 5

		s := v.Refresh()
		require.NotNil(t, s.Active)
		assert.Equal(t, 2, s.Active.ID)
		assert.Equal(t, "fresh", s.Active.LastMessage)
		assert.Equal(t, 5, s.Active.UnreadCount)
	})

	t.Run("vanished conversation clears the selection", func(t *testing.T) {
		src := newFakeSource()
		v := NewView(src, true)
		_, err := v.Select(2)
		require.NoError(t, err)

		src.conversations = src.conversations[:1] // only conversation 1 remains

		s := v.Refresh()
		assert.Nil(t, s.Active)
		assert.Equal(t, 0, v.ActiveID())
	})
}

func TestSnapToLatest(t *testing.T) {
	src := newFakeSource()
	v := NewView(src, false)

	s, err := v.Select(2)
	require.NoError(t, err)
	assert.True(t, s.SnapToLatest, "entering a thread snaps to its newest message")

	s = v.Refresh()
	assert.False(t, s.SnapToLatest, "unchanged log does not snap")

	src.messages[2] = append(src.messages[2], model.Message{ID: 2, Sender: model.SenderAgent, Text: "reply"})
	s = v.Refresh()
	assert.True(t, s.SnapToLatest, "grown log snaps")

	s = v.Refresh()
	assert.False(t, s.SnapToLatest)
}

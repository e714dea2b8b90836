// Package inbox implements the stateful presentation logic sitting on top of
// the engine: which conversation is active, how selection survives external
// updates, and when the thread view snaps to the newest message.
package inbox

import (
	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/model"
)

// Source is the slice of the engine the view reads.
type Source interface {
	Conversations() []model.Conversation
	Messages(conversationID int) []model.Message
	TotalUnread() int
}

// State is what the view derives for rendering after any transition.
type State struct {
	Conversations []model.Conversation
	Active        *model.Conversation
	Messages      []model.Message
	TotalUnread   int

	// SnapToLatest is set when the active thread's scroll position should
	// jump to the newest message: the active conversation changed, or its
	// log grew.
	SnapToLatest bool

	// ShowList is the narrow-viewport panel toggle: list when nothing is
	// selected, thread otherwise. Wide viewports show both.
	ShowList bool
}

// View tracks the active-conversation selection for one inbox instance.
type View struct {
	src    Source
	narrow bool

	activeID   int // 0 = no selection
	lastLogLen int
}

func NewView(src Source, narrow bool) *View {
	return &View{src: src, narrow: narrow}
}

// SetNarrow switches the viewport mode. Narrow viewports never auto-select;
// shrinking with a selection keeps it.
func (v *View) SetNarrow(narrow bool) {
	v.narrow = narrow
}

// Refresh re-derives the view after the engine state changed. A still-extant
// active conversation is re-pointed at its refreshed copy; a vanished one
// clears the selection. With no selection, wide viewports auto-select the
// first unread conversation, or the first one.
func (v *View) Refresh() State {
	conversations := v.src.Conversations()

	if v.activeID != 0 && findConversation(conversations, v.activeID) == nil {
		v.activeID = 0
		v.lastLogLen = 0
	}

	if v.activeID == 0 && !v.narrow {
		if pick := autoSelect(conversations); pick != nil {
			v.activeID = pick.ID
			v.lastLogLen = 0
		}
	}

	return v.derive(conversations)
}

// Select makes a conversation active. Unknown ids are a caller error.
func (v *View) Select(conversationID int) (State, error) {
	conversations := v.src.Conversations()
	if findConversation(conversations, conversationID) == nil {
		return State{}, apperrors.NotFound("Conversation")
	}
	if v.activeID != conversationID {
		v.activeID = conversationID
		v.lastLogLen = 0
	}
	return v.derive(conversations), nil
}

// Deselect clears the selection, returning narrow viewports to the list
// panel. On wide viewports the next Refresh auto-selects again.
func (v *View) Deselect() State {
	v.activeID = 0
	v.lastLogLen = 0
	return v.derive(v.src.Conversations())
}

// ActiveID returns the selected conversation id, 0 when none.
func (v *View) ActiveID() int {
	return v.activeID
}

func (v *View) derive(conversations []model.Conversation) State {
	s := State{
		Conversations: conversations,
		TotalUnread:   v.src.TotalUnread(),
		ShowList:      v.activeID == 0,
	}

	if v.activeID == 0 {
		v.lastLogLen = 0
		return s
	}

	s.Active = findConversation(conversations, v.activeID)
	s.Messages = v.src.Messages(v.activeID)
	if len(s.Messages) != v.lastLogLen {
		s.SnapToLatest = true
		v.lastLogLen = len(s.Messages)
	}
	return s
}

// autoSelect picks the first conversation with unread messages, falling back
// to the first in list order.
func autoSelect(conversations []model.Conversation) *model.Conversation {
	for i := range conversations {
		if conversations[i].UnreadCount > 0 {
			return &conversations[i]
		}
	}
	if len(conversations) > 0 {
		return &conversations[0]
	}
	return nil
}

func findConversation(conversations []model.Conversation, id int) *model.Conversation {
	for i := range conversations {
		if conversations[i].ID == id {
			return &conversations[i]
		}
	}
	return nil
}

package client

import (
	"sync"

	"campus-chat/models"
)

// View identifies the room or conversation a timeline displays.
type View struct {
	Kind    models.MessageKind
	GroupID string
	UserA   string
	UserB   string
}

// GroupView addresses a group room.
func GroupView(groupID string) View {
	return View{Kind: models.KindGroup, GroupID: groupID}
}

// DirectView addresses the conversation between two users, unordered.
func DirectView(userA, userB string) View {
	return View{Kind: models.KindDirect, UserA: userA, UserB: userB}
}

func (v View) matches(m *models.Message) bool {
	if m.Kind != v.Kind {
		return false
	}
	if v.Kind == models.KindGroup {
		return m.GroupID == v.GroupID
	}
	return (m.SenderID == v.UserA && m.ReceiverID == v.UserB) ||
		(m.SenderID == v.UserB && m.ReceiverID == v.UserA)
}

// Timeline merges messages arriving through two paths, live push and paged
// history fetch, into one ordered deduplicated sequence for the open view.
// Pushed messages append; older history pages prepend; identity (message ID)
// decides duplicates either way.
type Timeline struct {
	mu       sync.Mutex
	view     View
	messages []models.Message
	seen     map[int64]struct{}

	hasMore     bool
	loading     bool
	loadedPages int

	anchorID int64
}

// NewTimeline creates an empty timeline for a view. The caller follows up
// with an initial history load.
func NewTimeline(view View) *Timeline {
	return &Timeline{
		view: view,
		seen: make(map[int64]struct{}),
	}
}

// View returns the view this timeline displays.
func (t *Timeline) View() View {
	return t.view
}

// ApplyHistoryPage merges one fetched page. An initial load replaces the
// sequence; a backward load prepends the page's messages in front of the
// existing ones. Already-known IDs (e.g. a message that arrived via push
// while the fetch was in flight) are skipped, so the merged sequence never
// holds duplicates. Clears the in-flight flag set by BeginLoad.
func (t *Timeline) ApplyHistoryPage(page *models.HistoryPage, initial bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loading = false
	t.hasMore = page.Pagination.HasMore

	if initial {
		t.messages = t.messages[:0]
		t.seen = make(map[int64]struct{})
		t.loadedPages = 0
	}

	fresh := make([]models.Message, 0, len(page.Messages))
	for _, m := range page.Messages {
		if _, dup := t.seen[m.ID]; dup {
			continue
		}
		t.seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}

	if initial || len(t.messages) == 0 {
		t.messages = append(t.messages, fresh...)
	} else {
		t.messages = append(fresh, t.messages...)
	}
	t.loadedPages++
}

// ApplyPush merges one live-pushed message. It is appended only when it
// belongs to this timeline's view and its ID is unseen; anything else is
// dropped. A dropped message stays retrievable via history, it simply is
// not displayed in the wrong view. Reports whether the message became
// visible.
func (t *Timeline) ApplyPush(m *models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.view.matches(m) {
		return false
	}
	if _, dup := t.seen[m.ID]; dup {
		return false
	}
	t.seen[m.ID] = struct{}{}
	t.messages = append(t.messages, *m)
	return true
}

// SetAnchor records the message the reader is currently looking at.
func (t *Timeline) SetAnchor(messageID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.anchorID = messageID
}

// AnchorIndex returns the current index of the anchored message, or -1 when
// no anchor is set or it is not in the sequence. After an older page is
// prepended the view layer repositions its scroll to this index so the item
// the reader was looking at does not visually jump.
func (t *Timeline) AnchorIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.anchorID == 0 {
		return -1
	}
	for i := range t.messages {
		if t.messages[i].ID == t.anchorID {
			return i
		}
	}
	return -1
}

// ShouldLoadOlder gates the backward-scroll trigger: the view is within
// threshold of its top edge, an older page exists, and no load is already
// in flight.
func (t *Timeline) ShouldLoadOlder(distanceFromTop, threshold int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return distanceFromTop <= threshold && t.hasMore && !t.loading
}

// BeginLoad marks a history fetch in flight and returns the page number to
// request. Callers pair it with ApplyHistoryPage (or AbortLoad on failure).
func (t *Timeline) BeginLoad() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = true
	return t.loadedPages + 1
}

// AbortLoad clears the in-flight flag after a failed fetch.
func (t *Timeline) AbortLoad() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
}

// HasMore reports whether an older page exists.
func (t *Timeline) HasMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasMore
}

// Messages returns a copy of the current ordered sequence.
func (t *Timeline) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

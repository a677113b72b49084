package client

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-chat/models"
)

func groupMsg(id int64, groupID, body string) models.Message {
	return models.Message{ID: id, Kind: models.KindGroup, GroupID: groupID, SenderID: "U1", Body: body}
}

func directMsg(id int64, sender, receiver string) models.Message {
	return models.Message{ID: id, Kind: models.KindDirect, SenderID: sender, ReceiverID: receiver, Body: "x"}
}

func page(hasMore bool, msgs ...models.Message) *models.HistoryPage {
	return &models.HistoryPage{
		Messages:   msgs,
		Pagination: models.Pagination{HasMore: hasMore},
	}
}

func bodies(t *Timeline) []string {
	msgs := t.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Body
	}
	return out
}

func TestTimeline_InitialLoadReplaces(t *testing.T) {
	tl := NewTimeline(GroupView("G1"))
	tl.ApplyHistoryPage(page(false, groupMsg(9, "G1", "stale")), true)

	tl.ApplyHistoryPage(page(true, groupMsg(10, "G1", "a"), groupMsg(11, "G1", "b")), true)

	assert.Equal(t, []string{"a", "b"}, bodies(tl))
	assert.True(t, tl.HasMore())
}

func TestTimeline_OlderPagePrepends(t *testing.T) {
	tl := NewTimeline(GroupView("G1"))
	tl.ApplyHistoryPage(page(true, groupMsg(10, "G1", "c"), groupMsg(11, "G1", "d")), true)

	tl.ApplyHistoryPage(page(false, groupMsg(8, "G1", "a"), groupMsg(9, "G1", "b")), false)

	assert.Equal(t, []string{"a", "b", "c", "d"}, bodies(tl))
	assert.False(t, tl.HasMore())
}

func TestTimeline_AnchorSurvivesPrepend(t *testing.T) {
	tl := NewTimeline(GroupView("G1"))
	tl.ApplyHistoryPage(page(true, groupMsg(10, "G1", "c"), groupMsg(11, "G1", "d")), true)

	tl.SetAnchor(10)
	require.Equal(t, 0, tl.AnchorIndex())

	tl.ApplyHistoryPage(page(false, groupMsg(8, "G1", "a"), groupMsg(9, "G1", "b")), false)

	assert.Equal(t, 2, tl.AnchorIndex(), "the anchored message keeps its identity after prepend")
}

func TestTimeline_PushDeduplicates(t *testing.T) {
	tl := NewTimeline(GroupView("G1"))
	m := groupMsg(5, "G1", "hi")

	assert.True(t, tl.ApplyPush(&m))
	assert.False(t, tl.ApplyPush(&m), "the same identifier is dropped on repeat")
	assert.Len(t, tl.Messages(), 1)
}

func TestTimeline_PushForOtherViewDropped(t *testing.T) {
	tl := NewTimeline(GroupView("G1"))

	other := groupMsg(1, "G2", "elsewhere")
	assert.False(t, tl.ApplyPush(&other))

	dm := directMsg(2, "U1", "U2")
	assert.False(t, tl.ApplyPush(&dm), "kind mismatch is dropped")
	assert.Empty(t, tl.Messages())
}

func TestTimeline_DirectViewUnorderedPair(t *testing.T) {
	tl := NewTimeline(DirectView("U1", "U2"))

	outbound := directMsg(1, "U1", "U2")
	inbound := directMsg(2, "U2", "U1")
	stranger := directMsg(3, "U3", "U1")

	assert.True(t, tl.ApplyPush(&outbound))
	assert.True(t, tl.ApplyPush(&inbound))
	assert.False(t, tl.ApplyPush(&stranger))
}

func TestTimeline_PushDuringFetchNotDuplicated(t *testing.T) {
	// A message can arrive by push while the page containing it is in
	// flight; the merge keeps a single copy.
	tl := NewTimeline(GroupView("G1"))
	tl.ApplyHistoryPage(page(true, groupMsg(10, "G1", "old")), true)

	pushed := groupMsg(11, "G1", "live")
	require.True(t, tl.ApplyPush(&pushed))

	tl.ApplyHistoryPage(page(false, groupMsg(9, "G1", "older"), groupMsg(11, "G1", "live")), false)

	assert.Equal(t, []string{"older", "old", "live"}, bodies(tl))
}

func TestTimeline_ShouldLoadOlder(t *testing.T) {
	tl := NewTimeline(GroupView("G1"))
	tl.ApplyHistoryPage(page(true, groupMsg(10, "G1", "a")), true)

	assert.True(t, tl.ShouldLoadOlder(10, 50), "near the top with more pages")
	assert.False(t, tl.ShouldLoadOlder(300, 50), "not near the top")

	pageNum := tl.BeginLoad()
	assert.Equal(t, 2, pageNum)
	assert.False(t, tl.ShouldLoadOlder(10, 50), "a load is already in flight")

	tl.AbortLoad()
	assert.True(t, tl.ShouldLoadOlder(10, 50))

	tl.BeginLoad()
	tl.ApplyHistoryPage(page(false, groupMsg(9, "G1", "b")), false)
	assert.False(t, tl.ShouldLoadOlder(10, 50), "no further page exists")
}

func TestTimeline_FullScrollbackReassemblesHistory(t *testing.T) {
	// Feed pages newest-to-oldest the way a scrolling client fetches them
	// and verify the final sequence is complete, ordered, duplicate-free.
	tl := NewTimeline(GroupView("G1"))

	var all []models.Message
	for i := int64(1); i <= 25; i++ {
		all = append(all, groupMsg(i, "G1", fmt.Sprintf("m%d", i)))
	}

	// 3 pages of 10: page 1 = msgs 16..25, page 2 = 6..15, page 3 = 1..5.
	tl.ApplyHistoryPage(page(true, all[15:]...), true)
	tl.ApplyHistoryPage(page(true, all[5:15]...), false)
	tl.ApplyHistoryPage(page(false, all[:5]...), false)

	msgs := tl.Messages()
	require.Len(t, msgs, 25)
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.ID)
	}
}

package timeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTimeline(t *testing.T, raw string) Timeline {
	t.Helper()
	var tl Timeline
	require.NoError(t, json.Unmarshal([]byte(raw), &tl))
	return tl
}

func TestCollectEntries(t *testing.T) {
	tl := mustTimeline(t, `{
		"instructions": [{
			"type": "TimelineAddEntries",
			"entries": [
				{
					"entryId": "tweet-1",
					"content": {
						"entryType": "TimelineTimelineItem",
						"itemContent": {"__typename": "TimelineTweet", "id": "1"}
					}
				},
				{
					"entryId": "user-2",
					"content": {
						"entryType": "TimelineTimelineItem",
						"itemContent": {"__typename": "TimelineUser", "id": "2"}
					}
				},
				{
					"entryId": "cursor-bottom-3",
					"content": {
						"entryType": "TimelineTimelineCursor",
						"cursorType": "Bottom",
						"value": "next-page"
					}
				},
				{
					"entryId": "cursor-top-4",
					"content": {
						"entryType": "TimelineTimelineCursor",
						"cursorType": "Top",
						"value": "prev-page"
					}
				}
			]
		}]
	}`)

	tweets, cur := Collect(tl, KindTweet)
	assert.Len(t, tweets, 1)
	assert.Equal(t, "next-page", cur.Bottom)
	assert.Equal(t, "prev-page", cur.Top)

	users, _ := Collect(tl, KindUser)
	assert.Len(t, users, 1)
}

func TestCollectModuleItems(t *testing.T) {
	// Conversation threads group replies inside a module entry and nest
	// their continuation cursor there too.
	tl := mustTimeline(t, `{
		"instructions": [{
			"type": "TimelineAddEntries",
			"entries": [{
				"entryId": "conversationthread-1",
				"content": {
					"entryType": "TimelineTimelineModule",
					"items": [
						{"entryId": "t-1", "item": {"itemContent": {"__typename": "TimelineTweet"}}},
						{"entryId": "t-2", "item": {"itemContent": {"__typename": "TimelineTweet"}}},
						{"entryId": "cursor-showmorethreads-3", "item": {"itemContent": {"__typename": "TimelineTimelineCursor", "cursorType": "ShowMoreThreads", "value": "deeper-thread"}}}
					]
				}
			}]
		}]
	}`)

	tweets, cur := Collect(tl, KindTweet)
	assert.Len(t, tweets, 2)
	assert.Equal(t, "deeper-thread", cur.Bottom)
}

func TestCollectShowMoreThreadsCursor(t *testing.T) {
	// Reply threads page with ShowMoreThreads cursors instead of Bottom.
	tl := mustTimeline(t, `{
		"instructions": [{
			"type": "TimelineAddEntries",
			"entries": [{
				"entryId": "cursor-showmorethreads-123",
				"content": {
					"entryType": "TimelineTimelineCursor",
					"cursorType": "ShowMoreThreads",
					"value": "more-threads"
				}
			}]
		}]
	}`)

	_, cur := Collect(tl, KindTweet)
	assert.Equal(t, "more-threads", cur.Bottom)

	// ShowMoreThreadsPrompt counts too, matched by type even without the
	// entryId hint.
	tl = mustTimeline(t, `{
		"instructions": [{
			"type": "TimelineAddEntries",
			"entries": [{
				"entryId": "prompt-1",
				"content": {
					"entryType": "TimelineTimelineCursor",
					"cursorType": "ShowMoreThreadsPrompt",
					"value": "prompt-page"
				}
			}]
		}]
	}`)

	_, cur = Collect(tl, KindTweet)
	assert.Equal(t, "prompt-page", cur.Bottom)
}

func TestCollectBottomCursorWins(t *testing.T) {
	// When a page carries both, the explicit Bottom cursor is the
	// continuation, regardless of entry order.
	tl := mustTimeline(t, `{
		"instructions": [{
			"type": "TimelineAddEntries",
			"entries": [
				{
					"entryId": "cursor-showmorethreads-1",
					"content": {
						"entryType": "TimelineTimelineCursor",
						"cursorType": "ShowMoreThreads",
						"value": "show-more"
					}
				},
				{
					"entryId": "cursor-bottom-2",
					"content": {
						"entryType": "TimelineTimelineCursor",
						"cursorType": "Bottom",
						"value": "real-bottom"
					}
				}
			]
		}]
	}`)

	_, cur := Collect(tl, KindTweet)
	assert.Equal(t, "real-bottom", cur.Bottom)
}

func TestCollectPinnedEntry(t *testing.T) {
	tl := mustTimeline(t, `{
		"instructions": [{
			"type": "TimelinePinEntry",
			"entry": {
				"entryId": "tweet-pinned",
				"content": {
					"entryType": "TimelineTimelineItem",
					"itemContent": {"__typename": "TimelineTweet"}
				}
			}
		}]
	}`)

	tweets, _ := Collect(tl, KindTweet)
	assert.Len(t, tweets, 1)
}

func TestCollectCursorByEntryID(t *testing.T) {
	// Some responses omit cursorType and only hint direction in entryId.
	tl := mustTimeline(t, `{
		"instructions": [{
			"type": "TimelineAddEntries",
			"entries": [{
				"entryId": "cursor-bottom-99",
				"content": {
					"__typename": "TimelineTimelineCursor",
					"value": "deep-page"
				}
			}]
		}]
	}`)

	_, cur := Collect(tl, KindTweet)
	assert.Equal(t, "deep-page", cur.Bottom)
}

func TestCollectSkipsMalformed(t *testing.T) {
	tl := mustTimeline(t, `{
		"instructions": [{
			"type": "TimelineAddEntries",
			"entries": [
				{"entryId": "x", "content": {"entryType": "TimelineTimelineItem"}},
				{"entryId": "y", "content": {"entryType": "TimelineTimelineItem", "itemContent": {"__typename": "TimelineTweet"}}}
			]
		}]
	}`)

	tweets, _ := Collect(tl, KindTweet)
	assert.Len(t, tweets, 1)
}

func TestCollectEmptyTimeline(t *testing.T) {
	items, cur := Collect(Timeline{}, KindTweet)
	assert.Nil(t, items)
	assert.Equal(t, Cursors{}, cur)
}

// Package timeline flattens the platform's nested timeline responses.
//
// Every cursored listing (search, followers, likers, retweeters,
// conversations) returns the same instruction/entry tree with entity nodes
// buried at varying depths. This package walks that tree, picks out the
// nodes whose __typename matches a requested resource kind, and hands back
// the raw nodes together with the pagination cursors found along the way.
// Field-level flattening into domain records stays with the caller.
package timeline

import (
	"encoding/json"
	"strings"
)

// Kind is the __typename discriminator selecting which item-content nodes
// to extract from a timeline.
type Kind string

const (
	KindTweet Kind = "TimelineTweet"
	KindUser  Kind = "TimelineUser"
)

// Timeline is the instruction envelope shared by all timeline endpoints.
type Timeline struct {
	Instructions []Instruction `json:"instructions"`
}

// Instruction is a single timeline mutation instruction. AddEntries carries
// Entries; pin/replace instructions carry a single Entry.
type Instruction struct {
	Type    string  `json:"type"`
	Entries []Entry `json:"entries"`
	Entry   *Entry  `json:"entry"`
}

// Entry is one timeline entry: an item, a module of items, or a cursor.
type Entry struct {
	EntryID   string  `json:"entryId"`
	SortIndex string  `json:"sortIndex"`
	Content   Content `json:"content"`
}

// Content discriminates entry payloads by entryType/__typename.
type Content struct {
	EntryType   string          `json:"entryType"`
	TypeName    string          `json:"__typename"`
	ItemContent json.RawMessage `json:"itemContent"`
	Items       []ModuleItem    `json:"items"`
	Value       string          `json:"value"`
	CursorType  string          `json:"cursorType"`
}

// ModuleItem wraps an item nested inside a TimelineTimelineModule entry
// (conversation threads group replies this way).
type ModuleItem struct {
	EntryID string `json:"entryId"`
	Item    struct {
		ItemContent json.RawMessage `json:"itemContent"`
	} `json:"item"`
}

// Cursors holds the pagination tokens found in a timeline page. Bottom
// continues the listing; Top rewinds it. Either may be empty.
type Cursors struct {
	Bottom string
	Top    string
}

// itemEnvelope is the minimal shape needed to discriminate an item node.
type itemEnvelope struct {
	TypeName string `json:"__typename"`
}

// Collect walks tl and returns every item-content node whose __typename
// equals kind, plus the cursors present on the page. Malformed entries are
// skipped; an empty timeline yields (nil, Cursors{}).
func Collect(tl Timeline, kind Kind) ([]json.RawMessage, Cursors) {
	var items []json.RawMessage
	var cur Cursors

	for _, ins := range tl.Instructions {
		entries := ins.Entries
		if ins.Entry != nil {
			entries = append(entries, *ins.Entry)
		}
		for _, entry := range entries {
			if isCursor(entry) {
				recordCursor(entry, &cur)
				continue
			}
			if entry.Content.ItemContent != nil {
				if matches(entry.Content.ItemContent, kind) {
					items = append(items, entry.Content.ItemContent)
				}
				continue
			}
			for _, mi := range entry.Content.Items {
				if mi.Item.ItemContent == nil {
					continue
				}
				if content, ok := cursorContent(mi.Item.ItemContent); ok {
					recordCursor(Entry{EntryID: mi.EntryID, Content: content}, &cur)
					continue
				}
				if matches(mi.Item.ItemContent, kind) {
					items = append(items, mi.Item.ItemContent)
				}
			}
		}
	}
	return items, cur
}

func matches(raw json.RawMessage, kind Kind) bool {
	var env itemEnvelope
	if json.Unmarshal(raw, &env) != nil {
		return false
	}
	return env.TypeName == string(kind)
}

func isCursor(entry Entry) bool {
	return entry.Content.EntryType == "TimelineTimelineCursor" ||
		entry.Content.TypeName == "TimelineTimelineCursor"
}

// cursorContent decodes a module item node as a cursor. Conversation
// threads nest their continuation cursors inside the module entry.
func cursorContent(raw json.RawMessage) (Content, bool) {
	var c Content
	if json.Unmarshal(raw, &c) != nil {
		return Content{}, false
	}
	if c.TypeName != "TimelineTimelineCursor" && c.EntryType != "TimelineTimelineCursor" {
		return Content{}, false
	}
	return c, true
}

// recordCursor stores the cursor value by direction. Reply threads page
// with ShowMoreThreads cursors instead of Bottom, and some responses omit
// cursorType and only hint the direction in the entryId. An explicit
// Bottom cursor wins when a page carries both.
func recordCursor(entry Entry, cur *Cursors) {
	switch {
	case continuesListing(entry):
		if cur.Bottom == "" || entry.Content.CursorType == "Bottom" {
			cur.Bottom = entry.Content.Value
		}
	case entry.Content.CursorType == "Top", strings.Contains(entry.EntryID, "cursor-top"):
		cur.Top = entry.Content.Value
	}
}

// continuesListing reports whether a cursor advances the listing.
func continuesListing(entry Entry) bool {
	switch entry.Content.CursorType {
	case "Bottom", "ShowMoreThreads", "ShowMoreThreadsPrompt":
		return true
	}
	return strings.Contains(entry.EntryID, "cursor-bottom") ||
		strings.Contains(entry.EntryID, "cursor-showmore")
}

package domain

import "slices"

// Memo is a free-text note owned by a single user.
// TagIDs holds references to tags owned by the same user; the records
// themselves live in the tag collection and are joined on read.
type Memo struct {
	Timestamps
	ID       string   `json:"id"`
	OwnerID  string   `json:"user_id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	IsPublic bool     `json:"is_public"`
	TagIDs   []string `json:"tag_ids,omitempty"`
}

// HasTag reports whether the memo references the given tag.
func (m *Memo) HasTag(tagID string) bool {
	return slices.Contains(m.TagIDs, tagID)
}

// RemoveTag strips a tag reference from the memo, if present.
// Returns true if the reference was removed.
func (m *Memo) RemoveTag(tagID string) bool {
	before := len(m.TagIDs)
	m.TagIDs = slices.DeleteFunc(m.TagIDs, func(id string) bool {
		return id == tagID
	})
	return len(m.TagIDs) != before
}

// CanRead reports whether the given user may read the memo.
// Public memos are readable by any authenticated user; private memos
// only by their owner.
func (m *Memo) CanRead(userID string) bool {
	return m.IsPublic || m.OwnerID == userID
}

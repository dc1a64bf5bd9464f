package note

import (
	"errors"
	"time"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	IsPinned  bool      `json:"isPinned"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdOn"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("note not found")

type CreateNoteRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags" binding:"omitempty,dive,max=40"`
}

// UpdateNoteRequest is a patch: nil means the field was absent from the
// request body and must be left untouched.
type UpdateNoteRequest struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Tags     []string `json:"tags"`
	IsPinned *bool    `json:"isPinned"`
}

type SetPinnedRequest struct {
	// Absent or null coerces to false, matching the write-through semantics
	// of the pin toggle: the value is always applied.
	IsPinned bool `json:"isPinned"`
}

// ApplyPatch folds a patch into the note. Title and content are only applied
// when present and non-empty, so a caller cannot clear them through an
// update. Tags are applied whenever the field is present, pinned whenever it
// carries a boolean.
func (n *Note) ApplyPatch(p UpdateNoteRequest) {
	if p.Title != nil && *p.Title != "" {
		n.Title = *p.Title
	}

	if p.Content != nil && *p.Content != "" {
		n.Content = *p.Content
	}

	if p.Tags != nil {
		n.Tags = p.Tags
	}

	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
}

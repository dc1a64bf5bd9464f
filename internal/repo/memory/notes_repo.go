package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkpad/inkpad/internal/domain/note"
)

// NotesRepo is an in-memory note store with the same ownership semantics as
// the postgres repo: every lookup filters on id and owner together.
type NotesRepo struct {
	mu    sync.RWMutex
	items map[string]note.Note
}

func NewNotesRepo() *NotesRepo {
	return &NotesRepo{
		items: make(map[string]note.Note),
	}
}

func (r *NotesRepo) Create(ctx context.Context, ownerID string, req note.CreateNoteRequest) (note.Note, error) {
	now := time.Now().UTC()

	n := note.Note{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		IsPinned:  false,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if n.Tags == nil {
		n.Tags = []string{}
	}

	r.mu.Lock()
	r.items[n.ID] = n
	r.mu.Unlock()

	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id, ownerID string) (note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]

	if !ok || n.UserID != ownerID {
		return note.Note{}, note.ErrNotFound
	}

	return n, nil
}

func (r *NotesRepo) Update(ctx context.Context, n note.Note) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[n.ID]

	if !ok || existing.UserID != n.UserID {
		return note.Note{}, note.ErrNotFound
	}

	n.UpdatedAt = time.Now().UTC()
	r.items[n.ID] = n

	return n, nil
}

func (r *NotesRepo) SetPinned(ctx context.Context, id, ownerID string, pinned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]

	if !ok || n.UserID != ownerID {
		return note.ErrNotFound
	}

	n.IsPinned = pinned
	n.UpdatedAt = time.Now().UTC()
	r.items[id] = n

	return nil
}

func (r *NotesRepo) Delete(ctx context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]

	if !ok || n.UserID != ownerID {
		return note.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *NotesRepo) ListByOwner(ctx context.Context, ownerID string) ([]note.Note, error) {
	r.mu.RLock()
	out := make([]note.Note, 0)

	for _, n := range r.items {
		if n.UserID == ownerID {
			out = append(out, n)
		}
	}
	r.mu.RUnlock()

	sortPinnedFirst(out)

	return out, nil
}

func (r *NotesRepo) Search(ctx context.Context, ownerID, query string) ([]note.Note, error) {
	q := strings.ToLower(query)

	r.mu.RLock()
	out := make([]note.Note, 0)

	for _, n := range r.items {
		if n.UserID != ownerID {
			continue
		}

		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	r.mu.RUnlock()

	sortPinnedFirst(out)

	return out, nil
}

func sortPinnedFirst(notes []note.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}

		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}

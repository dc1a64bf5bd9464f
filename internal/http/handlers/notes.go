package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/domain/note"
	"github.com/inkpad/inkpad/internal/http/middlewares"
)

type NotesStore interface {
	Create(ctx context.Context, ownerID string, req note.CreateNoteRequest) (note.Note, error)
	GetByID(ctx context.Context, id, ownerID string) (note.Note, error)
	Update(ctx context.Context, n note.Note) (note.Note, error)
	SetPinned(ctx context.Context, id, ownerID string, pinned bool) error
	Delete(ctx context.Context, id, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]note.Note, error)
	Search(ctx context.Context, ownerID, query string) ([]note.Note, error)
}

// NotesHandler serves every note route. The owner always comes from the
// verified token, never from the request body or query, so one user can
// neither read nor touch another user's notes.
type NotesHandler struct {
	repo NotesStore
}

func NewNotesHandler(repo NotesStore) *NotesHandler {
	return &NotesHandler{repo: repo}
}

func (h *NotesHandler) AddNote(ctx *gin.Context) {
	owner, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	var req note.CreateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	n, err := h.repo.Create(cctx, owner, req)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, "Note added successfully.", gin.H{"note": n})
}

func (h *NotesHandler) EditNote(ctx *gin.Context) {
	owner, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "Note not found.")
		return
	}

	var patch note.UpdateNoteRequest

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// Owner-scoped lookup: a note that belongs to someone else and a note
	// that does not exist produce the same NotFound.
	n, err := h.repo.GetByID(cctx, id, owner)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	n.ApplyPatch(patch)

	updated, err := h.repo.Update(cctx, n)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, "Note updated successfully.", gin.H{"note": updated})
}

func (h *NotesHandler) UpdateNotePinned(ctx *gin.Context) {
	owner, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "Note not found")
		return
	}

	var req note.SetPinnedRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.SetPinned(cctx, id, owner, req.IsPinned)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, "Pinned status updated", nil)
}

func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	owner, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "Note not found.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id, owner)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, "Note deleted successfully", nil)
}

func (h *NotesHandler) GetAllNotes(ctx *gin.Context) {
	owner, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	notes, err := h.repo.ListByOwner(cctx, owner)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, "All notes fetched successfully.", gin.H{"notes": notes})
}

func (h *NotesHandler) SearchNotes(ctx *gin.Context) {
	owner, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	query := ctx.Query("query")

	if query == "" {
		RespondBadRequest(ctx, "Query is required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	notes, err := h.repo.Search(cctx, owner, query)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, "Matching notes found.", gin.H{"notes": notes})
}

func (h *NotesHandler) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, note.ErrNotFound):
		RespondNotFound(ctx, "Note not found.")
	case errors.Is(err, context.DeadlineExceeded):
		RespondTimeout(ctx)
	default:
		slog.Default().ErrorContext(ctx.Request.Context(), "note operation failed", "err", err)
		RespondInternal(ctx)
	}
}

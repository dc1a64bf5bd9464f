package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkpad/inkpad/internal/domain/note"
	"github.com/inkpad/inkpad/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotesRepo scopes every statement to the owning user: id and user_id are
// always filtered together, so a note that exists under another owner is
// indistinguishable from one that does not exist at all.
type NotesRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewNotesRepo(pool *pgxpool.Pool, metrics *observability.Prom) *NotesRepo {
	return &NotesRepo{pool: pool, metrics: metrics}
}

func (r *NotesRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveDB(op, fn)
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

	err := r.observe("notes_create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO notes(id, user_id, title, content, tags, is_pinned, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
			n.ID, n.UserID, n.Title, n.Content, n.Tags, n.IsPinned, n.CreatedAt, n.UpdatedAt)

		return err
	})

	if err != nil {
		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id, ownerID string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes_get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, user_id, title, content, tags, is_pinned, created_at, updated_at
			 FROM notes
			 WHERE id = $1 AND user_id = $2`,
			id, ownerID,
		).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Tags, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) Update(ctx context.Context, n note.Note) (note.Note, error) {
	err := r.observe("notes_update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE notes
				SET title = $3,
						content = $4,
						tags = $5,
						is_pinned = $6,
						updated_at = NOW()
			 WHERE id = $1 AND user_id = $2
			 RETURNING updated_at`,
			n.ID, n.UserID, n.Title, n.Content, n.Tags, n.IsPinned,
		).Scan(&n.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) SetPinned(ctx context.Context, id, ownerID string, pinned bool) error {
	var tag int64

	err := r.observe("notes_set_pinned", func() error {
		res, err := r.pool.Exec(ctx,
			`UPDATE notes SET is_pinned = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
			id, ownerID, pinned)

		if err != nil {
			return err
		}

		tag = res.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if tag == 0 {
		return note.ErrNotFound
	}

	return nil
}

func (r *NotesRepo) Delete(ctx context.Context, id, ownerID string) error {
	var tag int64

	err := r.observe("notes_delete", func() error {
		res, err := r.pool.Exec(ctx,
			`DELETE FROM notes WHERE id = $1 AND user_id = $2`,
			id, ownerID)

		if err != nil {
			return err
		}

		tag = res.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if tag == 0 {
		return note.ErrNotFound
	}

	return nil
}

// ListByOwner returns the owner's notes with pinned notes first. created_at
// is the tie-breaker so output order is stable across calls.
func (r *NotesRepo) ListByOwner(ctx context.Context, ownerID string) ([]note.Note, error) {
	return r.queryNotes(ctx, "notes_list",
		`SELECT id, user_id, title, content, tags, is_pinned, created_at, updated_at
		 FROM notes
		 WHERE user_id = $1
		 ORDER BY is_pinned DESC, created_at DESC`,
		ownerID)
}

// Search matches the query as a case-insensitive substring of title or
// content, scoped to the owner.
func (r *NotesRepo) Search(ctx context.Context, ownerID, query string) ([]note.Note, error) {
	pattern := "%" + escapeLike(query) + "%"

	return r.queryNotes(ctx, "notes_search",
		`SELECT id, user_id, title, content, tags, is_pinned, created_at, updated_at
		 FROM notes
		 WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2)
		 ORDER BY is_pinned DESC, created_at DESC`,
		ownerID, pattern)
}

func (r *NotesRepo) queryNotes(ctx context.Context, op, query string, args ...interface{}) ([]note.Note, error) {
	output := make([]note.Note, 0)

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var n note.Note

			err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Tags, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt)

			if err != nil {
				return err
			}

			output = append(output, n)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// escapeLike neutralizes LIKE metacharacters so the user's query is treated
// as a literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/cache"
	"github.com/inkpad/inkpad/internal/domain/user"
	"github.com/inkpad/inkpad/internal/http/handlers"
	"github.com/inkpad/inkpad/internal/http/middlewares"
	"github.com/inkpad/inkpad/internal/repo/memory"
	"github.com/inkpad/inkpad/internal/security"
)

type testEnv struct {
	router *gin.Engine
	users  *memory.UsersRepo
	notes  *memory.NotesRepo
	jwt    *auth.Manager
}

// newTestEnv wires the real handlers and auth middleware over the in-memory
// repos, mirroring the production routes.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUsersRepo()
	notes := memory.NewNotesRepo()
	jwtManager := auth.NewManager("test-secret", time.Hour)

	authMW := middlewares.NewAuthMiddleware(jwtManager)
	authHandler := handlers.NewAuthHandler(users, jwtManager, cache.New(time.Minute))
	notesHandler := handlers.NewNotesHandler(notes)

	r := gin.New()

	r.POST("/create-account", authHandler.SignUp)
	r.POST("/login", authHandler.Login)

	protected := r.Group("/", authMW.RequireAuth())
	protected.GET("/get-user", authHandler.GetUser)
	protected.POST("/add-note", notesHandler.AddNote)
	protected.PUT("/edit-note/:id", notesHandler.EditNote)
	protected.PUT("/update-note-pinned/:id", notesHandler.UpdateNotePinned)
	protected.DELETE("/delete-note/:id", notesHandler.DeleteNote)
	protected.GET("/get-all-notes", notesHandler.GetAllNotes)
	protected.GET("/search-notes", notesHandler.SearchNotes)

	return &testEnv{router: r, users: users, notes: notes, jwt: jwtManager}
}

// registerUser seeds a user directly and returns it with a valid token,
// skipping the HTTP signup round-trip.
func (e *testEnv) registerUser(t *testing.T, fullName, email, password string) (user.User, string) {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	u, err := e.users.Create(context.Background(), fullName, email, hash)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := e.jwt.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	return u, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

type envelope struct {
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Token   string          `json:"accessToken"`
	Email   string          `json:"email"`
	User    json.RawMessage `json:"user"`
	Note    noteBody        `json:"note"`
	Notes   []noteBody      `json:"notes"`
}

type noteBody struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	IsPinned bool     `json:"isPinned"`
	UserID   string   `json:"userId"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, w.Body.String())
	}

	return env
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

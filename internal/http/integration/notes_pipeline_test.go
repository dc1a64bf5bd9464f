package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/db"
	apphttp "github.com/inkpad/inkpad/internal/http"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		Port:                0,
		JWTSecret:           "test-secret-key",
		JWTTTLMinutes:       60,
		AuthRateLimit:       1000,
		AuthRateLimitWindow: time.Minute,
	}
}

// setupRouter runs the embedded migrations against TEST_DB_DSN and wires the
// full production router over it. Skipped when no test database is available.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping integration test")
	}

	ctx := context.Background()

	if err := db.RunMigrations(ctx, dsn); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	cfg := testConfig()

	return apphttp.NewRouter(nil, pool, nil, cfg, prometheus.NewRegistry())
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	r.ServeHTTP(w, req)

	return w
}

type payload struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Token   string `json:"accessToken"`
	Note    struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Tags     []string `json:"tags"`
		IsPinned bool     `json:"isPinned"`
	} `json:"note"`
	Notes []struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		IsPinned bool   `json:"isPinned"`
	} `json:"notes"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) payload {
	t.Helper()

	var p payload
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode response: %v body=%s", err, w.Body.String())
	}

	return p
}

func TestPipeline_SignupLoginNotesAndPinning(t *testing.T) {
	r := setupRouter(t)

	email := fmt.Sprintf("a+%s@x.com", uuid.NewString())

	// register
	w := doJSON(t, r, http.MethodPost, "/create-account", "", map[string]string{
		"fullName": "A",
		"email":    email,
		"password": "pw123456",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: got %d body=%s", w.Code, w.Body.String())
	}
	if decode(t, w).Token == "" {
		t.Fatal("signup should return a token")
	}

	// duplicate registration conflicts, enforced by the unique index
	w = doJSON(t, r, http.MethodPost, "/create-account", "", map[string]string{
		"fullName": "A",
		"email":    email,
		"password": "pw123456",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: got %d body=%s", w.Code, w.Body.String())
	}

	// login
	w = doJSON(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "pw123456",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d body=%s", w.Code, w.Body.String())
	}
	token := decode(t, w).Token

	// add note
	w = doJSON(t, r, http.MethodPost, "/add-note", token, map[string]interface{}{
		"title":   "t",
		"content": "c",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add-note: got %d body=%s", w.Code, w.Body.String())
	}

	first := decode(t, w).Note
	if first.IsPinned || len(first.Tags) != 0 {
		t.Fatalf("fresh note should be unpinned with no tags: %+v", first)
	}

	// pin it, then add a second unpinned note
	w = doJSON(t, r, http.MethodPut, "/update-note-pinned/"+first.ID, token, map[string]interface{}{
		"isPinned": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("pin: got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/add-note", token, map[string]interface{}{
		"title":   "second",
		"content": "unpinned",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("second add-note: got %d body=%s", w.Code, w.Body.String())
	}

	// pinned note leads the listing
	w = doJSON(t, r, http.MethodGet, "/get-all-notes", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get-all-notes: got %d body=%s", w.Code, w.Body.String())
	}

	notes := decode(t, w).Notes
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID != first.ID || !notes[0].IsPinned {
		t.Fatalf("pinned note must come first: %+v", notes)
	}

	// search finds it, scoped and case-insensitive
	w = doJSON(t, r, http.MethodGet, "/search-notes?query=SECOND", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: got %d body=%s", w.Code, w.Body.String())
	}

	found := decode(t, w).Notes
	if len(found) != 1 || found[0].Title != "second" {
		t.Fatalf("unexpected search result: %+v", found)
	}
}

package handlers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestSignUp_MissingFieldsRejected(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{},
		{"email": "a@x.com", "password": "pw123456"},
		{"fullName": "A", "password": "pw123456"},
		{"fullName": "A", "email": "a@x.com"},
	}

	for _, body := range cases {
		w := env.do(t, http.MethodPost, "/create-account", "", body)
		requireStatus(t, w, http.StatusBadRequest)

		resp := decodeEnvelope(t, w)
		if !resp.Error {
			t.Fatalf("error flag should be set, body=%s", w.Body.String())
		}
	}
}

func TestSignUpThenLogin_TokenResolvesToCreatedUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/create-account", "", map[string]string{
		"fullName": "A",
		"email":    "a@x.com",
		"password": "pw123456",
	})
	requireStatus(t, w, http.StatusCreated)

	created := decodeEnvelope(t, w)
	if created.Error || created.Token == "" {
		t.Fatalf("signup should return a token, body=%s", w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "pw123456",
	})
	requireStatus(t, w, http.StatusOK)

	logged := decodeEnvelope(t, w)
	if logged.Error || logged.Token == "" {
		t.Fatalf("login should return a token, body=%s", w.Body.String())
	}
	if logged.Email != "a@x.com" {
		t.Fatalf("login should echo the email, got %q", logged.Email)
	}

	// both tokens must resolve to the same stored user
	claims, err := env.jwt.Verify(logged.Token)
	if err != nil {
		t.Fatalf("verify login token: %v", err)
	}

	signupClaims, err := env.jwt.Verify(created.Token)
	if err != nil {
		t.Fatalf("verify signup token: %v", err)
	}

	if claims.UserID != signupClaims.UserID {
		t.Fatalf("token claims diverge: %q vs %q", claims.UserID, signupClaims.UserID)
	}
}

func TestSignUp_DuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{
		"fullName": "A",
		"email":    "a@x.com",
		"password": "pw123456",
	}

	w := env.do(t, http.MethodPost, "/create-account", "", body)
	requireStatus(t, w, http.StatusCreated)

	w = env.do(t, http.MethodPost, "/create-account", "", body)
	requireStatus(t, w, http.StatusConflict)

	resp := decodeEnvelope(t, w)
	if !resp.Error || resp.Message != "User already exists" {
		t.Fatalf("unexpected conflict envelope: %s", w.Body.String())
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "pw123456",
	})
	requireStatus(t, w, http.StatusBadRequest)

	resp := decodeEnvelope(t, w)
	if resp.Message != "User not found." {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "A", "a@x.com", "pw123456")

	w := env.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "not-the-password",
	})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestGetUser_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/get-user", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.do(t, http.MethodGet, "/get-user", "not-a-token", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestGetUser_ReturnsRedactedProfile(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.registerUser(t, "A", "a@x.com", "pw123456")

	w := env.do(t, http.MethodGet, "/get-user", token, nil)
	requireStatus(t, w, http.StatusOK)

	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("profile payload must not mention the password: %s", w.Body.String())
	}

	resp := decodeEnvelope(t, w)

	var profile struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(resp.User, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}

	if profile.ID != u.ID || profile.FullName != "A" || profile.Email != "a@x.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestGetUser_StaleTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	// token for an id that was never registered
	token, err := env.jwt.Issue("ghost-user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	w := env.do(t, http.MethodGet, "/get-user", token, nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpad/inkpad/internal/cache"
	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/domain/user"
	"github.com/inkpad/inkpad/internal/http/middlewares"
	"github.com/inkpad/inkpad/internal/security"
)

type UsersStore interface {
	Create(ctx context.Context, fullName, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthHandler struct {
	users UsersStore
	jwt   TokenIssuer
	// Users are immutable once registered, so a short-TTL profile cache
	// never serves stale data.
	profiles *cache.Cache
}

func NewAuthHandler(users UsersStore, jwt TokenIssuer, profiles *cache.Cache) *AuthHandler {
	return &AuthHandler{
		users:    users,
		jwt:      jwt,
		profiles: profiles,
	}
}

// SignUp handles POST /create-account. The duplicate-email check is atomic:
// the store's insert either wins or reports the email as taken, so two
// concurrent registrations cannot both succeed.
func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	u, err := h.users.Create(cctx, req.FullName, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "User already exists")
			return
		}

		h.fail(ctx, err)
		return
	}

	accessToken, err := h.jwt.Issue(u.ID)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	RespondOK(ctx, http.StatusCreated, "Account created successfully", gin.H{
		"accessToken": accessToken,
	})
}

// Login handles POST /login. An unknown email and a wrong password are
// reported differently (400 vs 401), matching what the frontend expects.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondBadRequest(ctx, "User not found.", nil)
			return
		}

		h.fail(ctx, err)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials.")
		return
	}

	accessToken, err := h.jwt.Issue(foundUser.ID)

	if err != nil {
		RespondInternal(ctx)
		return
	}

	RespondOK(ctx, http.StatusOK, "Login successful.", gin.H{
		"email":       foundUser.Email,
		"accessToken": accessToken,
	})
}

// GetUser handles GET /get-user. A token whose claim no longer resolves to a
// user is treated the same as no token at all.
func (h *AuthHandler) GetUser(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Unauthorized")
		return
	}

	if h.profiles != nil {
		if v, hit := h.profiles.Get("profile:" + userID); hit {
			if u, ok := v.(user.User); ok {
				RespondOK(ctx, http.StatusOK, "", gin.H{"user": u})
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "Unauthorized")
			return
		}

		h.fail(ctx, err)
		return
	}

	if h.profiles != nil {
		h.profiles.Set("profile:"+userID, u)
	}

	RespondOK(ctx, http.StatusOK, "", gin.H{"user": u})
}

func (h *AuthHandler) fail(ctx *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		RespondTimeout(ctx)
		return
	}

	slog.Default().ErrorContext(ctx.Request.Context(), "auth operation failed", "err", err)
	RespondInternal(ctx)
}

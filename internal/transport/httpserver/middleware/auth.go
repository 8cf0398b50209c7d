package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"family-finance-go/internal/auth"
	"family-finance-go/internal/config"
	"family-finance-go/pkg/logger"
)

type userContextKey struct{}

// User is the authenticated caller. Family roles are resolved per request by
// the family service, not carried in the token.
type User struct {
	ID    string
	Email string
	Name  string
}

// TokenValidator is satisfied by *auth.JWTManager.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// ProfileSaver records the authenticated user so ledger rows can reference it.
type ProfileSaver interface {
	UpsertProfile(ctx context.Context, userID, email, fullName string) error
}

var (
	errNotConfigured = errors.New("auth not configured")
	errNoBearer      = errors.New("missing bearer token")
)

type JWTAuth struct {
	tokens   TokenValidator
	profiles ProfileSaver
	// devUser is used for every request when auth is skipped.
	devUser *User
	log     logger.Logger
}

func NewJWTAuth(cfg config.AuthConfig, tokens TokenValidator, profiles ProfileSaver, log logger.Logger) *JWTAuth {
	if log == nil {
		log = logger.NewNop()
	}
	a := &JWTAuth{tokens: tokens, profiles: profiles, log: log}
	if cfg.SkipAuth {
		a.devUser = &User{
			ID:    strings.TrimSpace(cfg.MockUserID),
			Email: strings.TrimSpace(cfg.MockUserEmail),
			Name:  strings.TrimSpace(cfg.MockUserName),
		}
	}
	return a
}

func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		switch {
		case errors.Is(err, errNotConfigured):
			a.log.Error("auth: rejecting request", "err", err, "path", r.URL.Path)
			writeError(w, http.StatusInternalServerError, "auth_not_configured", err.Error())
			return
		case err != nil:
			a.log.BusinessError("auth.validate: token rejected", err, "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}

		if a.profiles != nil {
			if err := a.profiles.UpsertProfile(r.Context(), user.ID, user.Email, user.Name); err != nil {
				a.log.InternalError("auth.upsert_profile: upsert failed", err, "user_id", user.ID)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (a *JWTAuth) authenticate(r *http.Request) (User, error) {
	if a.devUser != nil {
		if a.devUser.ID == "" {
			return User{}, errNotConfigured
		}
		return *a.devUser, nil
	}
	if a.tokens == nil {
		return User{}, errNotConfigured
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return User{}, errNoBearer
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		return User{}, err
	}
	return User{ID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey{}).(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclink/internal/access"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/requestcontext"
)

type stubValidator struct {
	claims *TokenClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*TokenClaims, error) { return v.claims, v.err }

type stubResolver struct {
	identity *access.Identity
	err      error
}

func (r stubResolver) ResolveIdentity(context.Context, id.UserID) (*access.Identity, error) {
	return r.identity, r.err
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// echoIdentity records the identity the handler saw.
func echoIdentity(seen **access.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := access.FromContext(r.Context())
		*seen = identity
		w.WriteHeader(http.StatusOK)
	})
}

func serve(mw func(http.Handler) http.Handler, next http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	userID := id.UserID(uuid.New())
	identity := &access.Identity{UserID: userID, Role: access.RoleCitizen, Status: access.StatusActive}
	validator := stubValidator{claims: &TokenClaims{UserID: userID, Role: "citizen"}}

	t.Run("valid token resolves identity", func(t *testing.T) {
		var seen *access.Identity
		rec := serve(RequireAuth(validator, stubResolver{identity: identity}, discard), echoIdentity(&seen), "tok")
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, userID, seen.UserID)
	})

	t.Run("missing token", func(t *testing.T) {
		var seen *access.Identity
		rec := serve(RequireAuth(validator, stubResolver{identity: identity}, discard), echoIdentity(&seen), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
		assert.Nil(t, seen)
	})

	t.Run("invalid token", func(t *testing.T) {
		var seen *access.Identity
		mw := RequireAuth(stubValidator{err: errors.New("expired")}, stubResolver{identity: identity}, discard)
		rec := serve(mw, echoIdentity(&seen), "tok")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deleted subject", func(t *testing.T) {
		var seen *access.Identity
		mw := RequireAuth(validator, stubResolver{err: dErrors.New(dErrors.CodeNotFound, "user not found")}, discard)
		rec := serve(mw, echoIdentity(&seen), "tok")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("resolver failure", func(t *testing.T) {
		var seen *access.Identity
		mw := RequireAuth(validator, stubResolver{err: errors.New("db down")}, discard)
		rec := serve(mw, echoIdentity(&seen), "tok")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}

func TestOptionalAuth(t *testing.T) {
	userID := id.UserID(uuid.New())
	identity := &access.Identity{UserID: userID, Role: access.RoleGovernment, Status: access.StatusActive}
	validator := stubValidator{claims: &TokenClaims{UserID: userID}}

	t.Run("anonymous passes through", func(t *testing.T) {
		var seen *access.Identity
		rec := serve(OptionalAuth(validator, stubResolver{identity: identity}, discard), echoIdentity(&seen), "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("token is still resolved", func(t *testing.T) {
		var seen *access.Identity
		rec := serve(OptionalAuth(validator, stubResolver{identity: identity}, discard), echoIdentity(&seen), "tok")
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, access.RoleGovernment, seen.Role)
	})

	t.Run("bad token is rejected", func(t *testing.T) {
		var seen *access.Identity
		mw := OptionalAuth(stubValidator{err: errors.New("bad signature")}, stubResolver{}, discard)
		rec := serve(mw, echoIdentity(&seen), "tok")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", got)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "req-123", got)
}

func TestRecovery(t *testing.T) {
	h := Recovery(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestContentTypeJSON(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := ContentTypeJSON(ok)

	req := httptest.NewRequest(http.MethodPost, "/issues", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/issues", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/issues/1/verify", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

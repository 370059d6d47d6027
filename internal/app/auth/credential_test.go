package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/user"
	"dmchat/internal/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCredentialFromRequestPrecedence(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	req.Empty(auth.CredentialFromRequest(r, false))
	req.Equal("from-query", auth.CredentialFromRequest(r, true))

	r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "from-cookie"})
	req.Equal("from-cookie", auth.CredentialFromRequest(r, true))

	r.Header.Set("Authorization", "Bearer from-header")
	req.Equal("from-header", auth.CredentialFromRequest(r, true))

	r.Header.Set("Authorization", "Basic abc")
	req.Equal("from-cookie", auth.CredentialFromRequest(r, true))
}

func TestSessionCookie(t *testing.T) {
	req := require.New(t)

	rec := httptest.NewRecorder()
	auth.SetSessionCookie(rec, "tok", time.Hour, true)
	cookie := rec.Result().Cookies()[0]
	req.Equal(auth.CookieName, cookie.Name)
	req.Equal("tok", cookie.Value)
	req.True(cookie.HttpOnly)
	req.True(cookie.Secure)
	req.Equal(http.SameSiteNoneMode, cookie.SameSite)
	req.Equal(3600, cookie.MaxAge)

	rec = httptest.NewRecorder()
	auth.ClearSessionCookie(rec, false)
	cookie = rec.Result().Cookies()[0]
	req.Empty(cookie.Value)
	req.Equal(-1, cookie.MaxAge)
}

func TestRequireIdentity(t *testing.T) {
	req := require.New(t)
	users := mocks.NewMockUserRepository(gomock.NewController(t))
	verifier := auth.NewVerifier(users, testSecret)

	users.EXPECT().FindByID(gomock.Any(), "u1").Return(user.User{ID: "u1", Name: "Alice"}, nil)

	var seen user.User
	handler := auth.RequireIdentity(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.IdentityFrom(r.Context())
		req.True(ok)
		seen = u
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	req.Equal(http.StatusUnauthorized, rec.Code)
	req.Contains(rec.Body.String(), "Token missing")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signedToken(t, "u1", time.Hour))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	req.Equal(http.StatusNoContent, rec.Code)
	req.Equal("Alice", seen.Name)

	_, ok := auth.IdentityFrom(context.Background())
	req.False(ok)
}

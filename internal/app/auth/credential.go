package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	// CookieName is the HTTP-only cookie carrying the session token.
	CookieName = "jwt"

	// QueryTokenParam carries the token on websocket handshakes from browsers,
	// which cannot set headers on the upgrade request.
	QueryTokenParam = "token"
)

// CredentialFromRequest extracts the session token from the Authorization bearer header,
// then the jwt cookie, then (when allowQuery is set) the token query parameter.
// It returns an empty string when none is present.
func CredentialFromRequest(r *http.Request, allowQuery bool) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if allowQuery {
		return r.URL.Query().Get(QueryTokenParam)
	}

	return ""
}

// SetSessionCookie writes the session cookie. Secure cookies use SameSite=None so
// a frontend on another origin keeps sending them.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite(secure),
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite(secure),
	})
}

func sameSite(secure bool) http.SameSite {
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

package auth

import (
	"context"
	"net/http"

	"dmchat/internal/app/user"
	"dmchat/internal/pkg/resp"
)

type contextKey string

// ContextIdentityKey stores the verified user in the request context.
const ContextIdentityKey contextKey = "identity"

// RequireIdentity rejects requests without a valid credential and injects the
// verified user into the request context.
func RequireIdentity(v *Verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := v.Verify(r.Context(), CredentialFromRequest(r, false))
			if err != nil {
				resp.RespondError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying u.
func WithIdentity(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, u)
}

// IdentityFrom returns the verified user stored by RequireIdentity.
func IdentityFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ContextIdentityKey).(user.User)
	return u, ok
}

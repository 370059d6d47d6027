package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"

	"golang.org/x/sync/singleflight"
)

// lookupTimeout bounds a shared identity lookup, which no single caller can cancel.
const lookupTimeout = 5 * time.Second

// Verifier resolves a bearer credential to the user it was issued to.
type Verifier struct {
	users  user.Repository
	secret string

	// lookups collapses concurrent identity reads for the same user,
	// e.g. a client reconnecting while its REST calls are in flight.
	lookups singleflight.Group
}

// NewVerifier constructs a Verifier checking tokens signed with secret.
func NewVerifier(users user.Repository, secret string) *Verifier {
	return &Verifier{users: users, secret: secret}
}

// Verify validates credential and loads its user. Failures carry one of
// ErrMissingCredential, ErrInvalidCredential, ErrExpiredCredential or ErrIdentityNotFound;
// a failing user store yields ErrStorageFailed. A caller whose ctx ends stops waiting
// without failing the other callers sharing its lookup.
func (v *Verifier) Verify(ctx context.Context, credential string) (user.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return user.User{}, errs.NewError(errs.ErrMissingCredential)
	}

	payload, err := jwt.ParseToken(credential, v.secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return user.User{}, errs.Wrap(errs.ErrExpiredCredential, err)
		}
		return user.User{}, errs.Wrap(errs.ErrInvalidCredential, err)
	}

	lookup := v.lookups.DoChan(payload.ID, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return v.users.FindByID(lookupCtx, payload.ID)
	})

	var res singleflight.Result
	select {
	case res = <-lookup:
	case <-ctx.Done():
		return user.User{}, errs.Wrap(errs.ErrStorageFailed, ctx.Err())
	}

	if res.Err != nil {
		if errors.Is(res.Err, user.ErrNotFound) {
			return user.User{}, errs.NewError(errs.ErrIdentityNotFound)
		}
		return user.User{}, errs.Wrap(errs.ErrStorageFailed, res.Err)
	}

	return res.Val.(user.User), nil
}

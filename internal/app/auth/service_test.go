package auth_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/kv"
	"dmchat/internal/pkg/errs"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*auth.Service, *auth.Verifier) {
	t.Helper()

	store, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	users := kv.NewUserRepository(store)
	return auth.NewService(users, testSecret, time.Hour), auth.NewVerifier(users, testSecret)
}

func TestSignupIssuesVerifiableToken(t *testing.T) {
	req := require.New(t)
	service, verifier := newService(t)
	ctx := context.Background()

	session, err := service.Signup(ctx, auth.SignupInput{Name: " Alice ", Email: "Alice@Example.com", Password: "secret1"})
	req.NoError(err)
	req.Equal("Alice", session.User.Name)
	req.Equal("alice@example.com", session.User.Email)
	req.NotEmpty(session.Token)
	req.NotEqual("secret1", session.User.PasswordHash)

	u, err := verifier.Verify(ctx, session.Token)
	req.NoError(err)
	req.Equal(session.User.ID, u.ID)
}

func TestSignupValidation(t *testing.T) {
	service, _ := newService(t)

	tests := []struct {
		name string
		in   auth.SignupInput
	}{
		{name: "missing name", in: auth.SignupInput{Email: "a@example.com", Password: "secret1"}},
		{name: "bad email", in: auth.SignupInput{Name: "A", Email: "nope", Password: "secret1"}},
		{name: "short password", in: auth.SignupInput{Name: "A", Email: "a@example.com", Password: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Signup(context.Background(), tt.in)
			require.True(t, errs.HasCode(err, errs.ErrInvalidSignup), "got %v", err)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	req := require.New(t)
	service, _ := newService(t)
	ctx := context.Background()

	_, err := service.Signup(ctx, auth.SignupInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	req.NoError(err)

	_, err = service.Signup(ctx, auth.SignupInput{Name: "Other", Email: "ALICE@example.com", Password: "secret2"})
	req.True(errs.HasCode(err, errs.ErrUserAlreadyExists))
}

func TestLogin(t *testing.T) {
	req := require.New(t)
	service, _ := newService(t)
	ctx := context.Background()

	signed, err := service.Signup(ctx, auth.SignupInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	req.NoError(err)

	session, err := service.Login(ctx, auth.LoginInput{Email: "ALICE@example.com ", Password: "secret1"})
	req.NoError(err)
	req.Equal(signed.User.ID, session.User.ID)

	_, err = service.Login(ctx, auth.LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	req.True(errs.HasCode(err, errs.ErrInvalidCredentials))

	_, err = service.Login(ctx, auth.LoginInput{Email: "nobody@example.com", Password: "secret1"})
	req.True(errs.HasCode(err, errs.ErrInvalidCredentials))

	_, err = service.Login(ctx, auth.LoginInput{Email: "alice@example.com"})
	req.True(errs.HasCode(err, errs.ErrInvalidLoginInput))
	req.False(errs.HasCode(err, errs.ErrInvalidSignup))
}

func TestSignupConflictLogOmitsEmail(t *testing.T) {
	req := require.New(t)

	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	service, _ := newService(t)
	ctx := context.Background()

	_, err := service.Signup(ctx, auth.SignupInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	req.NoError(err)
	_, err = service.Signup(ctx, auth.SignupInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	req.True(errs.HasCode(err, errs.ErrUserAlreadyExists))

	req.Contains(buf.String(), "Signup conflict")
	req.NotContains(buf.String(), "alice@example.com")
}

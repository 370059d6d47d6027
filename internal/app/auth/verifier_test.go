package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/user"
	"dmchat/internal/mocks"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, id string, ttl time.Duration) string {
	t.Helper()
	token, err := jwt.GenerateToken(&jwt.Payload{ID: id}, testSecret, ttl)
	require.NoError(t, err)
	return token
}

func TestVerifyResolvesIdentity(t *testing.T) {
	req := require.New(t)
	users := mocks.NewMockUserRepository(gomock.NewController(t))
	verifier := auth.NewVerifier(users, testSecret)

	users.EXPECT().FindByID(gomock.Any(), "u1").Return(user.User{ID: "u1", Name: "Alice"}, nil)

	u, err := verifier.Verify(context.Background(), signedToken(t, "u1", time.Hour))
	req.NoError(err)
	req.Equal("Alice", u.Name)
}

func TestVerifyFailureKinds(t *testing.T) {
	users := mocks.NewMockUserRepository(gomock.NewController(t))
	verifier := auth.NewVerifier(users, testSecret)

	otherSecret, err := jwt.GenerateToken(&jwt.Payload{ID: "u1"}, "other-secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		credential string
		code       int
	}{
		{name: "missing", credential: "   ", code: errs.ErrMissingCredential},
		{name: "garbage", credential: "not-a-token", code: errs.ErrInvalidCredential},
		{name: "wrong signature", credential: otherSecret, code: errs.ErrInvalidCredential},
		{name: "expired", credential: signedToken(t, "u1", -time.Hour), code: errs.ErrExpiredCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			_, err := verifier.Verify(context.Background(), tt.credential)
			req.True(errs.HasCode(err, tt.code), "got %v", err)
			req.Equal(errs.KindAuth, errs.KindOf(err))
			req.Equal(401, errs.From(err).Status)
		})
	}
}

func TestVerifyDeletedUser(t *testing.T) {
	req := require.New(t)
	users := mocks.NewMockUserRepository(gomock.NewController(t))
	verifier := auth.NewVerifier(users, testSecret)

	users.EXPECT().FindByID(gomock.Any(), "gone").Return(user.User{}, user.ErrNotFound)

	_, err := verifier.Verify(context.Background(), signedToken(t, "gone", time.Hour))
	req.True(errs.HasCode(err, errs.ErrIdentityNotFound))
	req.Equal(404, errs.From(err).Status)
}

func TestVerifyStoreFailure(t *testing.T) {
	req := require.New(t)
	users := mocks.NewMockUserRepository(gomock.NewController(t))
	verifier := auth.NewVerifier(users, testSecret)

	users.EXPECT().FindByID(gomock.Any(), "u1").Return(user.User{}, errors.New("connection refused"))

	_, err := verifier.Verify(context.Background(), signedToken(t, "u1", time.Hour))
	req.True(errs.HasCode(err, errs.ErrStorageFailed))
	req.Equal(errs.KindStorage, errs.KindOf(err))
}

func TestVerifyConcurrentCallers(t *testing.T) {
	req := require.New(t)
	users := mocks.NewMockUserRepository(gomock.NewController(t))
	verifier := auth.NewVerifier(users, testSecret)

	users.EXPECT().FindByID(gomock.Any(), "u1").
		DoAndReturn(func(context.Context, string) (user.User, error) {
			time.Sleep(10 * time.Millisecond)
			return user.User{ID: "u1"}, nil
		}).
		MinTimes(1).MaxTimes(8)

	token := signedToken(t, "u1", time.Hour)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = verifier.Verify(context.Background(), token)
		}(i)
	}
	wg.Wait()

	for _, err := range results {
		req.NoError(err)
	}
}

func TestVerifyCancelledCallerDoesNotFailOthers(t *testing.T) {
	req := require.New(t)
	users := mocks.NewMockUserRepository(gomock.NewController(t))
	verifier := auth.NewVerifier(users, testSecret)

	started := make(chan struct{}, 2)
	release := make(chan struct{})

	users.EXPECT().FindByID(gomock.Any(), "u1").
		DoAndReturn(func(ctx context.Context, id string) (user.User, error) {
			started <- struct{}{}
			select {
			case <-ctx.Done():
				return user.User{}, ctx.Err()
			case <-release:
				return user.User{ID: id}, nil
			}
		}).
		MinTimes(1).MaxTimes(2)

	token := signedToken(t, "u1", time.Hour)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := verifier.Verify(firstCtx, token)
		firstErr <- err
	}()
	<-started

	type result struct {
		u   user.User
		err error
	}
	second := make(chan result, 1)
	go func() {
		u, err := verifier.Verify(context.Background(), token)
		second <- result{u, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting on the shared lookup")
	}

	close(release)
	select {
	case res := <-second:
		req.NoError(res.err)
		req.Equal("u1", res.u.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never returned")
	}
}

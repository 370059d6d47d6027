package db

import (
	"context"
	"os"
	"testing"
	"time"

	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/randx"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to the database named by DMCHAT_TEST_DATABASE_URL, migrating it,
// and skips the test when the variable is unset.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DMCHAT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("DMCHAT_TEST_DATABASE_URL not set")
	}

	pool, err := NewPool(context.Background(), dsn)
	require.NoError(t, err)

	_, err = pool.Exec(context.Background(), `TRUNCATE messages, users`)
	require.NoError(t, err)

	t.Cleanup(pool.Close)
	return pool
}

func TestUserRepository(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	repo := NewUserRepository(newTestPool(t))

	alice, err := repo.Create(ctx, user.NewUser{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"})
	req.NoError(err)
	req.True(randx.IsValidID(alice.ID))

	_, err = repo.Create(ctx, user.NewUser{Name: "Other", Email: "ALICE@example.com", PasswordHash: "h"})
	req.ErrorIs(err, user.ErrEmailTaken)

	found, err := repo.FindByEmail(ctx, "Alice@Example.com")
	req.NoError(err)
	req.Equal(alice.ID, found.ID)

	_, err = repo.FindByID(ctx, "not-a-uuid")
	req.ErrorIs(err, user.ErrNotFound)

	pic := "https://cdn.example.com/a.png"
	updated, err := repo.UpdateProfile(ctx, alice.ID, user.ProfileUpdate{ProfilePic: &pic})
	req.NoError(err)
	req.Equal("Alice", updated.Name)
	req.Equal(pic, updated.ProfilePic)

	bob, err := repo.Create(ctx, user.NewUser{Name: "Bob", Email: "bob@example.com", PasswordHash: "h"})
	req.NoError(err)

	others, err := repo.ListExcept(ctx, alice.ID)
	req.NoError(err)
	req.Len(others, 1)
	req.Equal(bob.ID, others[0].ID)
}

func TestMessageRepositoryOrdering(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	pool := newTestPool(t)
	users := NewUserRepository(pool)
	msgs := NewMessageRepository(pool)

	a, err := users.Create(ctx, user.NewUser{Name: "A", Email: "a@example.com", PasswordHash: "h"})
	req.NoError(err)
	b, err := users.Create(ctx, user.NewUser{Name: "B", Email: "b@example.com", PasswordHash: "h"})
	req.NoError(err)

	var ids []string
	for i, nm := range []message.NewMessage{
		{SenderID: a.ID, ReceiverID: b.ID, Text: "one"},
		{SenderID: b.ID, ReceiverID: a.ID, Text: "two"},
		{SenderID: a.ID, ReceiverID: b.ID, Image: "https://cdn.example.com/3.png"},
	} {
		id, err := msgs.Insert(ctx, nm)
		req.NoError(err, i)
		ids = append(ids, id)
		time.Sleep(time.Millisecond)
	}

	populated, err := msgs.FindPopulated(ctx, ids[1])
	req.NoError(err)
	req.Equal("B", populated.Sender.Name)
	req.Equal("A", populated.Receiver.Name)

	list, err := msgs.ListBetween(ctx, b.ID, a.ID)
	req.NoError(err)
	req.Len(list, 3)
	for i, m := range list {
		req.Equal(ids[i], m.ID)
	}

	_, err = msgs.FindPopulated(ctx, randx.NewID())
	req.ErrorIs(err, message.ErrNotFound)
}

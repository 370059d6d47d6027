package kv

import (
	"context"
	"testing"

	"dmchat/internal/app/message"
	"dmchat/internal/app/user"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestUserRepository(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	repo := NewUserRepository(openTestStore(t))

	bob, err := repo.Create(ctx, user.NewUser{Name: "Bob", Email: "bob@example.com", PasswordHash: "hash"})
	req.NoError(err)
	req.NotEmpty(bob.ID)
	req.False(bob.CreatedAt.IsZero())

	_, err = repo.Create(ctx, user.NewUser{Name: "Bobby", Email: "BOB@example.com", PasswordHash: "hash"})
	req.ErrorIs(err, user.ErrEmailTaken)

	alice, err := repo.Create(ctx, user.NewUser{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"})
	req.NoError(err)

	found, err := repo.FindByEmail(ctx, "Alice@Example.com")
	req.NoError(err)
	req.Equal(alice.ID, found.ID)
	req.Equal("hash", found.PasswordHash)

	_, err = repo.FindByID(ctx, "missing")
	req.ErrorIs(err, user.ErrNotFound)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	req.ErrorIs(err, user.ErrNotFound)

	carol, err := repo.Create(ctx, user.NewUser{Name: "Carol", Email: "carol@example.com", PasswordHash: "hash"})
	req.NoError(err)

	others, err := repo.ListExcept(ctx, bob.ID)
	req.NoError(err)
	req.Len(others, 2)
	req.Equal(alice.ID, others[0].ID)
	req.Equal(carol.ID, others[1].ID)

	name := "Robert"
	updated, err := repo.UpdateProfile(ctx, bob.ID, user.ProfileUpdate{Name: &name})
	req.NoError(err)
	req.Equal("Robert", updated.Name)
	req.Equal("bob@example.com", updated.Email)

	_, err = repo.UpdateProfile(ctx, "missing", user.ProfileUpdate{Name: &name})
	req.ErrorIs(err, user.ErrNotFound)
}

func TestMessageRepositoryOrderingAndPopulation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := openTestStore(t)
	users := NewUserRepository(store)
	msgs := NewMessageRepository(store)

	a, err := users.Create(ctx, user.NewUser{Name: "A", Email: "a@example.com", PasswordHash: "h"})
	req.NoError(err)
	b, err := users.Create(ctx, user.NewUser{Name: "B", Email: "b@example.com", PasswordHash: "h"})
	req.NoError(err)
	c, err := users.Create(ctx, user.NewUser{Name: "C", Email: "c@example.com", PasswordHash: "h"})
	req.NoError(err)

	var ids []string
	for i := range 20 {
		from, to := a.ID, b.ID
		if i%2 == 1 {
			from, to = b.ID, a.ID
		}
		id, err := msgs.Insert(ctx, message.NewMessage{SenderID: from, ReceiverID: to, Text: "hello"})
		req.NoError(err)
		ids = append(ids, id)
	}

	_, err = msgs.Insert(ctx, message.NewMessage{SenderID: a.ID, ReceiverID: c.ID, Text: "elsewhere"})
	req.NoError(err)

	list, err := msgs.ListBetween(ctx, b.ID, a.ID)
	req.NoError(err)
	req.Len(list, len(ids))
	for i, m := range list {
		req.Equal(ids[i], m.ID)
		if i > 0 {
			req.False(m.CreatedAt.Before(list[i-1].CreatedAt))
		}
	}

	populated, err := msgs.FindPopulated(ctx, ids[1])
	req.NoError(err)
	req.Equal(b.ID, populated.SenderID)
	req.Equal(&message.Participant{ID: b.ID, Name: "B"}, populated.Sender)
	req.Equal(&message.Participant{ID: a.ID, Name: "A"}, populated.Receiver)

	_, err = msgs.FindPopulated(ctx, "missing")
	req.ErrorIs(err, message.ErrNotFound)

	empty, err := msgs.ListBetween(ctx, b.ID, c.ID)
	req.NoError(err)
	req.NotNil(empty)
	req.Empty(empty)
}

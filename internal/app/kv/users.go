package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"dmchat/internal/app/user"
	"dmchat/internal/pkg/randx"

	"github.com/dgraph-io/badger/v4"
)

const (
	userPrefix  = "user:"
	emailPrefix = "email:"
)

// userRecord is the stored form of a user, password hash included.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfilePic   string    `json:"profilePic"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r userRecord) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		ProfilePic:   r.ProfilePic,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func userKey(id string) []byte {
	return []byte(userPrefix + id)
}

func emailKey(email string) []byte {
	return []byte(emailPrefix + strings.ToLower(email))
}

// UserRepository stores users in badger.
type UserRepository struct {
	store *Store
}

// NewUserRepository constructs a UserRepository on store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create stores a new user under a fresh id and claims its email.
func (r *UserRepository) Create(_ context.Context, nu user.NewUser) (user.User, error) {
	rec := userRecord{
		ID:           randx.NewID(),
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := r.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey(rec.Email))
		if err == nil {
			return user.ErrEmailTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := putJSON(txn, userKey(rec.ID), rec); err != nil {
			return err
		}
		return txn.Set(emailKey(rec.Email), []byte(rec.ID))
	})
	if err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return rec.toUser(), nil
}

// FindByID returns the user with id.
func (r *UserRepository) FindByID(_ context.Context, id string) (user.User, error) {
	var rec userRecord
	err := r.store.db.View(func(txn *badger.Txn) error {
		return getUser(txn, id, &rec)
	})
	if err != nil {
		return user.User{}, err
	}

	return rec.toUser(), nil
}

// FindByEmail returns the user registered under email, compared case-insensitively.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (user.User, error) {
	var rec userRecord
	err := r.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return user.ErrNotFound
			}
			return err
		}

		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		return getUser(txn, string(id), &rec)
	})
	if err != nil {
		return user.User{}, err
	}

	return rec.toUser(), nil
}

// ListExcept returns every user but id, ordered by name.
func (r *UserRepository) ListExcept(_ context.Context, id string) ([]user.User, error) {
	users := []user.User{}

	err := r.store.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec userRecord
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &rec)
			}); err != nil {
				return fmt.Errorf("failed to decode user: %w", err)
			}

			if rec.ID != id {
				users = append(users, rec.toUser())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(users, func(a, b user.User) int {
		return strings.Compare(a.Name, b.Name)
	})

	return users, nil
}

// UpdateProfile applies the non-nil fields of update.
func (r *UserRepository) UpdateProfile(_ context.Context, id string, update user.ProfileUpdate) (user.User, error) {
	var rec userRecord
	err := r.store.db.Update(func(txn *badger.Txn) error {
		if err := getUser(txn, id, &rec); err != nil {
			return err
		}

		if update.Name != nil {
			rec.Name = *update.Name
		}
		if update.ProfilePic != nil {
			rec.ProfilePic = *update.ProfilePic
		}

		return putJSON(txn, userKey(id), rec)
	})
	if err != nil {
		return user.User{}, err
	}

	return rec.toUser(), nil
}

func getUser(txn *badger.Txn, id string, rec *userRecord) error {
	item, err := txn.Get(userKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return user.ErrNotFound
		}
		return err
	}

	return item.Value(func(v []byte) error {
		return json.Unmarshal(v, rec)
	})
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

/*
Package user contains the user identity model, its persistence contract, and the
profile service that manages display names and profile pictures.
*/
package user

import (
	"context"
	"errors"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../../mocks/mock_user_repository.go -package=mocks -mock_names=Repository=MockUserRepository

var (
	// ErrNotFound is returned by repositories when no user matches.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"_id"`

	// Name is the display name shown to other users.
	Name string `json:"name"`

	Email string `json:"email"`

	// ProfilePic is the public URL of the user's avatar, empty when unset.
	ProfilePic string `json:"profilePic"`

	CreatedAt time.Time `json:"createdAt"`

	// PasswordHash is the bcrypt hash and never leaves the server.
	PasswordHash string `json:"-"`
}

// Contact is a user as listed in the sidebar, with live presence attached.
type Contact struct {
	User
	IsOnline bool `json:"isOnline"`
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// ProfileUpdate holds optional profile changes; nil fields are left untouched.
type ProfileUpdate struct {
	Name       *string
	ProfilePic *string
}

// Repository defines durable storage of users.
type Repository interface {
	// Create stores a new user. Emails are unique; duplicates fail with ErrEmailTaken.
	Create(ctx context.Context, nu NewUser) (User, error)

	// FindByID returns the user with id or ErrNotFound.
	FindByID(ctx context.Context, id string) (User, error)

	// FindByEmail returns the user registered under email or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (User, error)

	// ListExcept returns every user but id, ordered by name.
	ListExcept(ctx context.Context, id string) ([]User, error)

	// UpdateProfile applies update to the user with id and returns the stored result.
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (User, error)
}

package db

import (
	"context"
	"fmt"

	"dmchat/internal/app/user"
	"dmchat/internal/pkg/randx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id::text, name, email, profile_pic, created_at, password_hash`

// UserRepository stores users in PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository on pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.ProfilePic, &u.CreatedAt, &u.PasswordHash)
	if err != nil {
		if IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// Create inserts a new user with a fresh id.
func (r *UserRepository) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		randx.NewID(), nu.Name, nu.Email, nu.PasswordHash,
	)

	u, err := scanUser(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

// FindByID returns the user with id. Ids that are not UUIDs match nothing.
func (r *UserRepository) FindByID(ctx context.Context, id string) (user.User, error) {
	if !randx.IsValidID(id) {
		return user.User{}, user.ErrNotFound
	}

	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindByEmail returns the user registered under email, compared case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

// ListExcept returns every user but id, ordered by name.
func (r *UserRepository) ListExcept(ctx context.Context, id string) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id::text <> $1 ORDER BY name, created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// UpdateProfile sets the non-nil fields of update and returns the stored row.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update user.ProfileUpdate) (user.User, error) {
	if !randx.IsValidID(id) {
		return user.User{}, user.ErrNotFound
	}

	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = COALESCE($2, name), profile_pic = COALESCE($3, profile_pic)
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, update.Name, update.ProfilePic,
	))
}

/*
Package auth signs users up and in, issues session tokens, and verifies the credential
carried by every protected request and realtime handshake.
*/
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

// SignupInput is the body of a signup request.
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed-in user together with the token that proves it.
type Session struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// Service handles account creation and password login.
type Service struct {
	users    user.Repository
	secret   string
	tokenTTL time.Duration
	logger   zerolog.Logger
}

// NewService constructs a Service issuing tokens signed with secret and valid for tokenTTL.
func NewService(users user.Repository, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logx.Component("AuthService"),
	}
}

// TokenTTL is the lifetime of issued tokens, used for the cookie max age.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Signup creates an account and opens a session for it.
func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := validate.Struct(in); err != nil {
		return Session{}, errs.NewError(errs.ErrInvalidSignup)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, errs.Wrap(errs.ErrUnknown, err)
	}

	u, err := s.users.Create(ctx, user.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			s.logger.Warn().Msg("Signup conflict: email already registered")
			return Session{}, errs.NewError(errs.ErrUserAlreadyExists)
		}
		return Session{}, errs.Wrap(errs.ErrStorageFailed, err)
	}

	return s.open(u)
}

// Login checks the password of the account registered under the email.
// Unknown emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = normalizeEmail(in.Email)

	if err := validate.Struct(in); err != nil {
		return Session{}, errs.NewError(errs.ErrInvalidLoginInput)
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, errs.NewError(errs.ErrInvalidCredentials)
		}
		return Session{}, errs.Wrap(errs.ErrStorageFailed, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		s.logger.Warn().Str("user_id", u.ID).Msg("Login: password mismatch")
		return Session{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	return s.open(u)
}

// IssueToken signs a session token for userID.
func (s *Service) IssueToken(userID string) (string, error) {
	token, err := jwt.GenerateToken(&jwt.Payload{ID: userID}, s.secret, s.tokenTTL)
	if err != nil {
		return "", errs.Wrap(errs.ErrTokenGeneration, err)
	}
	return token, nil
}

func (s *Service) open(u user.User) (Session, error) {
	token, err := s.IssueToken(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package user

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"dmchat/internal/app/storage"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"

	"github.com/rs/zerolog"
)

const (
	// MaxNameLength is the maximum display name length in characters.
	MaxNameLength = 50

	cleanupTimeout = 30 * time.Second
)

// ProfileService applies profile changes and keeps avatar objects in step with them.
type ProfileService struct {
	repo    Repository
	objects storage.ObjectStore
	logger  zerolog.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo Repository, objects storage.ObjectStore) *ProfileService {
	return &ProfileService{
		repo:    repo,
		objects: objects,
		logger:  logx.Component("ProfileService"),
	}
}

// UpdateInput is a profile change request. Empty fields are left untouched.
// ProfilePic must be a base64 image data URI.
type UpdateInput struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
}

// Update validates in, uploads a new avatar when one is given, and stores the change.
// The replaced avatar object is deleted in the background.
func (s *ProfileService) Update(ctx context.Context, id string, in UpdateInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	pic := strings.TrimSpace(in.ProfilePic)

	if name == "" && pic == "" {
		return User{}, errs.NewError(errs.ErrNothingToUpdate)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return User{}, errs.NewError(errs.ErrInvalidParams)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, errs.NewError(errs.ErrUserNotFound)
		}
		return User{}, errs.Wrap(errs.ErrStorageFailed, err)
	}

	var update ProfileUpdate
	if name != "" {
		update.Name = &name
	}

	var newKey string
	if pic != "" {
		img, cerr := storage.ParseDataURI(pic)
		if cerr != nil {
			return User{}, cerr
		}

		url, key, err := storage.UploadImage(ctx, s.objects, storage.PrefixAvatars, img)
		if err != nil {
			return User{}, err
		}

		update.ProfilePic = &url
		newKey = key
	}

	updated, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		if newKey != "" {
			s.deleteInBackground(ctx, newKey)
		}
		if errors.Is(err, ErrNotFound) {
			return User{}, errs.NewError(errs.ErrUserNotFound)
		}
		return User{}, errs.Wrap(errs.ErrStorageFailed, err)
	}

	if newKey != "" && current.ProfilePic != "" {
		if oldKey, ok := s.objects.KeyFromURL(current.ProfilePic); ok {
			s.deleteInBackground(ctx, oldKey)
		}
	}

	return updated, nil
}

func (s *ProfileService) deleteInBackground(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)

	go func() {
		defer cancel()

		if err := s.objects.Delete(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete replaced avatar")
		}
	}()
}

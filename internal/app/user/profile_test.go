package user_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"dmchat/internal/app/user"
	"dmchat/internal/mocks"
	"dmchat/internal/pkg/errs"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

func gifDataURI() string {
	return "data:image/gif;base64," + base64.StdEncoding.EncodeToString(gifBytes)
}

func TestUpdateRequiresAField(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service := user.NewProfileService(mocks.NewMockUserRepository(ctrl), mocks.NewMockObjectStore(ctrl))

	_, err := service.Update(context.Background(), "u1", user.UpdateInput{Name: "  "})
	req.True(errs.HasCode(err, errs.ErrNothingToUpdate))

	_, err = service.Update(context.Background(), "u1", user.UpdateInput{Name: strings.Repeat("é", user.MaxNameLength+1)})
	req.True(errs.HasCode(err, errs.ErrInvalidParams))
}

func TestUpdateName(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	service := user.NewProfileService(repo, mocks.NewMockObjectStore(ctrl))

	repo.EXPECT().FindByID(gomock.Any(), "u1").Return(user.User{ID: "u1", Name: "Old"}, nil)
	repo.EXPECT().UpdateProfile(gomock.Any(), "u1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, update user.ProfileUpdate) (user.User, error) {
			req.NotNil(update.Name)
			req.Nil(update.ProfilePic)
			return user.User{ID: id, Name: *update.Name}, nil
		})

	updated, err := service.Update(context.Background(), "u1", user.UpdateInput{Name: " New "})
	req.NoError(err)
	req.Equal("New", updated.Name)
}

func TestUpdateUnknownUser(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	service := user.NewProfileService(repo, mocks.NewMockObjectStore(ctrl))

	repo.EXPECT().FindByID(gomock.Any(), "ghost").Return(user.User{}, user.ErrNotFound)

	_, err := service.Update(context.Background(), "ghost", user.UpdateInput{Name: "x"})
	req.True(errs.HasCode(err, errs.ErrUserNotFound))
}

func TestUpdateAvatarReplacesOldObject(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	objects := mocks.NewMockObjectStore(ctrl)
	service := user.NewProfileService(repo, objects)

	const oldURL = "https://cdn.example.com/avatars/2024/01/01/old.png"

	repo.EXPECT().FindByID(gomock.Any(), "u1").Return(user.User{ID: "u1", ProfilePic: oldURL}, nil)
	objects.EXPECT().Store(gomock.Any(), gomock.Any(), gifBytes, "image/gif").
		DoAndReturn(func(_ context.Context, key string, _ []byte, _ string) (string, error) {
			req.True(strings.HasPrefix(key, "avatars/"))
			return "https://cdn.example.com/" + key, nil
		})
	repo.EXPECT().UpdateProfile(gomock.Any(), "u1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, update user.ProfileUpdate) (user.User, error) {
			req.Nil(update.Name)
			return user.User{ID: id, ProfilePic: *update.ProfilePic}, nil
		})
	objects.EXPECT().KeyFromURL(oldURL).Return("avatars/2024/01/01/old.png", true)

	deleted := make(chan string, 1)
	objects.EXPECT().Delete(gomock.Any(), "avatars/2024/01/01/old.png").
		DoAndReturn(func(_ context.Context, key string) error {
			deleted <- key
			return nil
		})

	updated, err := service.Update(context.Background(), "u1", user.UpdateInput{ProfilePic: gifDataURI()})
	req.NoError(err)
	req.True(strings.HasPrefix(updated.ProfilePic, "https://cdn.example.com/avatars/"))

	select {
	case <-deleted:
	case <-time.After(2 * time.Second):
		t.Fatal("old avatar was not deleted")
	}
}

func TestUpdateAvatarRejectsNonImage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	service := user.NewProfileService(repo, mocks.NewMockObjectStore(ctrl))

	repo.EXPECT().FindByID(gomock.Any(), "u1").Return(user.User{ID: "u1"}, nil)

	text := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("plain text, not an image"))
	_, err := service.Update(context.Background(), "u1", user.UpdateInput{ProfilePic: text})
	req.True(errs.HasCode(err, errs.ErrImageTypeNotAllowed))
}

func TestUpdateStoreFailureDiscardsUpload(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	objects := mocks.NewMockObjectStore(ctrl)
	service := user.NewProfileService(repo, objects)

	repo.EXPECT().FindByID(gomock.Any(), "u1").Return(user.User{ID: "u1"}, nil)
	objects.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("https://cdn.example.com/avatars/new.gif", nil)
	repo.EXPECT().UpdateProfile(gomock.Any(), "u1", gomock.Any()).Return(user.User{}, errors.New("write failed"))

	deleted := make(chan struct{})
	objects.EXPECT().Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) error {
			close(deleted)
			return nil
		})

	_, err := service.Update(context.Background(), "u1", user.UpdateInput{ProfilePic: gifDataURI()})
	req.True(errs.HasCode(err, errs.ErrStorageFailed))

	select {
	case <-deleted:
	case <-time.After(2 * time.Second):
		t.Fatal("orphaned avatar was not deleted")
	}
}

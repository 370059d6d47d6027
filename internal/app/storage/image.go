package storage

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/randx"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxImageSizeMB is the maximum allowed decoded image size in megabytes.
	MaxImageSizeMB = 5

	// MaxImageSize is the maximum allowed decoded image size in bytes.
	MaxImageSize = MaxImageSizeMB * 1024 * 1024

	// PrefixImages holds message images.
	PrefixImages = "images"

	// PrefixAvatars holds profile pictures.
	PrefixAvatars = "avatars"

	dataURIScheme = "data:"
)

// AllowedMIMETypes defines the set of permitted image types, keyed by sniffed MIME type.
var AllowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Image is a decoded, validated image ready for upload.
type Image struct {
	Data     []byte
	MIMEType string
	Ext      string
}

// IsDataURI reports whether s looks like an inline data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, dataURIScheme)
}

// IsRemoteURL reports whether s is an absolute http(s) URL.
func IsRemoteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ParseDataURI decodes a base64 data URI and validates the image inside it.
// The declared media type is ignored; the type is sniffed from the bytes.
func ParseDataURI(s string) (Image, *errs.CustomError) {
	if !IsDataURI(s) {
		return Image{}, errs.NewError(errs.ErrImageInvalid)
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(s, dataURIScheme), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return Image{}, errs.NewError(errs.ErrImageInvalid)
	}

	// reject before decoding anything clearly over the limit
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+2 {
		return Image{}, errs.NewError(errs.ErrFileSizeTooLarge)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return Image{}, errs.NewError(errs.ErrImageInvalid)
	}

	return ValidateImage(data)
}

// ValidateImage checks the size and sniffed type of raw image bytes.
func ValidateImage(data []byte) (Image, *errs.CustomError) {
	if len(data) == 0 {
		return Image{}, errs.NewError(errs.ErrImageInvalid)
	}

	if len(data) > MaxImageSize {
		return Image{}, errs.NewError(errs.ErrFileSizeTooLarge)
	}

	mimeType := mimetype.Detect(data).String()
	ext, ok := AllowedMIMETypes[mimeType]
	if !ok {
		return Image{}, errs.NewError(errs.ErrImageTypeNotAllowed, mimeType)
	}

	return Image{Data: data, MIMEType: mimeType, Ext: ext}, nil
}

// UploadImage stores img under a fresh key below prefix and returns its public URL and key.
// Store failures surface as ErrFileStorageFailed.
func UploadImage(ctx context.Context, store ObjectStore, prefix string, img Image) (string, string, error) {
	key := randx.ObjectKey(prefix, img.Ext)

	publicURL, err := store.Store(ctx, key, img.Data, img.MIMEType)
	if err != nil {
		return "", "", errs.Wrap(errs.ErrFileStorageFailed, err)
	}

	return publicURL, key, nil
}

// DeleteByURL removes the object behind publicURL when the store owns it.
// It is a no-op for foreign URLs.
func DeleteByURL(ctx context.Context, store ObjectStore, publicURL string) error {
	key, ok := store.KeyFromURL(publicURL)
	if !ok {
		return nil
	}
	return store.Delete(ctx, key)
}

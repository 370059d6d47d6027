/*
Package randx provides generators for unique identifiers and object storage keys.
*/
package randx

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID generates a standard UUID v4 string used for users and messages.
func NewID() string {
	return uuid.New().String()
}

// IsValidID reports whether id parses as a UUID.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ObjectKey builds a unique object storage key under prefix, bucketed by day.
// The extension is normalized to start with a dot; an empty extension is left off.
//
//	ObjectKey("images", "png") => images/2026/01/02/<uuid>.png
func ObjectKey(prefix, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	day := time.Now().UTC().Format("2006/01/02")
	return path.Join(strings.Trim(prefix, "/"), day, uuid.New().String()+ext)
}

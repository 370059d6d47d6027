package randx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	req := require.New(t)

	key := ObjectKey("/avatars/", "png")
	req.True(strings.HasPrefix(key, "avatars/"))
	req.True(strings.HasSuffix(key, ".png"))
	req.Len(strings.Split(key, "/"), 5)

	req.NotEqual(ObjectKey("images", ".jpg"), ObjectKey("images", ".jpg"))
	req.False(strings.HasSuffix(ObjectKey("images", ""), "."))
}

func TestIsValidID(t *testing.T) {
	req := require.New(t)

	req.True(IsValidID(NewID()))
	req.False(IsValidID("not-a-uuid"))
	req.False(IsValidID(""))
}

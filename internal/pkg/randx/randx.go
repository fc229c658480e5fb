/*
Package randx provides generation of unique object keys and identifiers.

It is primarily used to mint collision-free S3 object keys for uploaded
profile images.
*/
package randx

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AvatarKeyPrefix is the S3 key prefix under which profile images are stored.
const AvatarKeyPrefix = "avatars/"

// AvatarObjectKey mints a new S3 object key for a profile image upload.
// The extension must include the leading dot (".png").
func AvatarObjectKey(ext string) string {
	return fmt.Sprintf("%s%s%s", AvatarKeyPrefix, uuid.New().String(), strings.ToLower(ext))
}

// IsAvatarObjectKey reports whether the given key lives under the avatar prefix.
// Used to reject profile updates that point at arbitrary bucket objects.
func IsAvatarObjectKey(key string) bool {
	if !strings.HasPrefix(key, AvatarKeyPrefix) {
		return false
	}

	rest := key[len(AvatarKeyPrefix):]

	return rest != "" && !strings.Contains(rest, "/")
}

package randx

import (
	"strings"
	"testing"
)

func TestAvatarObjectKey(t *testing.T) {
	key := AvatarObjectKey(".PNG")

	if !strings.HasPrefix(key, AvatarKeyPrefix) {
		t.Fatalf("key %q lacks prefix %q", key, AvatarKeyPrefix)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("key %q does not end with lowered extension", key)
	}
	if key == AvatarObjectKey(".PNG") {
		t.Fatal("two minted keys collided")
	}
}

func TestIsAvatarObjectKey(t *testing.T) {
	if !IsAvatarObjectKey(AvatarObjectKey(".jpg")) {
		t.Fatal("minted key did not validate")
	}

	for _, key := range []string{
		"",
		"avatars/",
		"avatars/nested/file.jpg",
		"other/file.jpg",
		"../avatars/file.jpg",
	} {
		if IsAvatarObjectKey(key) {
			t.Errorf("IsAvatarObjectKey(%q) accepted an invalid key", key)
		}
	}
}

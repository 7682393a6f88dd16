package storage

import (
	"strings"
	"testing"

	"ows-backend/models"
)

func TestMediaKeyLayout(t *testing.T) {
	key := MediaKey(models.MediaTypeVideo, "m1", "Clip.MP4")
	if !strings.HasPrefix(key, "media/video/m1/") {
		t.Fatalf("unexpected key prefix: %s", key)
	}
	if !strings.HasSuffix(key, ".mp4") {
		t.Fatalf("extension should be lowercased: %s", key)
	}

	// Uniqueness per call even for identical inputs.
	if key == MediaKey(models.MediaTypeVideo, "m1", "Clip.MP4") {
		t.Fatalf("keys must be unique per upload")
	}
}

func TestMediaKeyNoExtension(t *testing.T) {
	key := MediaKey(models.MediaTypeImage, "m1", "README")
	if !strings.HasSuffix(key, ".bin") {
		t.Fatalf("extensionless filenames should fall back to .bin: %s", key)
	}
}

func TestMediaIDFromKey(t *testing.T) {
	cases := map[string]string{
		"media/image/m1/abc.jpg": "m1",
		"thumbnails/m2/def.jpg":  "m2",
		"press/f1/ghi.pdf":       "",
		"garbage":                "",
	}
	for key, want := range cases {
		if got := MediaIDFromKey(key); got != want {
			t.Errorf("MediaIDFromKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestIsImageKey(t *testing.T) {
	cases := map[string]bool{
		"thumbnails/m1/frame.jpg": true,
		"media/image/m1/a.webp":   true,
		"media/video/m1/clip.mp4": false,
		"media/video/m1/cover.jpg": true, // image file inside a video group
		"media/audio/m1/track.mp3": false,
		"":                         false,
	}
	for key, want := range cases {
		if got := IsImageKey(key); got != want {
			t.Errorf("IsImageKey(%q) = %v, want %v", key, got, want)
		}
	}
}

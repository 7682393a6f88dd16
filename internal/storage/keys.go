package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ows-backend/models"
)

// Key layout:
//
//	media/{type}/{mediaId}/{uuid}.{ext}   uploaded objects
//	thumbnails/{mediaId}/{uuid}.{ext}     derived or custom thumbnails
//	press/{fileId}/{uuid}.{ext}           press kit attachments

func fileExt(filename, fallback string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		return strings.ToLower(filename[i+1:])
	}
	return fallback
}

// MediaKey builds the storage key for one uploaded media object.
func MediaKey(mediaType models.MediaType, mediaID, filename string) string {
	return fmt.Sprintf("media/%s/%s/%s.%s", mediaType, mediaID, uuid.NewString(), fileExt(filename, "bin"))
}

// ThumbnailKey builds the storage key for a thumbnail artifact.
func ThumbnailKey(mediaID, filename string) string {
	return fmt.Sprintf("thumbnails/%s/%s.%s", mediaID, uuid.NewString(), fileExt(filename, "jpg"))
}

// PressKey builds the storage key for a press attachment.
func PressKey(fileID, filename string) string {
	return fmt.Sprintf("press/%s/%s.%s", fileID, uuid.NewString(), fileExt(filename, "bin"))
}

// MediaIDFromKey extracts the owning media id from a media/ or thumbnails/ key.
func MediaIDFromKey(key string) string {
	parts := strings.Split(key, "/")
	switch {
	case len(parts) >= 3 && parts[0] == "media":
		return parts[2]
	case len(parts) >= 2 && parts[0] == "thumbnails":
		return parts[1]
	}
	return ""
}

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true,
}

// IsImageKey reports whether a storage key points at a viewable image.
// Generated thumbnails always qualify; otherwise the media/image root or a
// known image extension decides.
func IsImageKey(key string) bool {
	if key == "" {
		return false
	}
	if strings.HasPrefix(key, "thumbnails/") {
		return true
	}
	if strings.HasPrefix(key, "media/image/") {
		return true
	}
	return imageExts[fileExt(key, "")]
}

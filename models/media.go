package models

import (
	"strings"
	"time"
)

// MediaType classifies a media item by its primary artifact.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// ParseMediaType validates a client-supplied media type string.
func ParseMediaType(s string) (MediaType, bool) {
	switch MediaType(strings.ToLower(s)) {
	case MediaTypeImage:
		return MediaTypeImage, true
	case MediaTypeVideo:
		return MediaTypeVideo, true
	case MediaTypeAudio:
		return MediaTypeAudio, true
	}
	return "", false
}

// MediaFile is one stored object belonging to a MediaItem.
type MediaFile struct {
	S3Key       string `bson:"s3_key" json:"s3Key"`
	Filename    string `bson:"filename" json:"filename"`
	ContentType string `bson:"content_type" json:"contentType"`
	Size        int64  `bson:"size" json:"size"`
}

// IsImage reports whether the file's declared content type is an image type.
func (f MediaFile) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// MediaItem is one logical media entry. The owned files are embedded so the
// grouping stays atomic with the record itself.
type MediaItem struct {
	ID               string      `bson:"_id" json:"id"`
	Title            string      `bson:"title" json:"title"`
	MediaType        MediaType   `bson:"media_type" json:"mediaType"`
	Format           string      `bson:"format,omitempty" json:"format,omitempty"`
	Filesize         int64       `bson:"filesize,omitempty" json:"filesize,omitempty"`
	S3Key            string      `bson:"s3_key" json:"s3Key"`
	ThumbnailKey     string      `bson:"thumbnail_key,omitempty" json:"thumbnailKey,omitempty"`
	ThumbnailPending bool        `bson:"thumbnail_pending" json:"thumbnailPending"`
	Files            []MediaFile `bson:"files" json:"files"`
	Categories       []string    `bson:"categories" json:"categories"`
	Public           bool        `bson:"public" json:"public"`
	AISummary        string      `bson:"ai_summary,omitempty" json:"aiSummary,omitempty"`
	AddedBy          string      `bson:"added_by" json:"addedBy"`
	AddedAt          time.Time   `bson:"added_at" json:"addedAt"`
}

// UploadTicketRequest asks for a presigned single-object write.
type UploadTicketRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	MediaType   string `json:"mediaType" binding:"required"`
	// MediaID is set when adding files to an existing group; empty mints a new one.
	MediaID string `json:"mediaId"`
}

// UploadTicketResponse carries the write capability back to the caller.
type UploadTicketResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	MediaID   string `json:"mediaId"`
	ExpiresIn int64  `json:"expiresIn"`
}

// CommitMediaRequest registers a completed upload group as a MediaItem.
type CommitMediaRequest struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	MediaType  string      `json:"mediaType" binding:"required"`
	Files      []MediaFile `json:"files" binding:"required"`
	// ThumbnailKey is the actor's explicit selection, empty for automatic.
	ThumbnailKey string   `json:"thumbnailKey"`
	Categories   []string `json:"categories"`
	Public       *bool    `json:"public"`
	Format       string   `json:"format"`
}

// UpdateMediaRequest mutates a committed MediaItem.
type UpdateMediaRequest struct {
	// ID comes from the URL path, not the body.
	ID           string       `json:"-"`
	Title        *string      `json:"title"`
	Files        *[]MediaFile `json:"files"`
	ThumbnailKey *string      `json:"thumbnailKey"`
	Categories   *[]string    `json:"categories"`
	Public       *bool        `json:"public"`
}

// ImportFromURLRequest pulls a remote file server-side into a new MediaItem.
type ImportFromURLRequest struct {
	URL        string   `json:"url" binding:"required"`
	Title      string   `json:"title"`
	MediaType  string   `json:"mediaType" binding:"required"`
	Categories []string `json:"categories"`
	Public     *bool    `json:"public"`
}

// CompleteDerivationRequest is the worker callback payload.
type CompleteDerivationRequest struct {
	MediaID string `json:"mediaId" binding:"required"`
	Kind    string `json:"kind" binding:"required"`
	// Value is a storage key for thumbnails, the text itself for summaries.
	Value string `json:"value" binding:"required"`
}

// MediaFileView is a MediaFile enriched with a presigned read URL.
type MediaFileView struct {
	MediaFile
	URL string `json:"url"`
}

// MediaView is the listing shape the frontend consumes: presigned URLs plus
// the resolved thumbnail (image items fall back to their primary URL).
type MediaView struct {
	MediaItem
	URL       string          `json:"url"`
	Thumbnail string          `json:"thumbnail"`
	FileViews []MediaFileView `json:"fileViews,omitempty"`
}

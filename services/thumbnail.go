package services

import "ows-backend/models"

// ThumbnailResolution is the outcome of the resolution policy: a concrete
// image key, or Pending when the item must wait for a derived artifact.
type ThumbnailResolution struct {
	Key     string
	Pending bool
}

// ResolveThumbnail picks the artifact that represents a media item in
// listings. Only image-type files may serve as a thumbnail key; video and
// audio bytes are never selected directly, their frames are derived by the
// worker.
//
// Order of precedence:
//  1. An explicit selection referencing an image file in the group.
//     Selections pointing at a non-image file, or at a file no longer in
//     the group, are rejected.
//  2. A single image file needs no selection.
//  3. With more than one file a thumbnail is mandatory: first image file by
//     insertion order, otherwise the group is unresolvable.
//  4. A lone video/audio file commits without a key and waits for the
//     derivation worker.
func ResolveThumbnail(files []models.MediaFile, mediaType models.MediaType, explicit string) (ThumbnailResolution, error) {
	if explicit != "" {
		for _, f := range files {
			if f.S3Key == explicit {
				if !f.IsImage() {
					return ThumbnailResolution{}, ErrInvalidThumbnailSelection
				}
				return ThumbnailResolution{Key: explicit}, nil
			}
		}
		// The selected file was removed from the group: fail closed rather
		// than silently reverting to automatic selection.
		return ThumbnailResolution{}, ErrInvalidThumbnailSelection
	}

	if len(files) == 1 && files[0].IsImage() {
		return ThumbnailResolution{Key: files[0].S3Key}, nil
	}

	if len(files) > 1 {
		for _, f := range files {
			if f.IsImage() {
				return ThumbnailResolution{Key: f.S3Key}, nil
			}
		}
		return ThumbnailResolution{}, ErrUnresolvedThumbnail
	}

	if mediaType == models.MediaTypeVideo || mediaType == models.MediaTypeAudio {
		return ThumbnailResolution{Pending: true}, nil
	}

	return ThumbnailResolution{}, ErrUnresolvedThumbnail
}

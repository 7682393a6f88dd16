package services

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline error taxonomy. Callers branch on these with errors.Is/As; the
// HTTP layer maps them to response codes.
var (
	ErrUnauthorized              = errors.New("caller lacks the minimum role for media mutation")
	ErrInvalidContentType        = errors.New("content type does not match an allowed media type family")
	ErrInvalidThumbnailSelection = errors.New("explicit thumbnail must reference an image file in the group")
	ErrCapacityExceeded          = errors.New("media item is at its file cap")
	ErrUnresolvedThumbnail       = errors.New("no thumbnail candidate and no explicit selection")
	ErrAlreadyResolved           = errors.New("thumbnail already resolved")
	ErrNotFound                  = errors.New("media item not found")
)

// IncompleteUploadError reports declared files whose backing objects are
// missing from storage. The caller retries only these keys.
type IncompleteUploadError struct {
	Missing []string
}

func (e *IncompleteUploadError) Error() string {
	return fmt.Sprintf("declared files missing from storage: %s", strings.Join(e.Missing, ", "))
}

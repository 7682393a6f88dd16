package services

import (
	"context"
	"strings"

	"ows-backend/internal/storage"
	"ows-backend/models"
)

// ListOptions narrow a media listing. Zero value lists everything the
// caller is allowed to see.
type ListOptions struct {
	PublicOnly bool
	MediaType  string
	Category   string
	Search     string
}


// ListMedia returns enriched views of matching records. Filtering happens
// in memory: the catalog for a single band site is small and the filters
// compose freely this way.
func (s *MediaService) ListMedia(ctx context.Context, opts ListOptions) ([]*models.MediaView, error) {
	items, err := s.repo.List(ctx, opts.PublicOnly)
	if err != nil {
		return nil, err
	}

	views := make([]*models.MediaView, 0, len(items))
	for _, item := range items {
		if opts.MediaType != "" && string(item.MediaType) != opts.MediaType {
			continue
		}
		if opts.Category != "" && !containsString(item.Categories, opts.Category) {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(opts.Search)) {
			continue
		}
		views = append(views, s.enrich(ctx, item))
	}
	return views, nil
}

// GetMedia returns one enriched record or ErrNotFound.
func (s *MediaService) GetMedia(ctx context.Context, id string) (*models.MediaView, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return s.enrich(ctx, item), nil
}

// GetMediaViews resolves a batch of ids, silently skipping dangling
// references so a deleted item never breaks the page embedding it.
func (s *MediaService) GetMediaViews(ctx context.Context, ids []string) ([]*models.MediaView, error) {
	views := make([]*models.MediaView, 0, len(ids))
	for _, id := range ids {
		item, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		views = append(views, s.enrich(ctx, item))
	}
	return views, nil
}

// enrich converts a stored record into its outward shape with presigned
// URLs. Presign failures degrade to empty URLs rather than failing the
// listing.
func (s *MediaService) enrich(ctx context.Context, item *models.MediaItem) *models.MediaView {
	view := &models.MediaView{MediaItem: *item}

	if item.S3Key != "" {
		if url, err := s.store.PresignGet(ctx, item.S3Key, s.cfg.PresignGetTTL); err == nil {
			view.URL = url
		}
	}

	// Only image keys are presented as thumbnails; a video primary key in
	// the thumbnail slot would render as a broken image.
	if item.ThumbnailKey != "" && storage.IsImageKey(item.ThumbnailKey) {
		if url, err := s.store.PresignGet(ctx, item.ThumbnailKey, s.cfg.PresignGetTTL); err == nil {
			view.Thumbnail = url
		}
	}
	if view.Thumbnail == "" && item.MediaType == models.MediaTypeImage {
		view.Thumbnail = view.URL
	}

	for _, f := range item.Files {
		fv := models.MediaFileView{MediaFile: f}
		if url, err := s.store.PresignGet(ctx, f.S3Key, s.cfg.PresignGetTTL); err == nil {
			fv.URL = url
		}
		view.FileViews = append(view.FileViews, fv)
	}
	return view
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ows-backend/internal/config"
	"ows-backend/internal/logger"
	"ows-backend/internal/storage"
	"ows-backend/internal/telemetry"
	"ows-backend/models"
)

// ObjectStore is the slice of the object store the pipeline needs: write
// capabilities for tickets, reads for listings, existence checks for commit
// verification.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// MediaRepository persists MediaItem records. Get returns (nil, nil) for an
// absent id; the conditional updates return whether a record matched.
type MediaRepository interface {
	Get(ctx context.Context, id string) (*models.MediaItem, error)
	Upsert(ctx context.Context, item *models.MediaItem) error
	List(ctx context.Context, publicOnly bool) ([]*models.MediaItem, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountFiles(ctx context.Context, id string) (int, error)
	// SetThumbnailIfPending applies the derived key only while the record is
	// still waiting on derivation. Returns false when no pending record
	// matched, so the caller can tell NotFound from AlreadyResolved.
	SetThumbnailIfPending(ctx context.Context, id, key string) (bool, error)
	SetSummary(ctx context.Context, id, summary string) (bool, error)
	ReferencesKey(ctx context.Context, key string) (bool, error)
}

// TicketStore tracks outstanding upload tickets. Registration and the
// per-group pending counter back the atomic capacity check; consumption
// enforces single use.
type TicketStore interface {
	Register(ctx context.Context, key, groupID string, ttl time.Duration) error
	Consume(ctx context.Context, key string) (bool, error)
	ReservePending(ctx context.Context, groupID string, ttl time.Duration) (int64, error)
	ReleasePending(ctx context.Context, groupID string) error
}

// Dispatcher hands derivation work to the background worker.
type Dispatcher interface {
	DispatchThumbnail(ctx context.Context, mediaID, s3Key string, mediaType models.MediaType) error
	DispatchSummary(ctx context.Context, mediaID, title string, mediaType models.MediaType) error
}

// MediaService orchestrates the media ingestion pipeline: ticket issuance,
// commit with storage verification, derived-artifact completion, deletion.
type MediaService struct {
	store    ObjectStore
	repo     MediaRepository
	tickets  TicketStore
	dispatch Dispatcher
	cfg      *config.Config
	metrics  *telemetry.Metrics
}

func NewMediaService(store ObjectStore, repo MediaRepository, tickets TicketStore, dispatch Dispatcher, cfg *config.Config, metrics *telemetry.Metrics) *MediaService {
	return &MediaService{
		store:    store,
		repo:     repo,
		tickets:  tickets,
		dispatch: dispatch,
		cfg:      cfg,
		metrics:  metrics,
	}
}

// IssueTicket hands out a presigned, time-limited, single-object write and
// the group id the object will belong to. Nothing is persisted: the object
// write goes directly to storage and the record is created at commit.
func (s *MediaService) IssueTicket(ctx context.Context, req models.UploadTicketRequest) (*models.UploadTicketResponse, error) {
	mt, ok := models.ParseMediaType(req.MediaType)
	if !ok {
		return nil, ErrInvalidContentType
	}
	if !strings.HasPrefix(req.ContentType, string(mt)+"/") {
		return nil, ErrInvalidContentType
	}

	groupID := req.MediaID
	if groupID == "" {
		groupID = uuid.NewString()
	}

	// Capacity is checked against committed files plus outstanding tickets.
	// The reservation INCR is atomic, so concurrent issuances cannot
	// overshoot the cap together.
	committed, err := s.repo.CountFiles(ctx, groupID)
	if err != nil {
		return nil, err
	}
	pending, err := s.tickets.ReservePending(ctx, groupID, s.cfg.TicketTTL)
	if err != nil {
		return nil, err
	}
	if committed+int(pending) > s.cfg.MaxFilesPerItem {
		if relErr := s.tickets.ReleasePending(ctx, groupID); relErr != nil {
			logger.Warn("failed to release pending reservation", "group_id", groupID, "error", relErr)
		}
		return nil, ErrCapacityExceeded
	}

	key := storage.MediaKey(mt, groupID, req.Filename)
	if err := s.tickets.Register(ctx, key, groupID, s.cfg.TicketTTL); err != nil {
		return nil, err
	}

	url, err := s.store.PresignPut(ctx, key, s.cfg.TicketTTL)
	if err != nil {
		return nil, err
	}

	s.metrics.IncTicketsIssued(ctx)
	return &models.UploadTicketResponse{
		UploadURL: url,
		S3Key:     key,
		MediaID:   groupID,
		ExpiresIn: int64(s.cfg.TicketTTL.Seconds()),
	}, nil
}

// IssueThumbnailTicket issues a write capability for a custom thumbnail.
// Thumbnails live outside the group's file cap and must be images.
func (s *MediaService) IssueThumbnailTicket(ctx context.Context, mediaID, filename, contentType string) (*models.UploadTicketResponse, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidContentType
	}

	key := storage.ThumbnailKey(mediaID, filename)
	if err := s.tickets.Register(ctx, key, mediaID, s.cfg.TicketTTL); err != nil {
		return nil, err
	}

	url, err := s.store.PresignPut(ctx, key, s.cfg.TicketTTL)
	if err != nil {
		return nil, err
	}

	return &models.UploadTicketResponse{
		UploadURL: url,
		S3Key:     key,
		MediaID:   mediaID,
		ExpiresIn: int64(s.cfg.TicketTTL.Seconds()),
	}, nil
}

// Commit reconciles a completed upload group into one persisted MediaItem.
// Every declared object must exist in storage before anything is written;
// a missing object fails the whole commit with the precise missing set so
// the caller retries only those files. Commits are idempotent on the group
// id: a retry with the same arguments updates in place.
func (s *MediaService) Commit(ctx context.Context, req models.CommitMediaRequest, actorID string) (*models.MediaItem, error) {
	tracer := otel.Tracer("media-service")
	ctx, span := tracer.Start(ctx, "media.commit")
	defer span.End()

	mt, ok := models.ParseMediaType(req.MediaType)
	if !ok {
		return nil, ErrInvalidContentType
	}
	if len(req.Files) == 0 {
		return nil, &IncompleteUploadError{}
	}
	if len(req.Files) > s.cfg.MaxFilesPerItem {
		return nil, ErrCapacityExceeded
	}

	resolution, err := ResolveThumbnail(req.Files, mt, req.ThumbnailKey)
	if err != nil {
		return nil, err
	}

	// Storage is the source of truth for what actually uploaded. The record
	// must never reference an object that is not there.
	var missing []string
	for _, f := range req.Files {
		exists, err := s.store.Exists(ctx, f.S3Key)
		if err != nil {
			return nil, fmt.Errorf("storage verification failed for %s: %w", f.S3Key, err)
		}
		if !exists {
			missing = append(missing, f.S3Key)
		}
	}
	if len(missing) > 0 {
		span.SetAttributes(attribute.Int("media.missing_files", len(missing)))
		return nil, &IncompleteUploadError{Missing: missing}
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Consume tickets now that the objects are verified. A retried commit
	// finds them already consumed, which is fine.
	for _, f := range req.Files {
		consumed, err := s.tickets.Consume(ctx, f.S3Key)
		if err != nil {
			logger.Warn("ticket consume failed", "s3_key", f.S3Key, "error", err)
			continue
		}
		if consumed {
			if err := s.tickets.ReleasePending(ctx, id); err != nil {
				logger.Warn("failed to release pending reservation", "group_id", id, "error", err)
			}
		}
	}

	public := true
	if req.Public != nil {
		public = *req.Public
	}
	var totalSize int64
	for _, f := range req.Files {
		totalSize += f.Size
	}

	item := &models.MediaItem{
		ID:               id,
		Title:            req.Title,
		MediaType:        mt,
		Format:           req.Format,
		Filesize:         totalSize,
		S3Key:            req.Files[0].S3Key,
		ThumbnailKey:     resolution.Key,
		ThumbnailPending: resolution.Pending,
		Files:            req.Files,
		Categories:       req.Categories,
		Public:           public,
		AddedBy:          actorID,
		AddedAt:          time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}

	// Reload so retried commits return the stored record, original
	// added_at/added_by included.
	committed, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if resolution.Pending {
		if err := s.dispatch.DispatchThumbnail(ctx, id, item.S3Key, mt); err != nil {
			// The sweep-free fallback is a manual thumbnail upload, so a
			// failed dispatch is degraded service, not a failed commit.
			logger.Error("thumbnail dispatch failed", "media_id", id, "error", err)
		}
	}
	if existing == nil && req.Title != "" {
		if err := s.dispatch.DispatchSummary(ctx, id, req.Title, mt); err != nil {
			logger.Error("summary dispatch failed", "media_id", id, "error", err)
		}
	}

	s.metrics.IncCommits(ctx)
	span.SetAttributes(
		attribute.String("media.id", id),
		attribute.Int("media.files", len(req.Files)),
		attribute.Bool("media.thumbnail_pending", resolution.Pending),
	)
	return committed, nil
}

// Update mutates a committed item: metadata fields, the file set, or the
// thumbnail selection.
func (s *MediaService) Update(ctx context.Context, req models.UpdateMediaRequest) (*models.MediaItem, error) {
	item, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	if req.Files != nil {
		newFiles := *req.Files
		if len(newFiles) > s.cfg.MaxFilesPerItem {
			return nil, ErrCapacityExceeded
		}
		newKeys := make(map[string]bool, len(newFiles))
		for _, f := range newFiles {
			newKeys[f.S3Key] = true
		}
		for _, f := range item.Files {
			if !newKeys[f.S3Key] {
				if err := s.store.Delete(ctx, f.S3Key); err != nil {
					logger.Warn("failed to delete removed object", "s3_key", f.S3Key, "error", err)
				}
			}
		}
		item.Files = newFiles
		if len(newFiles) > 0 {
			item.S3Key = newFiles[0].S3Key
			var total int64
			for _, f := range newFiles {
				total += f.Size
			}
			item.Filesize = total
		}
		// A thumbnail that pointed at a removed file is stale: re-resolve
		// automatically and surface the failure instead of defaulting.
		if item.ThumbnailKey != "" && !strings.HasPrefix(item.ThumbnailKey, "thumbnails/") && !newKeys[item.ThumbnailKey] {
			resolution, err := ResolveThumbnail(item.Files, item.MediaType, "")
			if err != nil {
				return nil, err
			}
			item.ThumbnailKey = resolution.Key
			item.ThumbnailPending = resolution.Pending
		}
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Categories != nil {
		item.Categories = *req.Categories
	}
	if req.Public != nil {
		item.Public = *req.Public
	}
	if req.ThumbnailKey != nil {
		key := *req.ThumbnailKey
		if key == "" {
			resolution, err := ResolveThumbnail(item.Files, item.MediaType, "")
			if err != nil {
				return nil, err
			}
			item.ThumbnailKey = resolution.Key
			item.ThumbnailPending = resolution.Pending
		} else {
			if !storage.IsImageKey(key) {
				return nil, ErrInvalidThumbnailSelection
			}
			item.ThumbnailKey = key
			item.ThumbnailPending = false
		}
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, req.ID)
}

// Delete removes the metadata record, then best-effort deletes every backing
// object. Cleanup failure is reported in logs, never escalated: the sweep
// reclaims anything left behind, and a dangling object is invisible once the
// record is gone.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	keys := make([]string, 0, len(item.Files)+2)
	if item.S3Key != "" {
		keys = append(keys, item.S3Key)
	}
	if item.ThumbnailKey != "" {
		keys = append(keys, item.ThumbnailKey)
	}
	for _, f := range item.Files {
		keys = append(keys, f.S3Key)
	}
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		if err := s.store.Delete(ctx, key); err != nil {
			logger.Error("failed to delete backing object", "media_id", id, "s3_key", key, "error", err)
		}
	}
	return nil
}

// Derivation kinds accepted by CompleteDerivation.
const (
	DerivedThumbnail = "thumbnail"
	DerivedSummary   = "summary"
)

// CompleteDerivation merges a worker-produced artifact into the record.
// Thumbnails only land while the record still waits on derivation: an
// explicit actor selection always wins over automatic derivation, whichever
// arrives first. Summaries are last-write-wins.
func (s *MediaService) CompleteDerivation(ctx context.Context, mediaID, kind, value string) error {
	tracer := otel.Tracer("media-service")
	ctx, span := tracer.Start(ctx, "media.complete_derivation")
	defer span.End()
	span.SetAttributes(
		attribute.String("media.id", mediaID),
		attribute.String("media.derived_kind", kind),
	)

	switch kind {
	case DerivedThumbnail:
		applied, err := s.repo.SetThumbnailIfPending(ctx, mediaID, value)
		if err != nil {
			return err
		}
		if !applied {
			item, err := s.repo.Get(ctx, mediaID)
			if err != nil {
				return err
			}
			if item == nil {
				return ErrNotFound
			}
			return ErrAlreadyResolved
		}
	case DerivedSummary:
		applied, err := s.repo.SetSummary(ctx, mediaID, value)
		if err != nil {
			return err
		}
		if !applied {
			return ErrNotFound
		}
	default:
		return fmt.Errorf("unknown derivation kind %q", kind)
	}

	s.metrics.IncDerivationsCompleted(ctx, kind)
	return nil
}

package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/hibiken/asynq"

	"ows-backend/internal/ai"
	"ows-backend/internal/config"
	"ows-backend/internal/logger"
	"ows-backend/internal/storage"
	"ows-backend/models"
	"ows-backend/services"
)

// TaskProcessor runs the derivation handlers in the worker binary.
type TaskProcessor struct {
	store  *storage.S3Store
	media  *services.MediaService
	gemini *ai.GeminiClient
	cfg    *config.Config
}

func NewTaskProcessor(store *storage.S3Store, media *services.MediaService, gemini *ai.GeminiClient, cfg *config.Config) *TaskProcessor {
	return &TaskProcessor{
		store:  store,
		media:  media,
		gemini: gemini,
		cfg:    cfg,
	}
}

// HandleThumbnailTask derives a thumbnail for the item's primary object and
// reports completion. The completion write is conditional on the record
// still being pending: losing that race to a manual upload is success, not
// an error, so those outcomes are swallowed rather than retried.
func (p *TaskProcessor) HandleThumbnailTask(ctx context.Context, t *asynq.Task) error {
	var payload ThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid thumbnail payload: %v: %w", err, asynq.SkipRetry)
	}

	mt, ok := models.ParseMediaType(payload.MediaType)
	if !ok {
		return fmt.Errorf("unknown media type %q: %w", payload.MediaType, asynq.SkipRetry)
	}

	var src image.Image
	switch mt {
	case models.MediaTypeImage:
		data, err := p.store.Get(ctx, payload.S3Key)
		if err != nil {
			return fmt.Errorf("failed to fetch source object: %w", err)
		}
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return fmt.Errorf("failed to decode image %s: %v: %w", payload.S3Key, err, asynq.SkipRetry)
		}
		src = img
	case models.MediaTypeVideo:
		img, err := p.captureVideoFrame(ctx, payload.S3Key)
		if err != nil {
			return err
		}
		src = img
	case models.MediaTypeAudio:
		// Audio has no visual to derive; the record stays pending and the
		// client renders its default icon.
		logger.Info("skipping thumbnail derivation for audio", "media_id", payload.MediaID)
		return nil
	}

	thumb := imaging.Fit(src, p.cfg.ThumbnailSize, p.cfg.ThumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	key := storage.ThumbnailKey(payload.MediaID, "thumb.jpg")
	if err := p.store.Put(ctx, key, "image/jpeg", buf.Bytes()); err != nil {
		return fmt.Errorf("failed to store thumbnail: %w", err)
	}

	err := p.media.CompleteDerivation(ctx, payload.MediaID, services.DerivedThumbnail, key)
	switch {
	case errors.Is(err, services.ErrAlreadyResolved):
		logger.Info("thumbnail already resolved, discarding derived artifact", "media_id", payload.MediaID)
		if delErr := p.store.Delete(ctx, key); delErr != nil {
			logger.Warn("failed to delete losing thumbnail", "s3_key", key, "error", delErr)
		}
		return nil
	case errors.Is(err, services.ErrNotFound):
		logger.Warn("record vanished before thumbnail completion", "media_id", payload.MediaID)
		return nil
	case err != nil:
		return err
	}

	logger.Info("thumbnail derived", "media_id", payload.MediaID, "s3_key", key)
	return nil
}

// captureVideoFrame grabs a frame one second in via ffmpeg. The object is
// staged to a temp file because ffmpeg needs a seekable input for most
// containers.
func (p *TaskProcessor) captureVideoFrame(ctx context.Context, s3Key string) (image.Image, error) {
	data, err := p.store.Get(ctx, s3Key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source object: %w", err)
	}

	dir, err := os.MkdirTemp("", "framecap")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, "source"+filepath.Ext(s3Key))
	if err := os.WriteFile(srcPath, data, 0o600); err != nil {
		return nil, err
	}
	framePath := filepath.Join(dir, "frame.jpg")

	cmd := exec.CommandContext(ctx, p.cfg.FFmpegPath,
		"-ss", "1",
		"-i", srcPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", framePath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame capture failed: %v: %s: %w", err, stderr.String(), asynq.SkipRetry)
	}

	img, err := imaging.Open(framePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read captured frame: %w", err)
	}
	return img, nil
}

// HandleSummaryTask asks Gemini for the one-sentence description. Summary
// completion is last-write-wins, so retries are always safe.
func (p *TaskProcessor) HandleSummaryTask(ctx context.Context, t *asynq.Task) error {
	var payload SummaryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid summary payload: %v: %w", err, asynq.SkipRetry)
	}

	if p.gemini == nil {
		logger.Warn("summary generation not configured, dropping task", "media_id", payload.MediaID)
		return nil
	}

	mt, _ := models.ParseMediaType(payload.MediaType)

	summary, err := p.gemini.GenerateMediaSummary(ctx, payload.Title, mt)
	if err != nil {
		return fmt.Errorf("summary generation failed: %w", err)
	}

	err = p.media.CompleteDerivation(ctx, payload.MediaID, services.DerivedSummary, summary)
	if errors.Is(err, services.ErrNotFound) {
		logger.Warn("record vanished before summary completion", "media_id", payload.MediaID)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("summary derived", "media_id", payload.MediaID)
	return nil
}

package services

import (
	"context"
	"errors"
	"time"

	"ows-backend/internal/logger"
)

// ObjectLister is the storage surface the sweep walks.
type ObjectLister interface {
	List(ctx context.Context, prefix string, fn func(key string, lastModified time.Time) error) error
	Delete(ctx context.Context, key string) error
}

// KeyReferencer answers whether any stored record points at a storage key.
type KeyReferencer interface {
	ReferencesKey(ctx context.Context, key string) (bool, error)
}

// SweepService reclaims orphaned objects: uploads whose ticket expired
// before commit, and leftovers from partial deletes. An object is an orphan
// when no record references its key and it is older than the minimum age,
// which keeps the sweep from racing an in-flight commit.
type SweepService struct {
	store       ObjectLister
	referencers []KeyReferencer
	minAge      time.Duration
}

func NewSweepService(store ObjectLister, minAge time.Duration, referencers ...KeyReferencer) *SweepService {
	return &SweepService{store: store, referencers: referencers, minAge: minAge}
}

// Sweep walks the media and thumbnail prefixes once. Individual failures
// are logged and skipped so one bad object never stalls the pass.
func (s *SweepService) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.minAge)
	var scanned, removed int

	visit := func(key string, lastModified time.Time) error {
		scanned++
		if lastModified.After(cutoff) {
			return nil
		}
		for _, ref := range s.referencers {
			referenced, err := ref.ReferencesKey(ctx, key)
			if err != nil {
				logger.Warn("sweep reference check failed", "s3_key", key, "error", err)
				return nil
			}
			if referenced {
				return nil
			}
		}
		if err := s.store.Delete(ctx, key); err != nil {
			logger.Warn("sweep delete failed", "s3_key", key, "error", err)
			return nil
		}
		removed++
		logger.Info("sweep removed orphaned object", "s3_key", key)
		return nil
	}

	for _, prefix := range []string{"media/", "thumbnails/", "press/"} {
		if err := s.store.List(ctx, prefix, visit); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("sweep listing failed", "prefix", prefix, "error", err)
		}
	}

	logger.Info("sweep pass complete", "scanned", scanned, "removed", removed)
	return nil
}

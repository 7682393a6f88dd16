package services

import (
	"context"
	"testing"
	"time"

	"ows-backend/models"
)

type fakeLister struct {
	objects map[string]time.Time
	deleted []string
}

func (f *fakeLister) List(ctx context.Context, prefix string, fn func(key string, lastModified time.Time) error) error {
	for key, mod := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			if err := fn(key, mod); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeLister) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func TestSweepRemovesOnlyOldOrphans(t *testing.T) {
	old := time.Now().Add(-3 * time.Hour)
	fresh := time.Now().Add(-10 * time.Minute)

	lister := &fakeLister{objects: map[string]time.Time{
		"media/image/orphan/a.jpg":   old,   // orphaned and old: reclaim
		"media/image/kept/b.jpg":     old,   // referenced: keep
		"media/image/recent/c.jpg":   fresh, // orphaned but young: keep
		"thumbnails/orphan/d.jpg":    old,   // orphaned thumbnail: reclaim
		"thumbnails/kept/e.jpg":      old,   // referenced thumbnail: keep
	}}

	repo := newFakeRepo()
	repo.items["kept"] = &models.MediaItem{
		ID:           "kept",
		S3Key:        "media/image/kept/b.jpg",
		ThumbnailKey: "thumbnails/kept/e.jpg",
		Files:        []models.MediaFile{{S3Key: "media/image/kept/b.jpg"}},
	}

	sweeper := NewSweepService(lister, 2*time.Hour, repo)
	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(lister.deleted) != 2 {
		t.Fatalf("expected exactly the two old orphans removed, got %v", lister.deleted)
	}
	for _, key := range []string{"media/image/kept/b.jpg", "media/image/recent/c.jpg", "thumbnails/kept/e.jpg"} {
		if _, ok := lister.objects[key]; !ok {
			t.Fatalf("%s should have survived the sweep", key)
		}
	}
}

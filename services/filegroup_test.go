package services

import (
	"testing"

	"ows-backend/models"
)

func TestFileGroupAddReplacesInPlace(t *testing.T) {
	g := NewFileGroup("m1")
	g.Add(models.MediaFile{S3Key: "k1", Filename: "a.jpg", ContentType: "image/jpeg"})
	g.Add(models.MediaFile{S3Key: "k2", Filename: "b.jpg", ContentType: "image/jpeg"})
	g.Add(models.MediaFile{S3Key: "k1", Filename: "a-renamed.jpg", ContentType: "image/jpeg"})

	files := g.Files()
	if len(files) != 2 {
		t.Fatalf("re-adding a key must not grow the group, got %d files", len(files))
	}
	if files[0].S3Key != "k1" || files[0].Filename != "a-renamed.jpg" {
		t.Fatalf("re-added key should keep its position with updated metadata, got %+v", files[0])
	}
}

func TestFileGroupRemoveAbsentKey(t *testing.T) {
	g := NewFileGroup("m1")
	g.Add(models.MediaFile{S3Key: "k1"})
	g.Remove("missing")
	if g.Len() != 1 {
		t.Fatalf("removing an absent key must be a no-op, got %d files", g.Len())
	}
	g.Remove("k1")
	g.Remove("k1")
	if g.Len() != 0 {
		t.Fatalf("double remove should leave the group empty, got %d files", g.Len())
	}
}

func TestFileGroupFilesReturnsCopy(t *testing.T) {
	g := NewFileGroup("m1")
	g.Add(models.MediaFile{S3Key: "k1"})

	files := g.Files()
	files[0].S3Key = "mutated"

	if g.Files()[0].S3Key != "k1" {
		t.Fatalf("Files must return a copy, internal state was mutated")
	}
}

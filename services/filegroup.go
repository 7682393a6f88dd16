package services

import "ows-backend/models"

// FileGroup tracks the intended file set of one media item while its uploads
// are in flight. It records intent only; object existence is verified at
// commit time, never here.
//
// Insertion order is preserved because it is the tie-break for automatic
// thumbnail selection. It carries no other meaning.
type FileGroup struct {
	id    string
	files []models.MediaFile
}

func NewFileGroup(id string) *FileGroup {
	return &FileGroup{id: id}
}

func (g *FileGroup) ID() string {
	return g.id
}

// Add appends a file descriptor. Re-adding a key updates the entry in place
// so a retried upload keeps its original position.
func (g *FileGroup) Add(f models.MediaFile) {
	for i, existing := range g.files {
		if existing.S3Key == f.S3Key {
			g.files[i] = f
			return
		}
	}
	g.files = append(g.files, f)
}

// Remove drops the entry for key. Removing an absent key is a no-op: a user
// may retry a failed upload and then clear the stale entry.
func (g *FileGroup) Remove(key string) {
	for i, f := range g.files {
		if f.S3Key == key {
			g.files = append(g.files[:i], g.files[i+1:]...)
			return
		}
	}
}

// Files returns the descriptors in insertion order.
func (g *FileGroup) Files() []models.MediaFile {
	out := make([]models.MediaFile, len(g.files))
	copy(out, g.files)
	return out
}

func (g *FileGroup) Len() int {
	return len(g.files)
}

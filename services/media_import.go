package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"ows-backend/models"
)

var importClient = &http.Client{Timeout: 60 * time.Second}

// ImportFromURL downloads a remote object server-side and commits it as a
// single-file media item, so editors can pull in press photos or clips
// without a manual download/upload round trip.
func (s *MediaService) ImportFromURL(ctx context.Context, req models.ImportFromURLRequest, actorID string) (*models.MediaItem, error) {
	mt, ok := models.ParseMediaType(req.MediaType)
	if !ok {
		return nil, ErrInvalidContentType
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid import URL: %w", err)
	}
	resp, err := importClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch import URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("import URL returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !strings.HasPrefix(contentType, string(mt)+"/") {
		return nil, ErrInvalidContentType
	}

	// One byte over the cap means the read hit the limit and the true size
	// is unknown; reject rather than store a truncated object.
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read import body: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxImportSize {
		return nil, fmt.Errorf("import exceeds %d byte limit", s.cfg.MaxImportSize)
	}

	filename := importFilename(req.URL, contentType)

	ticket, err := s.IssueTicket(ctx, models.UploadTicketRequest{
		Filename:    filename,
		ContentType: contentType,
		MediaType:   req.MediaType,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, ticket.S3Key, contentType, data); err != nil {
		return nil, fmt.Errorf("failed to store imported object: %w", err)
	}

	group := NewFileGroup(ticket.MediaID)
	group.Add(models.MediaFile{
		S3Key:       ticket.S3Key,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
	})

	title := req.Title
	if title == "" {
		title = strings.TrimSuffix(filename, path.Ext(filename))
	}

	return s.Commit(ctx, models.CommitMediaRequest{
		ID:         group.ID(),
		Title:      title,
		MediaType:  req.MediaType,
		Files:      group.Files(),
		Categories: req.Categories,
		Public:     req.Public,
		Format:     fileExtOf(filename),
	}, actorID)
}

func fileExtOf(filename string) string {
	return strings.TrimPrefix(path.Ext(filename), ".")
}

// importFilename derives a stored filename from the source URL, falling
// back to the content type's preferred extension when the URL has none.
func importFilename(rawURL, contentType string) string {
	base := path.Base(rawURL)
	if idx := strings.IndexAny(base, "?#"); idx >= 0 {
		base = base[:idx]
	}
	if base != "" && base != "." && base != "/" && path.Ext(base) != "" {
		return base
	}
	exts, err := mime.ExtensionsByType(contentType)
	if err == nil && len(exts) > 0 {
		return "import" + exts[0]
	}
	return "import.bin"
}

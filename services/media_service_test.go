package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ows-backend/internal/config"
	"ows-backend/models"
)

type fakeStore struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://s3.test/put/" + key, nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://s3.test/get/" + key, nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeRepo struct {
	items map[string]*models.MediaItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*models.MediaItem)}
}

func (f *fakeRepo) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (f *fakeRepo) Upsert(ctx context.Context, item *models.MediaItem) error {
	copied := *item
	if existing, ok := f.items[item.ID]; ok {
		copied.AddedBy = existing.AddedBy
		copied.AddedAt = existing.AddedAt
	}
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeRepo) List(ctx context.Context, publicOnly bool) ([]*models.MediaItem, error) {
	var out []*models.MediaItem
	for _, item := range f.items {
		if publicOnly && !item.Public {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeRepo) CountFiles(ctx context.Context, id string) (int, error) {
	if item, ok := f.items[id]; ok {
		return len(item.Files), nil
	}
	return 0, nil
}

func (f *fakeRepo) SetThumbnailIfPending(ctx context.Context, id, key string) (bool, error) {
	item, ok := f.items[id]
	if !ok || !item.ThumbnailPending {
		return false, nil
	}
	item.ThumbnailKey = key
	item.ThumbnailPending = false
	return true, nil
}

func (f *fakeRepo) SetSummary(ctx context.Context, id, summary string) (bool, error) {
	item, ok := f.items[id]
	if !ok {
		return false, nil
	}
	item.AISummary = summary
	return true, nil
}

func (f *fakeRepo) ReferencesKey(ctx context.Context, key string) (bool, error) {
	for _, item := range f.items {
		if item.S3Key == key || item.ThumbnailKey == key {
			return true, nil
		}
		for _, file := range item.Files {
			if file.S3Key == key {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeTickets struct {
	tickets map[string]string
	pending map[string]int64
}

func newFakeTickets() *fakeTickets {
	return &fakeTickets{tickets: make(map[string]string), pending: make(map[string]int64)}
}

func (f *fakeTickets) Register(ctx context.Context, key, groupID string, ttl time.Duration) error {
	f.tickets[key] = groupID
	return nil
}

func (f *fakeTickets) Consume(ctx context.Context, key string) (bool, error) {
	if _, ok := f.tickets[key]; !ok {
		return false, nil
	}
	delete(f.tickets, key)
	return true, nil
}

func (f *fakeTickets) ReservePending(ctx context.Context, groupID string, ttl time.Duration) (int64, error) {
	f.pending[groupID]++
	return f.pending[groupID], nil
}

func (f *fakeTickets) ReleasePending(ctx context.Context, groupID string) error {
	if f.pending[groupID] > 0 {
		f.pending[groupID]--
	}
	return nil
}

type fakeDispatcher struct {
	thumbnails []string
	summaries  []string
}

func (f *fakeDispatcher) DispatchThumbnail(ctx context.Context, mediaID, s3Key string, mediaType models.MediaType) error {
	f.thumbnails = append(f.thumbnails, mediaID)
	return nil
}

func (f *fakeDispatcher) DispatchSummary(ctx context.Context, mediaID, title string, mediaType models.MediaType) error {
	f.summaries = append(f.summaries, mediaID)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		TicketTTL:       time.Hour,
		PresignGetTTL:   time.Hour,
		MaxFilesPerItem: 15,
		MaxImportSize:   50 * 1024 * 1024,
	}
}

func newTestService() (*MediaService, *fakeStore, *fakeRepo, *fakeTickets, *fakeDispatcher) {
	store := newFakeStore()
	repo := newFakeRepo()
	tickets := newFakeTickets()
	dispatch := &fakeDispatcher{}
	svc := NewMediaService(store, repo, tickets, dispatch, testConfig(), nil)
	return svc, store, repo, tickets, dispatch
}

func TestIssueTicketContentTypeMismatch(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.IssueTicket(context.Background(), models.UploadTicketRequest{
		Filename:    "track.mp3",
		ContentType: "audio/mpeg",
		MediaType:   "image",
	})
	if !errors.Is(err, ErrInvalidContentType) {
		t.Fatalf("audio content for an image item should fail, got %v", err)
	}
}

func TestIssueTicketRegistersAndPresigns(t *testing.T) {
	svc, _, _, tickets, _ := newTestService()

	ticket, err := svc.IssueTicket(context.Background(), models.UploadTicketRequest{
		Filename:    "cover.png",
		ContentType: "image/png",
		MediaType:   "image",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.UploadURL == "" || ticket.S3Key == "" || ticket.MediaID == "" {
		t.Fatalf("incomplete ticket: %+v", ticket)
	}
	if _, ok := tickets.tickets[ticket.S3Key]; !ok {
		t.Fatalf("ticket was not registered for %s", ticket.S3Key)
	}
}

func TestIssueTicketCapAcrossOutstandingTickets(t *testing.T) {
	svc, _, _, tickets, _ := newTestService()
	ctx := context.Background()

	var groupID string
	for i := 0; i < 15; i++ {
		ticket, err := svc.IssueTicket(ctx, models.UploadTicketRequest{
			Filename:    fmt.Sprintf("photo-%d.jpg", i),
			ContentType: "image/jpeg",
			MediaType:   "image",
			MediaID:     groupID,
		})
		if err != nil {
			t.Fatalf("ticket %d should succeed: %v", i, err)
		}
		groupID = ticket.MediaID
	}

	_, err := svc.IssueTicket(ctx, models.UploadTicketRequest{
		Filename:    "one-too-many.jpg",
		ContentType: "image/jpeg",
		MediaType:   "image",
		MediaID:     groupID,
	})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("16th outstanding ticket should exceed the cap, got %v", err)
	}
	if tickets.pending[groupID] != 15 {
		t.Fatalf("rejected reservation must be released, pending=%d", tickets.pending[groupID])
	}
}

func TestIssueTicketCapCountsCommittedFiles(t *testing.T) {
	svc, _, repo, _, _ := newTestService()
	ctx := context.Background()

	files := make([]models.MediaFile, 15)
	for i := range files {
		files[i] = models.MediaFile{S3Key: fmt.Sprintf("media/image/full/%d.jpg", i), ContentType: "image/jpeg"}
	}
	repo.items["full"] = &models.MediaItem{ID: "full", Files: files}

	_, err := svc.IssueTicket(ctx, models.UploadTicketRequest{
		Filename:    "extra.jpg",
		ContentType: "image/jpeg",
		MediaType:   "image",
		MediaID:     "full",
	})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("full item should reject new tickets, got %v", err)
	}
}

func TestCommitFailsOnMissingObjects(t *testing.T) {
	svc, store, repo, _, _ := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/image/m1/a.jpg", "image/jpeg", []byte("a"))

	req := models.CommitMediaRequest{
		ID:        "m1",
		Title:     "Gallery",
		MediaType: "image",
		Files: []models.MediaFile{
			{S3Key: "media/image/m1/a.jpg", ContentType: "image/jpeg"},
			{S3Key: "media/image/m1/b.jpg", ContentType: "image/jpeg"},
		},
	}

	_, err := svc.Commit(ctx, req, "user-1")
	var incomplete *IncompleteUploadError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteUploadError, got %v", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != "media/image/m1/b.jpg" {
		t.Fatalf("missing set should name exactly the absent key, got %v", incomplete.Missing)
	}
	if _, ok := repo.items["m1"]; ok {
		t.Fatalf("failed commit must not persist a record")
	}

	// Retry after the straggler lands.
	store.Put(ctx, "media/image/m1/b.jpg", "image/jpeg", []byte("b"))
	if _, err := svc.Commit(ctx, req, "user-1"); err != nil {
		t.Fatalf("retry with all objects present should succeed: %v", err)
	}
}

func TestCommitIdempotentOnRetry(t *testing.T) {
	svc, store, repo, _, _ := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/image/m1/a.jpg", "image/jpeg", []byte("a"))
	req := models.CommitMediaRequest{
		ID:        "m1",
		Title:     "Poster",
		MediaType: "image",
		Files:     []models.MediaFile{{S3Key: "media/image/m1/a.jpg", ContentType: "image/jpeg"}},
	}

	first, err := svc.Commit(ctx, req, "user-1")
	if err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	second, err := svc.Commit(ctx, req, "user-2")
	if err != nil {
		t.Fatalf("retried commit failed: %v", err)
	}

	if len(repo.items) != 1 {
		t.Fatalf("retry must not create a second record, have %d", len(repo.items))
	}
	if second.AddedBy != first.AddedBy || !second.AddedAt.Equal(first.AddedAt) {
		t.Fatalf("retry must preserve provenance: %s/%s vs %s/%s",
			first.AddedBy, first.AddedAt, second.AddedBy, second.AddedAt)
	}
}

func TestCommitDispatchesThumbnailOnlyWhenPending(t *testing.T) {
	svc, store, _, _, dispatch := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/image/m1/a.jpg", "image/jpeg", []byte("a"))
	_, err := svc.Commit(ctx, models.CommitMediaRequest{
		ID:        "m1",
		MediaType: "image",
		Files:     []models.MediaFile{{S3Key: "media/image/m1/a.jpg", ContentType: "image/jpeg"}},
	}, "user-1")
	if err != nil {
		t.Fatalf("image commit failed: %v", err)
	}
	if len(dispatch.thumbnails) != 0 {
		t.Fatalf("resolved image commit must not enqueue derivation")
	}

	store.Put(ctx, "media/video/m2/clip.mp4", "video/mp4", []byte("v"))
	item, err := svc.Commit(ctx, models.CommitMediaRequest{
		ID:        "m2",
		MediaType: "video",
		Files:     []models.MediaFile{{S3Key: "media/video/m2/clip.mp4", ContentType: "video/mp4"}},
	}, "user-1")
	if err != nil {
		t.Fatalf("video commit failed: %v", err)
	}
	if !item.ThumbnailPending {
		t.Fatalf("lone video should commit pending")
	}
	if len(dispatch.thumbnails) != 1 || dispatch.thumbnails[0] != "m2" {
		t.Fatalf("pending commit should enqueue exactly one derivation, got %v", dispatch.thumbnails)
	}
}

func TestCommitDispatchesSummaryOnFirstCommitOnly(t *testing.T) {
	svc, store, _, _, dispatch := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/image/m1/a.jpg", "image/jpeg", []byte("a"))
	req := models.CommitMediaRequest{
		ID:        "m1",
		Title:     "Live at the Roxy",
		MediaType: "image",
		Files:     []models.MediaFile{{S3Key: "media/image/m1/a.jpg", ContentType: "image/jpeg"}},
	}

	if _, err := svc.Commit(ctx, req, "user-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if _, err := svc.Commit(ctx, req, "user-1"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(dispatch.summaries) != 1 {
		t.Fatalf("summary should be enqueued once, got %d", len(dispatch.summaries))
	}
}

func TestCommitConsumesTickets(t *testing.T) {
	svc, store, _, tickets, _ := newTestService()
	ctx := context.Background()

	ticket, err := svc.IssueTicket(ctx, models.UploadTicketRequest{
		Filename:    "a.jpg",
		ContentType: "image/jpeg",
		MediaType:   "image",
	})
	if err != nil {
		t.Fatalf("ticket issuance failed: %v", err)
	}
	store.Put(ctx, ticket.S3Key, "image/jpeg", []byte("a"))

	_, err = svc.Commit(ctx, models.CommitMediaRequest{
		ID:        ticket.MediaID,
		MediaType: "image",
		Files:     []models.MediaFile{{S3Key: ticket.S3Key, ContentType: "image/jpeg"}},
	}, "user-1")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if _, ok := tickets.tickets[ticket.S3Key]; ok {
		t.Fatalf("commit must consume the ticket")
	}
	if tickets.pending[ticket.MediaID] != 0 {
		t.Fatalf("commit must release the pending reservation, have %d", tickets.pending[ticket.MediaID])
	}
}

func TestCompleteDerivationThumbnail(t *testing.T) {
	svc, store, repo, _, _ := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/video/m1/clip.mp4", "video/mp4", []byte("v"))
	if _, err := svc.Commit(ctx, models.CommitMediaRequest{
		ID:        "m1",
		MediaType: "video",
		Files:     []models.MediaFile{{S3Key: "media/video/m1/clip.mp4", ContentType: "video/mp4"}},
	}, "user-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := svc.CompleteDerivation(ctx, "m1", DerivedThumbnail, "thumbnails/m1/frame.jpg"); err != nil {
		t.Fatalf("first completion should apply: %v", err)
	}
	item := repo.items["m1"]
	if item.ThumbnailPending || item.ThumbnailKey != "thumbnails/m1/frame.jpg" {
		t.Fatalf("completion did not land: %+v", item)
	}

	err := svc.CompleteDerivation(ctx, "m1", DerivedThumbnail, "thumbnails/m1/late.jpg")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second completion should report AlreadyResolved, got %v", err)
	}
	if item.ThumbnailKey != "thumbnails/m1/frame.jpg" {
		t.Fatalf("late completion must not overwrite, got %q", item.ThumbnailKey)
	}

	if err := svc.CompleteDerivation(ctx, "ghost", DerivedThumbnail, "thumbnails/ghost/x.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown record should report NotFound, got %v", err)
	}
}

func TestExplicitSelectionBeatsLateDerivation(t *testing.T) {
	svc, store, repo, _, _ := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/video/m1/clip.mp4", "video/mp4", []byte("v"))
	if _, err := svc.Commit(ctx, models.CommitMediaRequest{
		ID:        "m1",
		MediaType: "video",
		Files:     []models.MediaFile{{S3Key: "media/video/m1/clip.mp4", ContentType: "video/mp4"}},
	}, "user-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// Actor uploads a custom thumbnail before the worker finishes.
	custom := "thumbnails/m1/custom.jpg"
	if _, err := svc.Update(ctx, models.UpdateMediaRequest{ID: "m1", ThumbnailKey: &custom}); err != nil {
		t.Fatalf("explicit selection failed: %v", err)
	}

	err := svc.CompleteDerivation(ctx, "m1", DerivedThumbnail, "thumbnails/m1/derived.jpg")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("derivation arriving after explicit selection must lose, got %v", err)
	}
	if repo.items["m1"].ThumbnailKey != custom {
		t.Fatalf("explicit selection was overwritten: %q", repo.items["m1"].ThumbnailKey)
	}
}

func TestCompleteDerivationSummaryLastWriteWins(t *testing.T) {
	svc, store, repo, _, _ := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/image/m1/a.jpg", "image/jpeg", []byte("a"))
	if _, err := svc.Commit(ctx, models.CommitMediaRequest{
		ID:        "m1",
		Title:     "Tour Poster",
		MediaType: "image",
		Files:     []models.MediaFile{{S3Key: "media/image/m1/a.jpg", ContentType: "image/jpeg"}},
	}, "user-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := svc.CompleteDerivation(ctx, "m1", DerivedSummary, "First take."); err != nil {
		t.Fatalf("summary completion failed: %v", err)
	}
	if err := svc.CompleteDerivation(ctx, "m1", DerivedSummary, "Second take."); err != nil {
		t.Fatalf("summary rewrite failed: %v", err)
	}
	if repo.items["m1"].AISummary != "Second take." {
		t.Fatalf("summary should be last-write-wins, got %q", repo.items["m1"].AISummary)
	}
}

func TestUpdateRejectsNonImageThumbnail(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/video/m1/clip.mp4", "video/mp4", []byte("v"))
	if _, err := svc.Commit(ctx, models.CommitMediaRequest{
		ID:        "m1",
		MediaType: "video",
		Files:     []models.MediaFile{{S3Key: "media/video/m1/clip.mp4", ContentType: "video/mp4"}},
	}, "user-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	bad := "media/video/m1/clip.mp4"
	_, err := svc.Update(ctx, models.UpdateMediaRequest{ID: "m1", ThumbnailKey: &bad})
	if !errors.Is(err, ErrInvalidThumbnailSelection) {
		t.Fatalf("video key in the thumbnail slot should be rejected, got %v", err)
	}
}

func TestUpdateRemovedFilesDeleted(t *testing.T) {
	svc, store, repo, _, _ := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/image/m1/a.jpg", "image/jpeg", []byte("a"))
	store.Put(ctx, "media/image/m1/b.jpg", "image/jpeg", []byte("b"))
	if _, err := svc.Commit(ctx, models.CommitMediaRequest{
		ID:        "m1",
		MediaType: "image",
		Files: []models.MediaFile{
			{S3Key: "media/image/m1/a.jpg", ContentType: "image/jpeg"},
			{S3Key: "media/image/m1/b.jpg", ContentType: "image/jpeg"},
		},
	}, "user-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	keep := []models.MediaFile{{S3Key: "media/image/m1/a.jpg", ContentType: "image/jpeg"}}
	if _, err := svc.Update(ctx, models.UpdateMediaRequest{ID: "m1", Files: &keep}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, ok := store.objects["media/image/m1/b.jpg"]; ok {
		t.Fatalf("removed file's object should be deleted")
	}
	if len(repo.items["m1"].Files) != 1 {
		t.Fatalf("record should hold only the kept file, got %d", len(repo.items["m1"].Files))
	}
}

func TestDeleteRemovesRecordAndObjects(t *testing.T) {
	svc, store, repo, _, _ := newTestService()
	ctx := context.Background()

	store.Put(ctx, "media/image/m1/a.jpg", "image/jpeg", []byte("a"))
	if _, err := svc.Commit(ctx, models.CommitMediaRequest{
		ID:        "m1",
		MediaType: "image",
		Files:     []models.MediaFile{{S3Key: "media/image/m1/a.jpg", ContentType: "image/jpeg"}},
	}, "user-1"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := svc.Delete(ctx, "m1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := repo.items["m1"]; ok {
		t.Fatalf("record should be gone")
	}
	if _, ok := store.objects["media/image/m1/a.jpg"]; ok {
		t.Fatalf("backing object should be gone")
	}

	if err := svc.Delete(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting a missing record should report NotFound, got %v", err)
	}
}

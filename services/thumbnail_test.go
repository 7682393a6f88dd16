package services

import (
	"errors"
	"testing"

	"ows-backend/models"
)

func imageFile(key string) models.MediaFile {
	return models.MediaFile{S3Key: key, Filename: "photo.jpg", ContentType: "image/jpeg", Size: 1024}
}

func videoFile(key string) models.MediaFile {
	return models.MediaFile{S3Key: key, Filename: "clip.mp4", ContentType: "video/mp4", Size: 1 << 20}
}

func audioFile(key string) models.MediaFile {
	return models.MediaFile{S3Key: key, Filename: "track.mp3", ContentType: "audio/mpeg", Size: 1 << 19}
}

func TestResolveThumbnailSingleImage(t *testing.T) {
	res, err := ResolveThumbnail([]models.MediaFile{imageFile("media/image/m1/a.jpg")}, models.MediaTypeImage, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Key != "media/image/m1/a.jpg" || res.Pending {
		t.Fatalf("expected implicit selection of the lone image, got %+v", res)
	}
}

func TestResolveThumbnailExplicitWins(t *testing.T) {
	files := []models.MediaFile{
		imageFile("media/image/m1/first.jpg"),
		imageFile("media/image/m1/second.jpg"),
	}
	res, err := ResolveThumbnail(files, models.MediaTypeImage, "media/image/m1/second.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Key != "media/image/m1/second.jpg" {
		t.Fatalf("explicit selection should win, got %q", res.Key)
	}
}

func TestResolveThumbnailExplicitNonImage(t *testing.T) {
	files := []models.MediaFile{
		videoFile("media/video/m1/clip.mp4"),
		imageFile("media/video/m1/cover.jpg"),
	}
	_, err := ResolveThumbnail(files, models.MediaTypeVideo, "media/video/m1/clip.mp4")
	if !errors.Is(err, ErrInvalidThumbnailSelection) {
		t.Fatalf("selecting a video file should fail, got %v", err)
	}
}

func TestResolveThumbnailExplicitRemovedFile(t *testing.T) {
	files := []models.MediaFile{imageFile("media/image/m1/kept.jpg")}
	_, err := ResolveThumbnail(files, models.MediaTypeImage, "media/image/m1/removed.jpg")
	if !errors.Is(err, ErrInvalidThumbnailSelection) {
		t.Fatalf("selection outside the group should fail closed, got %v", err)
	}
}

func TestResolveThumbnailFirstImageByInsertionOrder(t *testing.T) {
	files := []models.MediaFile{
		videoFile("media/video/m1/clip.mp4"),
		imageFile("media/video/m1/cover-a.jpg"),
		imageFile("media/video/m1/cover-b.jpg"),
	}
	res, err := ResolveThumbnail(files, models.MediaTypeVideo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Key != "media/video/m1/cover-a.jpg" {
		t.Fatalf("expected first image by insertion order, got %q", res.Key)
	}
}

func TestResolveThumbnailMultiFileNoImage(t *testing.T) {
	files := []models.MediaFile{
		audioFile("media/audio/m1/track1.mp3"),
		audioFile("media/audio/m1/track2.mp3"),
	}
	_, err := ResolveThumbnail(files, models.MediaTypeAudio, "")
	if !errors.Is(err, ErrUnresolvedThumbnail) {
		t.Fatalf("multi-file group without an image should be unresolvable, got %v", err)
	}
}

func TestResolveThumbnailLoneVideoPending(t *testing.T) {
	res, err := ResolveThumbnail([]models.MediaFile{videoFile("media/video/m1/clip.mp4")}, models.MediaTypeVideo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Pending || res.Key != "" {
		t.Fatalf("lone video should commit pending, got %+v", res)
	}
}

func TestResolveThumbnailLoneAudioPending(t *testing.T) {
	res, err := ResolveThumbnail([]models.MediaFile{audioFile("media/audio/m1/track.mp3")}, models.MediaTypeAudio, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Pending {
		t.Fatalf("lone audio should commit pending, got %+v", res)
	}
}

func TestResolveThumbnailReorderChangesPick(t *testing.T) {
	a := imageFile("media/image/m1/a.jpg")
	b := imageFile("media/image/m1/b.jpg")

	res1, err := ResolveThumbnail([]models.MediaFile{a, b}, models.MediaTypeImage, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res2, err := ResolveThumbnail([]models.MediaFile{b, a}, models.MediaTypeImage, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res1.Key == res2.Key {
		t.Fatalf("insertion order should drive the automatic pick")
	}
	if res1.Key != a.S3Key || res2.Key != b.S3Key {
		t.Fatalf("expected each ordering to pick its first image, got %q then %q", res1.Key, res2.Key)
	}
}

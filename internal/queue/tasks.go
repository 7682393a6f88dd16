package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"ows-backend/models"
)

const (
	TaskDeriveThumbnail = "derive:thumbnail"
	TaskDeriveSummary   = "derive:summary"
)

type ThumbnailPayload struct {
	MediaID   string `json:"media_id"`
	S3Key     string `json:"s3_key"`
	MediaType string `json:"media_type"`
}

type SummaryPayload struct {
	MediaID   string `json:"media_id"`
	Title     string `json:"title"`
	MediaType string `json:"media_type"`
}

// Task creators
func NewThumbnailTask(mediaID, s3Key string, mediaType models.MediaType) (*asynq.Task, error) {
	payload, err := json.Marshal(ThumbnailPayload{
		MediaID:   mediaID,
		S3Key:     s3Key,
		MediaType: string(mediaType),
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskDeriveThumbnail,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

func NewSummaryTask(mediaID, title string, mediaType models.MediaType) (*asynq.Task, error) {
	payload, err := json.Marshal(SummaryPayload{
		MediaID:   mediaID,
		Title:     title,
		MediaType: string(mediaType),
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskDeriveSummary,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
		asynq.Queue("default"),
	), nil
}

// Client wraps the asynq client as the dispatcher the pipeline enqueues
// through.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, redisPassword string, redisDB int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

func (c *Client) DispatchThumbnail(ctx context.Context, mediaID, s3Key string, mediaType models.MediaType) error {
	task, err := NewThumbnailTask(mediaID, s3Key, mediaType)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

func (c *Client) DispatchSummary(ctx context.Context, mediaID, title string, mediaType models.MediaType) error {
	task, err := NewSummaryTask(mediaID, title, mediaType)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}

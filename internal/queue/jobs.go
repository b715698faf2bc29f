package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// IndexDocumentTask is scheduled after an admin uploads a follow-up
	// document so its text becomes searchable.
	IndexDocumentTask = "document:index"
	// CleanupObjectTask removes an orphaned object from storage, e.g. when a
	// database write fails after the upload already succeeded.
	CleanupObjectTask = "storage:cleanup"
)

// IndexPayload tells the worker which object to download and which submission
// to attach the extracted text to.
type IndexPayload struct {
	SubmissionID string `json:"submission_id"`
	ObjectKey    string `json:"object_key"`
	ContentType  string `json:"content_type"`
}

// CleanupPayload carries the public URL of the object to delete.
type CleanupPayload struct {
	FileURL string `json:"file_url"`
}

// Client wraps an asynq client with typed enqueue helpers.
type Client struct {
	inner *asynq.Client
}

// NewClient constructs a Client.
func NewClient(inner *asynq.Client) *Client {
	return &Client{inner: inner}
}

// EnqueueIndex schedules a document indexing job.
func (c *Client) EnqueueIndex(ctx context.Context, payload IndexPayload) error {
	return c.enqueue(ctx, IndexDocumentTask, payload, asynq.MaxRetry(5))
}

// EnqueueCleanup schedules deletion of an orphaned object. Retries are
// generous since the object stays orphaned until one attempt succeeds.
func (c *Client) EnqueueCleanup(ctx context.Context, payload CleanupPayload) error {
	return c.enqueue(ctx, CleanupObjectTask, payload, asynq.MaxRetry(10))
}

func (c *Client) enqueue(ctx context.Context, name string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(name, data)
	if _, err := c.inner.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s task: %w", name, err)
	}
	return nil
}

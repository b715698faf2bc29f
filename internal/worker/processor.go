package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/hibiken/asynq"

	pdfutil "github.com/dharsanguruparan/IntakeDesk/internal/pdf"
	"github.com/dharsanguruparan/IntakeDesk/internal/queue"
)

// Snippet length stored for admin document search.
const maxDocTextRunes = 4000

// DocTextStore persists extracted document text. The submission repository
// implements it.
type DocTextStore interface {
	SetAdminDocText(ctx context.Context, id, text string) error
}

// ObjectStore is the slice of the storage gateway the worker needs.
type ObjectStore interface {
	Download(ctx context.Context, objectKey string) ([]byte, error)
	DeleteByURL(ctx context.Context, fileURL string) error
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	repo  DocTextStore
	store ObjectStore
}

// NewProcessor constructs a worker processor.
func NewProcessor(repo DocTextStore, store ObjectStore) *Processor {
	return &Processor{repo: repo, store: store}
}

// Handler registers the task handlers.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.IndexDocumentTask, p.handleIndexDocument)
	mux.HandleFunc(queue.CleanupObjectTask, p.handleCleanupObject)
	return mux
}

func (p *Processor) handleIndexDocument(ctx context.Context, task *asynq.Task) error {
	var payload queue.IndexPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if !strings.HasPrefix(payload.ContentType, "application/pdf") {
		log.Printf("skip indexing %s: content type %s", payload.ObjectKey, payload.ContentType)
		return nil
	}
	data, err := p.store.Download(ctx, payload.ObjectKey)
	if err != nil {
		return fmt.Errorf("download %s: %w", payload.ObjectKey, err)
	}
	snippet, err := pdfutil.ExtractSnippet(data, maxDocTextRunes)
	if err != nil {
		// A corrupt PDF will not get better on retry.
		return fmt.Errorf("extract text from %s: %v: %w", payload.ObjectKey, err, asynq.SkipRetry)
	}
	if err := p.repo.SetAdminDocText(ctx, payload.SubmissionID, snippet); err != nil {
		return fmt.Errorf("store doc text for %s: %w", payload.SubmissionID, err)
	}
	log.Printf("indexed admin document for submission %s (%d chars)", payload.SubmissionID, len(snippet))
	return nil
}

func (p *Processor) handleCleanupObject(ctx context.Context, task *asynq.Task) error {
	var payload queue.CleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := p.store.DeleteByURL(ctx, payload.FileURL); err != nil {
		return fmt.Errorf("cleanup %s: %w", payload.FileURL, err)
	}
	log.Printf("cleaned up orphaned object %s", payload.FileURL)
	return nil
}

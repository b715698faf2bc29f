package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/IntakeDesk/internal/queue"
)

type stubDocTextStore struct {
	texts map[string]string
	err   error
}

func (s *stubDocTextStore) SetAdminDocText(_ context.Context, id, text string) error {
	if s.err != nil {
		return s.err
	}
	if s.texts == nil {
		s.texts = make(map[string]string)
	}
	s.texts[id] = text
	return nil
}

type stubObjectStore struct {
	objects     map[string][]byte
	downloads   []string
	deleted     []string
	deleteErr   error
	downloadErr error
}

func (s *stubObjectStore) Download(_ context.Context, objectKey string) ([]byte, error) {
	s.downloads = append(s.downloads, objectKey)
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("no such object %s", objectKey)
	}
	return data, nil
}

func (s *stubObjectStore) DeleteByURL(_ context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return s.deleteErr
}

func indexTask(t *testing.T, payload queue.IndexPayload) *asynq.Task {
	t.Helper()
	return asynq.NewTask(queue.IndexDocumentTask, mustJSON(t, payload))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func TestHandleIndexDocumentSkipsNonPDF(t *testing.T) {
	repo := &stubDocTextStore{}
	store := &stubObjectStore{}
	p := NewProcessor(repo, store)
	task := indexTask(t, queue.IndexPayload{
		SubmissionID: "sub1",
		ObjectKey:    "admin_documents/sub1/x-photo.png",
		ContentType:  "image/png",
	})
	if err := p.handleIndexDocument(context.Background(), task); err != nil {
		t.Fatalf("non-PDF documents must be skipped, got %v", err)
	}
	if len(store.downloads) != 0 {
		t.Fatalf("nothing should be downloaded for a skipped document")
	}
	if len(repo.texts) != 0 {
		t.Fatalf("no text should be stored for a skipped document")
	}
}

func TestHandleIndexDocumentCorruptPDFSkipsRetry(t *testing.T) {
	repo := &stubDocTextStore{}
	store := &stubObjectStore{objects: map[string][]byte{
		"admin_documents/sub1/x-doc.pdf": []byte("definitely not a pdf"),
	}}
	p := NewProcessor(repo, store)
	task := indexTask(t, queue.IndexPayload{
		SubmissionID: "sub1",
		ObjectKey:    "admin_documents/sub1/x-doc.pdf",
		ContentType:  "application/pdf",
	})
	err := p.handleIndexDocument(context.Background(), task)
	if err == nil {
		t.Fatalf("expected error for corrupt PDF")
	}
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("corrupt PDF must not be retried, got %v", err)
	}
	if len(repo.texts) != 0 {
		t.Fatalf("no text should be stored for a corrupt document")
	}
}

func TestHandleIndexDocumentDownloadErrorRetries(t *testing.T) {
	repo := &stubDocTextStore{}
	store := &stubObjectStore{downloadErr: fmt.Errorf("storage unavailable")}
	p := NewProcessor(repo, store)
	task := indexTask(t, queue.IndexPayload{
		SubmissionID: "sub1",
		ObjectKey:    "admin_documents/sub1/x-doc.pdf",
		ContentType:  "application/pdf",
	})
	err := p.handleIndexDocument(context.Background(), task)
	if err == nil {
		t.Fatalf("expected error when download fails")
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("a transient download failure must stay retryable")
	}
}

func TestHandleIndexDocumentBadPayload(t *testing.T) {
	p := NewProcessor(&stubDocTextStore{}, &stubObjectStore{})
	task := asynq.NewTask(queue.IndexDocumentTask, []byte("not json"))
	if err := p.handleIndexDocument(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestHandleCleanupObject(t *testing.T) {
	store := &stubObjectStore{}
	p := NewProcessor(&stubDocTextStore{}, store)
	fileURL := "http://localhost:9000/intakedesk/aadhar_photos/orphan.jpg"
	task := asynq.NewTask(queue.CleanupObjectTask, mustJSON(t, queue.CleanupPayload{FileURL: fileURL}))
	if err := p.handleCleanupObject(context.Background(), task); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != fileURL {
		t.Fatalf("object not deleted: %v", store.deleted)
	}
}

func TestHandleCleanupObjectPropagatesError(t *testing.T) {
	store := &stubObjectStore{deleteErr: fmt.Errorf("still unavailable")}
	p := NewProcessor(&stubDocTextStore{}, store)
	task := asynq.NewTask(queue.CleanupObjectTask, mustJSON(t, queue.CleanupPayload{FileURL: "http://x/intakedesk/k"}))
	if err := p.handleCleanupObject(context.Background(), task); err == nil {
		t.Fatalf("delete failure must propagate so asynq retries")
	}
}

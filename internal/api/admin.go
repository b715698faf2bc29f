package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/IntakeDesk/internal/model"
	"github.com/dharsanguruparan/IntakeDesk/internal/queue"
)

const adminDocPrefix = "admin_documents"

func (s *Server) handleAdminSubmissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	if !s.authorize(w, r) {
		return
	}
	subs, err := s.store.List(r.Context())
	if err != nil {
		respondServerError(w, "Failed to fetch submissions", err)
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

// handleAdminSubmissionRoute dispatches /admin/submissions/{id} and
// /admin/submissions/{id}/upload-admin-doc.
func (s *Server) handleAdminSubmissionRoute(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/admin/submissions/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		respondError(w, http.StatusBadRequest, "Submission ID is required.")
		return
	}
	id := parts[0]
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSubmission(w, r, id)
		case http.MethodPut:
			s.handleUpdateSubmission(w, r, id)
		case http.MethodDelete:
			s.handleDeleteSubmission(w, r, id)
		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		}
		return
	}
	if len(parts) == 2 && parts[1] == "upload-admin-doc" {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
			return
		}
		s.handleUploadAdminDoc(w, r, id)
		return
	}
	respondError(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request, id string) {
	sub, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Submission not found.")
			return
		}
		respondServerError(w, "Failed to fetch submission.", err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateSubmission(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read update body.")
		return
	}
	upd, err := model.ParseSubmissionUpdate(body)
	if err != nil {
		if errors.Is(err, model.ErrEmptyUpdate) {
			respondError(w, http.StatusBadRequest, "No valid fields provided for update.")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid update payload.")
		return
	}
	if err := s.store.Update(r.Context(), id, upd); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Submission not found.")
			return
		}
		respondServerError(w, "Failed to update submission.", err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Submission updated successfully", ID: id})
}

func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Submission not found.")
			return
		}
		respondServerError(w, "Failed to delete submission.", err)
		return
	}
	// File removals are best effort and never block the record delete. Each
	// failure is logged and retried via the cleanup queue.
	for _, removal := range s.removeSubmissionFiles(ctx, sub) {
		if removal.err == nil {
			continue
		}
		log.Printf("delete file %s: %v", removal.url, removal.err)
		if qerr := s.queue.EnqueueCleanup(ctx, queue.CleanupPayload{FileURL: removal.url}); qerr != nil {
			log.Printf("enqueue cleanup for %s: %v", removal.url, qerr)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Submission not found.")
			return
		}
		respondServerError(w, "Failed to delete submission.", err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Submission deleted successfully", ID: id})
}

type fileRemoval struct {
	url string
	err error
}

// removeSubmissionFiles attempts to delete every stored file referenced by
// the record, one after the other, and reports a per-file outcome.
func (s *Server) removeSubmissionFiles(ctx context.Context, sub *model.Submission) []fileRemoval {
	candidates := []*string{sub.AadharPhotoURL, sub.AdminUploadedDocURL}
	var out []fileRemoval
	for _, fileURL := range candidates {
		if fileURL == nil || *fileURL == "" {
			continue
		}
		out = append(out, fileRemoval{url: *fileURL, err: s.files.DeleteByURL(ctx, *fileURL)})
	}
	return out
}

func (s *Server) handleUploadAdminDoc(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if _, err := s.store.Get(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Submission not found.")
			return
		}
		respondServerError(w, "Failed to upload document.", err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Expecting a multipart form.")
		return
	}
	file, header, err := r.FormFile("adminDocument")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No document file provided.")
		return
	}
	defer file.Close()
	if header.Size == 0 {
		respondError(w, http.StatusBadRequest, "Document file is empty.")
		return
	}
	objectKey := fmt.Sprintf("%s/%s/%s-%s", adminDocPrefix, id, uuid.NewString(), attachmentName(header.Filename))
	contentType := detectContentType(file, header)
	fileURL, err := s.files.Upload(ctx, objectKey, file, header.Size, contentType)
	if err != nil {
		respondServerError(w, "Failed to upload document.", err)
		return
	}
	if err := s.store.Update(ctx, id, model.DocURLUpdate(fileURL)); err != nil {
		if qerr := s.queue.EnqueueCleanup(ctx, queue.CleanupPayload{FileURL: fileURL}); qerr != nil {
			log.Printf("enqueue cleanup for %s: %v", fileURL, qerr)
		}
		respondServerError(w, "Failed to upload document.", err)
		return
	}
	if err := s.queue.EnqueueIndex(ctx, queue.IndexPayload{
		SubmissionID: id,
		ObjectKey:    objectKey,
		ContentType:  contentType,
	}); err != nil {
		log.Printf("enqueue index for %s: %v", id, err)
	}
	respondJSON(w, http.StatusOK, uploadResponse{Message: "Document uploaded successfully", FileURL: fileURL})
}

package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/IntakeDesk/internal/model"
	"github.com/dharsanguruparan/IntakeDesk/internal/queue"
)

const aadharPhotoPrefix = "aadhar_photos"

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSubmission(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

// handleCreateSubmission accepts the public intake form: required personal
// fields, optional email/message, and either an Aadhar photo or an Aadhar
// number, never both. Validation happens before any upload or insert.
func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Expecting a multipart form.")
		return
	}
	input := &model.SubmissionInput{
		FirstName:         formValue(r, "firstName"),
		LastName:          formValue(r, "lastName"),
		FatherName:        formValue(r, "fatherName"),
		AadharPhoneNumber: formValue(r, "aadharPhoneNumber"),
		HometownLocation:  formValue(r, "hometownLocation"),
		BloodGroup:        formValue(r, "bloodGroup"),
		Email:             formValue(r, "email"),
		Message:           formValue(r, "message"),
		AadharNumber:      formValue(r, "aadharNumber"),
	}
	if err := input.Validate(); err != nil {
		var missing *model.MissingFieldsError
		if errors.As(err, &missing) {
			respondError(w, http.StatusBadRequest, missing.Error())
			return
		}
		respondServerError(w, "Failed to process submission on server.", err)
		return
	}

	file, header, err := r.FormFile("aadharPhoto")
	hasPhoto := false
	if err == nil {
		defer file.Close()
		hasPhoto = header.Size > 0
	} else if !errors.Is(err, http.ErrMissingFile) {
		respondError(w, http.StatusBadRequest, "Invalid Aadhar photo upload.")
		return
	}
	if hasPhoto && input.AadharNumber != "" {
		respondError(w, http.StatusBadRequest, "Provide either an Aadhar photo or an Aadhar number, not both.")
		return
	}

	var photoURL *string
	if hasPhoto {
		objectKey := fmt.Sprintf("%s/%s-%s", aadharPhotoPrefix, uuid.NewString(), attachmentName(header.Filename))
		fileURL, err := s.files.Upload(ctx, objectKey, file, header.Size, detectContentType(file, header))
		if err != nil {
			respondServerError(w, "Failed to process submission on server.", err)
			return
		}
		photoURL = &fileURL
	}

	sub := input.Submission(photoURL)
	if err := s.store.Create(ctx, sub); err != nil {
		// The photo is already in storage; hand it to the cleanup task so it
		// does not stay orphaned.
		if photoURL != nil {
			if qerr := s.queue.EnqueueCleanup(ctx, queue.CleanupPayload{FileURL: *photoURL}); qerr != nil {
				log.Printf("enqueue cleanup for %s: %v", *photoURL, qerr)
			}
		}
		respondServerError(w, "Failed to process submission on server.", err)
		return
	}
	respondJSON(w, http.StatusCreated, createResponse{
		ID:      sub.ID,
		Message: "Submission received successfully!",
		Data:    sub,
	})
}

func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// attachmentName strips any client-supplied path components from a filename.
func attachmentName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return base
}

// detectContentType prefers the client-declared content type and falls back
// to sniffing the first 512 bytes.
func detectContentType(file multipart.File, header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	_, _ = file.Seek(0, io.SeekStart)
	return http.DetectContentType(buf[:n])
}

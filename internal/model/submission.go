// Package model contains the submission types shared across packages.
package model

import (
	"errors"
	"time"
)

// ErrNotFound is returned by any submission store when no record matches the
// requested id.
var ErrNotFound = errors.New("submission not found")

// Submission is one intake record. Pointer fields map to nullable columns and
// marshal as JSON null when unset, matching the wire format the dashboard
// expects.
type Submission struct {
	ID                  string            `json:"id"`
	FirstName           string            `json:"firstName"`
	LastName            string            `json:"lastName"`
	FatherName          string            `json:"fatherName"`
	AadharPhoneNumber   string            `json:"aadharPhoneNumber"`
	HometownLocation    string            `json:"hometownLocation"`
	BloodGroup          string            `json:"bloodGroup"`
	Email               *string           `json:"email"`
	Message             *string           `json:"message"`
	AadharPhotoURL      *string           `json:"aadharPhotoUrl"`
	AadharNumber        *string           `json:"aadharNumber"`
	AdminUploadedDocURL *string           `json:"adminUploadedDocUrl"`
	AdminDocText        *string           `json:"adminDocText,omitempty"`
	AdminNotes          map[string]string `json:"adminNotes"`
	SubmittedAt         time.Time         `json:"submittedAt"`
	LastAdminEditAt     *time.Time        `json:"lastAdminEditAt"`
}

// Clone returns a copy that shares no mutable state with the receiver.
// Pointer fields are reallocated so writes through the copy never reach the
// original.
func (s *Submission) Clone() *Submission {
	out := *s
	out.Email = cloneString(s.Email)
	out.Message = cloneString(s.Message)
	out.AadharPhotoURL = cloneString(s.AadharPhotoURL)
	out.AadharNumber = cloneString(s.AadharNumber)
	out.AdminUploadedDocURL = cloneString(s.AdminUploadedDocURL)
	out.AdminDocText = cloneString(s.AdminDocText)
	if s.LastAdminEditAt != nil {
		t := *s.LastAdminEditAt
		out.LastAdminEditAt = &t
	}
	if s.AdminNotes != nil {
		out.AdminNotes = make(map[string]string, len(s.AdminNotes))
		for k, v := range s.AdminNotes {
			out.AdminNotes[k] = v
		}
	}
	return &out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

package model

import (
	"errors"
	"testing"
)

func TestParseSubmissionUpdateAllowList(t *testing.T) {
	body := []byte(`{"firstName":"Jane","status":"Pending","adminNotes":{"Status":"Pending"}}`)
	upd, err := ParseSubmissionUpdate(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(upd.Fields) != 2 {
		t.Fatalf("expected 2 accepted fields, got %v", upd.Fields)
	}
	if _, ok := upd.Fields["status"]; ok {
		t.Fatalf("field outside the allow-list must be dropped")
	}
	if upd.Fields[FieldFirstName].(string) != "Jane" {
		t.Fatalf("firstName not parsed")
	}
	notes := upd.Fields[FieldAdminNotes].(map[string]string)
	if notes["Status"] != "Pending" {
		t.Fatalf("adminNotes not parsed: %v", notes)
	}
}

func TestParseSubmissionUpdateOnlyUnknownFields(t *testing.T) {
	_, err := ParseSubmissionUpdate([]byte(`{"status":"Pending","bogus":1}`))
	if !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
}

func TestParseSubmissionUpdateEmptyBody(t *testing.T) {
	_, err := ParseSubmissionUpdate([]byte(`{}`))
	if !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
}

func TestParseSubmissionUpdateBadType(t *testing.T) {
	if _, err := ParseSubmissionUpdate([]byte(`{"firstName":42}`)); err == nil {
		t.Fatalf("expected error for non-string firstName")
	}
	if _, err := ParseSubmissionUpdate([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestApplyNullClearsOptionalFields(t *testing.T) {
	email := "old@example.com"
	sub := &Submission{FirstName: "John", Email: &email, AdminNotes: map[string]string{"A": "B"}}
	upd, err := ParseSubmissionUpdate([]byte(`{"email":null,"adminNotes":null,"firstName":"Jane"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	upd.Apply(sub)
	if sub.Email != nil {
		t.Fatalf("email should be cleared")
	}
	if sub.AdminNotes != nil {
		t.Fatalf("adminNotes should be cleared")
	}
	if sub.FirstName != "Jane" {
		t.Fatalf("firstName should be updated")
	}
}

func TestDocURLUpdate(t *testing.T) {
	upd := DocURLUpdate("http://localhost:9000/intakedesk/admin_documents/id/doc.pdf")
	v, ok := upd.Fields[FieldAdminUploadedDocURL].(*string)
	if !ok || v == nil || *v == "" {
		t.Fatalf("doc url update malformed: %v", upd.Fields)
	}
}

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dharsanguruparan/IntakeDesk/internal/model"
)

func seed(t *testing.T, store *MemoryStore, firstName string, submittedAt time.Time) *model.Submission {
	t.Helper()
	sub := &model.Submission{
		FirstName:         firstName,
		LastName:          "Doe",
		FatherName:        "Richard Doe",
		AadharPhoneNumber: "9876543210",
		HometownLocation:  "Salem",
		BloodGroup:        "O+",
		SubmittedAt:       submittedAt,
	}
	if err := store.Create(context.Background(), sub); err != nil {
		t.Fatalf("create: %v", err)
	}
	return sub
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	oldest := seed(t, store, "a", base)
	middle := seed(t, store, "b", base.Add(time.Minute))
	newest := seed(t, store, "c", base.Add(2*time.Minute))

	subs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(subs))
	}
	if subs[0].ID != newest.ID || subs[1].ID != middle.ID || subs[2].ID != oldest.ID {
		t.Fatalf("records not ordered newest first: %v %v %v", subs[0].FirstName, subs[1].FirstName, subs[2].FirstName)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	email := "john@example.com"
	sub := seed(t, store, "John", time.Now().UTC())
	upd := &model.SubmissionUpdate{Fields: map[string]any{model.FieldEmail: &email}}
	if err := store.Update(context.Background(), sub.ID, upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.Get(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.FirstName = "mutated"
	*got.Email = "mutated@example.com"
	got.AdminNotes = map[string]string{"A": "B"}
	again, _ := store.Get(context.Background(), sub.ID)
	if again.FirstName != "John" {
		t.Fatalf("store state leaked to caller")
	}
	if again.Email == nil || *again.Email != "john@example.com" {
		t.Fatalf("writes through pointer fields must not reach the store, got %v", again.Email)
	}
	if again.AdminNotes != nil {
		t.Fatalf("notes must stay unset in the store")
	}
}

func TestMemoryStoreUpdateStampsEditTime(t *testing.T) {
	store := NewMemoryStore()
	sub := seed(t, store, "John", time.Now().UTC())
	upd, err := model.ParseSubmissionUpdate([]byte(`{"adminNotes":{"Status":"Pending"}}`))
	if err != nil {
		t.Fatalf("parse update: %v", err)
	}
	if err := store.Update(context.Background(), sub.ID, upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := store.Get(context.Background(), sub.ID)
	if got.AdminNotes["Status"] != "Pending" {
		t.Fatalf("notes not applied: %v", got.AdminNotes)
	}
	if got.LastAdminEditAt == nil {
		t.Fatalf("lastAdminEditAt not stamped")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if _, err := store.Get(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	upd := &model.SubmissionUpdate{Fields: map[string]any{model.FieldFirstName: "x"}}
	if err := store.Update(ctx, "nope", upd); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

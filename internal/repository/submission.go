package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/IntakeDesk/internal/model"
)

// SubmissionRepository wraps all SQL used by the API and the worker.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository constructs a repository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionColumns = `id, first_name, last_name, father_name, aadhar_phone_number,
	hometown_location, blood_group, email, message, aadhar_photo_url, aadhar_number,
	admin_uploaded_doc_url, admin_doc_text, admin_notes, submitted_at, last_admin_edit_at`

// Create inserts a new submission, assigning the id and submission timestamp.
func (r *SubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.SubmittedAt = time.Now().UTC()
	notes, err := encodeNotes(sub.AdminNotes)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, sub.ID, sub.FirstName, sub.LastName, sub.FatherName, sub.AadharPhoneNumber,
		sub.HometownLocation, sub.BloodGroup, sub.Email, sub.Message, sub.AadharPhotoURL,
		sub.AadharNumber, sub.AdminUploadedDocURL, sub.AdminDocText, notes,
		sub.SubmittedAt, sub.LastAdminEditAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Get returns a submission by id.
func (r *SubmissionRepository) Get(ctx context.Context, id string) (*model.Submission, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE id=$1
	`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("select submission: %w", err)
	}
	return sub, nil
}

// List returns every submission, newest first. An empty table yields an empty
// slice, not an error.
func (r *SubmissionRepository) List(ctx context.Context) ([]*model.Submission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+submissionColumns+` FROM submissions ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()
	out := make([]*model.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}

// updateColumns maps allow-listed wire field names onto table columns.
var updateColumns = map[string]string{
	model.FieldFirstName:           "first_name",
	model.FieldLastName:            "last_name",
	model.FieldFatherName:          "father_name",
	model.FieldAadharPhoneNumber:   "aadhar_phone_number",
	model.FieldHometownLocation:    "hometown_location",
	model.FieldBloodGroup:          "blood_group",
	model.FieldEmail:               "email",
	model.FieldMessage:             "message",
	model.FieldAadharNumber:        "aadhar_number",
	model.FieldAdminNotes:          "admin_notes",
	model.FieldAdminUploadedDocURL: "admin_uploaded_doc_url",
}

// Update applies a partial edit and stamps last_admin_edit_at. A zero
// RowsAffected means the id does not exist.
func (r *SubmissionRepository) Update(ctx context.Context, id string, upd *model.SubmissionUpdate) error {
	sets := make([]string, 0, len(upd.Fields)+1)
	args := make([]any, 0, len(upd.Fields)+2)
	for field, val := range upd.Fields {
		col, ok := updateColumns[field]
		if !ok {
			continue
		}
		if field == model.FieldAdminNotes {
			notes, err := encodeNotes(val.(map[string]string))
			if err != nil {
				return err
			}
			val = notes
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if len(sets) == 0 {
		return model.ErrEmptyUpdate
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("last_admin_edit_at=$%d", len(args)))
	args = append(args, id)
	stmt := fmt.Sprintf("UPDATE submissions SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// SetAdminDocText stores the indexed text snippet of the admin document. This
// is worker-side bookkeeping, so it does not touch last_admin_edit_at.
func (r *SubmissionRepository) SetAdminDocText(ctx context.Context, id, text string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE submissions SET admin_doc_text=$1 WHERE id=$2
	`, text, id)
	if err != nil {
		return fmt.Errorf("set admin doc text: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a submission row.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func encodeNotes(notes map[string]string) ([]byte, error) {
	if notes == nil {
		return nil, nil
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("encode admin notes: %w", err)
	}
	return data, nil
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var (
		sub       model.Submission
		email     sql.NullString
		message   sql.NullString
		photoURL  sql.NullString
		aadharNum sql.NullString
		docURL    sql.NullString
		docText   sql.NullString
		notes     []byte
		editedAt  sql.NullTime
	)
	if err := row.Scan(&sub.ID, &sub.FirstName, &sub.LastName, &sub.FatherName,
		&sub.AadharPhoneNumber, &sub.HometownLocation, &sub.BloodGroup,
		&email, &message, &photoURL, &aadharNum, &docURL, &docText, &notes,
		&sub.SubmittedAt, &editedAt); err != nil {
		return nil, err
	}
	sub.Email = nullableString(email)
	sub.Message = nullableString(message)
	sub.AadharPhotoURL = nullableString(photoURL)
	sub.AadharNumber = nullableString(aadharNum)
	sub.AdminUploadedDocURL = nullableString(docURL)
	sub.AdminDocText = nullableString(docText)
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &sub.AdminNotes); err != nil {
			return nil, fmt.Errorf("decode admin notes: %w", err)
		}
	}
	if editedAt.Valid {
		t := editedAt.Time
		sub.LastAdminEditAt = &t
	}
	return &sub, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

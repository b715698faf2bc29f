package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Field names accepted by the admin edit path. Anything outside this set is
// ignored even if present in the request body.
const (
	FieldFirstName           = "firstName"
	FieldLastName            = "lastName"
	FieldFatherName          = "fatherName"
	FieldAadharPhoneNumber   = "aadharPhoneNumber"
	FieldHometownLocation    = "hometownLocation"
	FieldBloodGroup          = "bloodGroup"
	FieldEmail               = "email"
	FieldMessage             = "message"
	FieldAadharNumber        = "aadharNumber"
	FieldAdminNotes          = "adminNotes"
	FieldAdminUploadedDocURL = "adminUploadedDocUrl"
)

// ErrEmptyUpdate signals that a request body contained no allow-listed fields.
var ErrEmptyUpdate = errors.New("no valid fields provided for update")

// SubmissionUpdate is a partial update keyed by the wire field name. Values
// are string for required fields, *string for nullable ones (nil clears the
// column) and map[string]string for adminNotes.
type SubmissionUpdate struct {
	Fields map[string]any
}

type updateSetter func(*SubmissionUpdate, json.RawMessage) error

var updateSetters = map[string]updateSetter{
	FieldFirstName:           stringSetter(FieldFirstName),
	FieldLastName:            stringSetter(FieldLastName),
	FieldFatherName:          stringSetter(FieldFatherName),
	FieldAadharPhoneNumber:   stringSetter(FieldAadharPhoneNumber),
	FieldHometownLocation:    stringSetter(FieldHometownLocation),
	FieldBloodGroup:          stringSetter(FieldBloodGroup),
	FieldEmail:               nullableStringSetter(FieldEmail),
	FieldMessage:             nullableStringSetter(FieldMessage),
	FieldAadharNumber:        nullableStringSetter(FieldAadharNumber),
	FieldAdminUploadedDocURL: nullableStringSetter(FieldAdminUploadedDocURL),
	FieldAdminNotes:          setAdminNotes,
}

// ParseSubmissionUpdate decodes an admin edit body against the allow-list.
// Unknown keys are dropped; a body yielding no accepted fields returns
// ErrEmptyUpdate.
func ParseSubmissionUpdate(body []byte) (*SubmissionUpdate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode update body: %w", err)
	}
	upd := &SubmissionUpdate{Fields: make(map[string]any)}
	for key, val := range raw {
		setter, ok := updateSetters[key]
		if !ok {
			continue
		}
		if err := setter(upd, val); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
	}
	if len(upd.Fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	return upd, nil
}

// DocURLUpdate builds the single-field update used after an admin document
// upload.
func DocURLUpdate(fileURL string) *SubmissionUpdate {
	return &SubmissionUpdate{Fields: map[string]any{
		FieldAdminUploadedDocURL: &fileURL,
	}}
}

func stringSetter(field string) updateSetter {
	return func(u *SubmissionUpdate, raw json.RawMessage) error {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		u.Fields[field] = v
		return nil
	}
}

func nullableStringSetter(field string) updateSetter {
	return func(u *SubmissionUpdate, raw json.RawMessage) error {
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		u.Fields[field] = v
		return nil
	}
}

func setAdminNotes(u *SubmissionUpdate, raw json.RawMessage) error {
	var v map[string]string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	u.Fields[FieldAdminNotes] = v
	return nil
}

// Apply mutates a submission in place. Shared by the in-memory store; the SQL
// repository translates the same field set into an UPDATE statement.
func (u *SubmissionUpdate) Apply(sub *Submission) {
	for field, val := range u.Fields {
		switch field {
		case FieldFirstName:
			sub.FirstName = val.(string)
		case FieldLastName:
			sub.LastName = val.(string)
		case FieldFatherName:
			sub.FatherName = val.(string)
		case FieldAadharPhoneNumber:
			sub.AadharPhoneNumber = val.(string)
		case FieldHometownLocation:
			sub.HometownLocation = val.(string)
		case FieldBloodGroup:
			sub.BloodGroup = val.(string)
		case FieldEmail:
			sub.Email = val.(*string)
		case FieldMessage:
			sub.Message = val.(*string)
		case FieldAadharNumber:
			sub.AadharNumber = val.(*string)
		case FieldAdminUploadedDocURL:
			sub.AdminUploadedDocURL = val.(*string)
		case FieldAdminNotes:
			sub.AdminNotes = val.(map[string]string)
		}
	}
}

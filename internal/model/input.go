package model

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SubmissionInput carries the trimmed text fields of the public intake form.
type SubmissionInput struct {
	FirstName         string `validate:"required"`
	LastName          string `validate:"required"`
	FatherName        string `validate:"required"`
	AadharPhoneNumber string `validate:"required"`
	HometownLocation  string `validate:"required"`
	BloodGroup        string `validate:"required"`
	Email             string
	Message           string
	AadharNumber      string
}

// jsonFieldNames maps struct field names to the wire names used in responses.
var jsonFieldNames = map[string]string{
	"FirstName":         "firstName",
	"LastName":          "lastName",
	"FatherName":        "fatherName",
	"AadharPhoneNumber": "aadharPhoneNumber",
	"HometownLocation":  "hometownLocation",
	"BloodGroup":        "bloodGroup",
}

// MissingFieldsError names every required field absent from a create payload.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// Validate checks the required fields and reports all missing ones at once so
// the form can highlight each of them.
func (in *SubmissionInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if wire, ok := jsonFieldNames[name]; ok {
			name = wire
		}
		missing = append(missing, name)
	}
	return &MissingFieldsError{Fields: missing}
}

// Submission builds the record to insert, normalizing blank optional fields to
// null. The photo URL is supplied by the caller once the upload has finished.
func (in *SubmissionInput) Submission(photoURL *string) *Submission {
	return &Submission{
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		FatherName:        in.FatherName,
		AadharPhoneNumber: in.AadharPhoneNumber,
		HometownLocation:  in.HometownLocation,
		BloodGroup:        in.BloodGroup,
		Email:             optionalString(in.Email),
		Message:           optionalString(in.Message),
		AadharPhotoURL:    photoURL,
		AadharNumber:      optionalString(in.AadharNumber),
	}
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

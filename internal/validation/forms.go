// Package validation validates user input client-side before any request is
// sent. The backend re-validates everything; this only exists to give
// immediate, field-level feedback.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError is one invalid field with a user-facing message.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SemesterForm is the semester editor's input.
type SemesterForm struct {
	Name      string `validate:"required,min=3,max=100"`
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"required,datetime=2006-01-02"`
}

// Validate checks field constraints plus the date-range ordering.
func (f SemesterForm) Validate() []FieldError {
	errs := collect(validate.Struct(f))
	if len(errs) > 0 {
		return errs
	}
	start, _ := time.Parse("2006-01-02", f.StartDate)
	end, _ := time.Parse("2006-01-02", f.EndDate)
	if !end.After(start) {
		errs = append(errs, FieldError{Field: "EndDate", Message: "must be after the start date"})
	}
	return errs
}

// UserRow is one row of a bulk user-creation batch.
type UserRow struct {
	Username string `validate:"required,min=3,max=64,alphanumunicode"`
	Email    string `validate:"required,email"`
	Role     string `validate:"required,oneof=admin teacher student"`
	Password string `validate:"required,min=8"`
}

// Validate checks one bulk-creation row.
func (r UserRow) Validate() []FieldError {
	return collect(validate.Struct(r))
}

// LeaveForm is the student leave-request input.
type LeaveForm struct {
	FromDate string `validate:"required,datetime=2006-01-02"`
	ToDate   string `validate:"required,datetime=2006-01-02"`
	Reason   string `validate:"required,min=10,max=1000"`
}

// Validate checks field constraints plus the date-range ordering.
func (f LeaveForm) Validate() []FieldError {
	errs := collect(validate.Struct(f))
	if len(errs) > 0 {
		return errs
	}
	from, _ := time.Parse("2006-01-02", f.FromDate)
	to, _ := time.Parse("2006-01-02", f.ToDate)
	if to.Before(from) {
		errs = append(errs, FieldError{Field: "ToDate", Message: "must not be before the from date"})
	}
	return errs
}

// ReferenceForm is the reference uploader's input.
type ReferenceForm struct {
	Title    string `validate:"required,min=3,max=200"`
	FileName string `validate:"required"`
}

// Validate checks the reference upload fields.
func (f ReferenceForm) Validate() []FieldError {
	return collect(validate.Struct(f))
}

// collect converts validator errors into field-level messages
func collect(err error) []FieldError {
	if err == nil {
		return nil
	}
	var errs []FieldError
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	for _, fe := range validationErrs {
		errs = append(errs, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return errs
}

// message renders one tag failure as a readable sentence
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "alphanumunicode":
		return "may only contain letters and digits"
	default:
		return "is invalid"
	}
}

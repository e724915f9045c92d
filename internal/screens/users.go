package screens

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"campusboard/internal/api"
	"campusboard/internal/models"
	"campusboard/internal/validation"
)

// RowError is a validation failure on one line of a bulk-creation file.
type RowError struct {
	Line   int
	Errors []validation.FieldError
}

func (e RowError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("line %d: %s", e.Line, strings.Join(msgs, "; "))
}

// BulkUserScreen is the admin bulk user-creation screen: parse a CSV of
// rows, validate each client-side, submit the batch, report per-row results.
type BulkUserScreen struct {
	client *api.Client
}

// NewBulkUserScreen creates the bulk-creation screen.
func NewBulkUserScreen(client *api.Client) *BulkUserScreen {
	return &BulkUserScreen{client: client}
}

// ParseCSV reads username,email,role,password rows. A first line reading
// exactly "username,email,role,password" is treated as a header and
// skipped. All rows are validated; any invalid row fails the whole parse so
// nothing half-checked reaches the backend.
func (s *BulkUserScreen) ParseCSV(r io.Reader) ([]models.NewUser, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	var users []models.NewUser
	var rowErrs []RowError
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(record[0], "username") {
			continue
		}

		row := validation.UserRow{
			Username: strings.TrimSpace(record[0]),
			Email:    strings.TrimSpace(record[1]),
			Role:     strings.TrimSpace(strings.ToLower(record[2])),
			Password: record[3],
		}
		if errs := row.Validate(); len(errs) > 0 {
			rowErrs = append(rowErrs, RowError{Line: line, Errors: errs})
			continue
		}
		users = append(users, models.NewUser{
			Username: row.Username,
			Email:    row.Email,
			Role:     row.Role,
			Password: row.Password,
		})
	}
	return users, rowErrs, nil
}

// Submit sends the batch and returns the backend's per-row results.
func (s *BulkUserScreen) Submit(ctx context.Context, users []models.NewUser) ([]models.UserCreateResult, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("nothing to submit")
	}
	return s.client.CreateUsers(ctx, users)
}

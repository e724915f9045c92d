package screens

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"username,email,role,password",
		"ana2025,ana@school.test,Student,letmein-please",
		"benteach,ben@school.test,teacher,chalk-and-talk",
	}, "\n")

	screen := NewBulkUserScreen(nil)
	users, rowErrs, err := screen.ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("row errors = %v, want none", rowErrs)
	}
	if len(users) != 2 {
		t.Fatalf("parsed %d users, want 2", len(users))
	}

	if users[0].Username != "ana2025" || users[0].Role != "student" {
		t.Errorf("row 1 = %+v, want role lowercased", users[0])
	}
	if users[1].Email != "ben@school.test" || users[1].Role != "teacher" {
		t.Errorf("row 2 = %+v", users[1])
	}
}

func TestParseCSVWithoutHeader(t *testing.T) {
	input := "ana2025,ana@school.test,student,letmein-please\n"

	screen := NewBulkUserScreen(nil)
	users, rowErrs, err := screen.ParseCSV(strings.NewReader(input))
	if err != nil || len(rowErrs) != 0 {
		t.Fatalf("ParseCSV: %v %v", err, rowErrs)
	}
	if len(users) != 1 {
		t.Fatalf("parsed %d users, want 1; a missing header must not eat the first row", len(users))
	}
}

func TestParseCSVCollectsRowErrors(t *testing.T) {
	input := strings.Join([]string{
		"username,email,role,password",
		"ana2025,ana@school.test,student,letmein-please",
		"x,broken-email,janitor,abc", // every field wrong
		"benteach,ben@school.test,teacher,chalk-and-talk",
	}, "\n")

	screen := NewBulkUserScreen(nil)
	users, rowErrs, err := screen.ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	// valid rows still parse; the caller decides whether to proceed
	if len(users) != 2 {
		t.Errorf("parsed %d users, want 2", len(users))
	}
	if len(rowErrs) != 1 {
		t.Fatalf("row errors = %v, want one", rowErrs)
	}
	if rowErrs[0].Line != 3 {
		t.Errorf("error line = %d, want 3", rowErrs[0].Line)
	}
	if len(rowErrs[0].Errors) != 4 {
		t.Errorf("field errors = %v, want 4", rowErrs[0].Errors)
	}
	if msg := rowErrs[0].Error(); !strings.HasPrefix(msg, "line 3: ") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestParseCSVRejectsWrongColumnCount(t *testing.T) {
	input := "ana2025,ana@school.test,student\n"

	screen := NewBulkUserScreen(nil)
	if _, _, err := screen.ParseCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected an error for a 3-column row")
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	screen := NewBulkUserScreen(nil)
	users, rowErrs, err := screen.ParseCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(users) != 0 || len(rowErrs) != 0 {
		t.Errorf("got %v / %v from empty input", users, rowErrs)
	}
}

package gradebook

import (
	"context"
	"errors"
	"strings"
	"testing"

	"campusboard/internal/models"
)

type fakeBackend struct {
	data *models.Gradebook
	err  error
}

func (b *fakeBackend) Gradebook(ctx context.Context, courseInstanceID string) (*models.Gradebook, error) {
	return b.data, b.err
}

func sampleGradebook() *models.Gradebook {
	return &models.Gradebook{
		Students: []models.Student{
			{ID: "s1", Username: "ana", Email: "ana@school.test"},
			{ID: "s2", Username: "ben", Email: "ben@school.test"},
		},
		Items: []models.GradebookItem{
			{ID: "i1", Title: "Essay", Kind: "assignment", MaxPoints: 10},
			{ID: "i2", Title: "Quiz", Kind: "question", MaxPoints: 5},
			{ID: "i3", Title: "Project", Kind: "group", MaxPoints: 20},
		},
		Grades: []models.Grade{
			{StudentID: "s1", ItemID: "i1", Points: 8, Feedback: "solid"},
			{StudentID: "s1", ItemID: "i2", Points: 2.5},
			{StudentID: "s2", ItemID: "i1", Missing: true},
			// i3 assigned to nobody yet
		},
	}
}

func newLoadedVM(t *testing.T) *ViewModel {
	t.Helper()
	vm := NewViewModel(&fakeBackend{data: sampleGradebook()}, "ci-1")
	if err := vm.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return vm
}

func TestTotalIgnoresNotAssigned(t *testing.T) {
	vm := newLoadedVM(t)

	// i3 is not assigned to s1: possible is 15, not 35
	total := vm.TotalFor("s1")
	if total.Earned != 10.5 || total.Possible != 15 {
		t.Errorf("TotalFor(s1) = %+v, want earned 10.5 possible 15", total)
	}
	if got := total.Percent(); got != 70 {
		t.Errorf("Percent() = %v, want 70", got)
	}
}

func TestTotalCountsMissingAsZeroOfPossible(t *testing.T) {
	vm := newLoadedVM(t)

	// a missing submission is assigned: it widens possible without earning
	total := vm.TotalFor("s2")
	if total.Earned != 0 || total.Possible != 10 {
		t.Errorf("TotalFor(s2) = %+v, want earned 0 possible 10", total)
	}
}

func TestTotalForUnknownStudent(t *testing.T) {
	vm := newLoadedVM(t)

	total := vm.TotalFor("nobody")
	if total.Earned != 0 || total.Possible != 0 {
		t.Errorf("TotalFor(nobody) = %+v, want zero total", total)
	}
	if got := total.Percent(); got != 0 {
		t.Errorf("Percent() = %v, want 0 when nothing assigned", got)
	}
}

func TestCellForDistinguishesMissingFromNotAssigned(t *testing.T) {
	vm := newLoadedVM(t)

	missing := vm.CellFor("s2", "i1")
	if !missing.Assigned || !missing.Missing {
		t.Errorf("CellFor(s2, i1) = %+v, want assigned and missing", missing)
	}
	unassigned := vm.CellFor("s2", "i3")
	if unassigned.Assigned {
		t.Errorf("CellFor(s2, i3) = %+v, want not assigned", unassigned)
	}
}

func TestLoadFailureKeepsPreviousData(t *testing.T) {
	backend := &fakeBackend{data: sampleGradebook()}
	vm := NewViewModel(backend, "ci-1")
	if err := vm.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := vm.Data()

	backend.err = errors.New("bad gateway")
	if err := vm.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if vm.Data() != before {
		t.Error("previous gradebook replaced on failure")
	}
	if vm.LoadError() == "" {
		t.Error("load error not surfaced")
	}
}

func TestExportCSV(t *testing.T) {
	vm := newLoadedVM(t)

	var buf strings.Builder
	if err := vm.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), buf.String())
	}

	wantHeader := "Student,Email,Essay (10),Quiz (5),Project (20),Total,Percent"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	wantAna := "ana,ana@school.test,8,2.50,,10.50,70.0"
	if lines[1] != wantAna {
		t.Errorf("row 1 = %q, want %q", lines[1], wantAna)
	}
	wantBen := "ben,ben@school.test,missing,,,0,0.0"
	if lines[2] != wantBen {
		t.Errorf("row 2 = %q, want %q", lines[2], wantBen)
	}
}

func TestExportCSVRequiresLoad(t *testing.T) {
	vm := NewViewModel(&fakeBackend{}, "ci-1")
	if err := vm.ExportCSV(&strings.Builder{}); err == nil {
		t.Fatal("expected error before first load")
	}
}

func TestUseSnapshot(t *testing.T) {
	vm := NewViewModel(&fakeBackend{err: errors.New("offline")}, "ci-1")
	vm.UseSnapshot(sampleGradebook())

	if vm.Data() == nil {
		t.Fatal("snapshot not applied")
	}
	if total := vm.TotalFor("s1"); total.Earned != 10.5 {
		t.Errorf("TotalFor(s1).Earned = %v, want 10.5 from snapshot", total.Earned)
	}
}

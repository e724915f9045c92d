// Package gradebook holds the client-side view-model for the course
// gradebook matrix: roster by items, per-student totals and CSV export.
package gradebook

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"campusboard/internal/models"
)

// Backend is the slice of the API client the view-model depends on.
type Backend interface {
	Gradebook(ctx context.Context, courseInstanceID string) (*models.Gradebook, error)
}

// Cell is one student/item intersection of the matrix. Assigned is false
// when no grade record exists for the pair ("not assigned"), which is
// distinct from an assigned-but-missing submission.
type Cell struct {
	Assigned bool
	Missing  bool
	Points   float64
	Feedback string
}

// Total is a per-student summary over assigned cells only: not-assigned
// cells count toward neither earned nor possible points.
type Total struct {
	Earned   float64
	Possible float64
}

// Percent returns the earned share of possible points, 0 when nothing is
// assigned.
func (t Total) Percent() float64 {
	if t.Possible == 0 {
		return 0
	}
	return t.Earned / t.Possible * 100
}

// ViewModel holds the loaded gradebook and its derived matrix.
type ViewModel struct {
	backend          Backend
	courseInstanceID string

	mu      sync.Mutex
	data    *models.Gradebook
	cells   map[string]map[string]Cell // studentID -> itemID -> cell
	loadErr string
}

// NewViewModel creates the gradebook view-model for one course instance.
func NewViewModel(backend Backend, courseInstanceID string) *ViewModel {
	return &ViewModel{backend: backend, courseInstanceID: courseInstanceID}
}

// Load fetches the gradebook and rebuilds the matrix. On failure the
// previous data stays visible and the error is kept for inline display.
func (vm *ViewModel) Load(ctx context.Context) error {
	data, err := vm.backend.Gradebook(ctx, vm.courseInstanceID)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if err != nil {
		vm.loadErr = fmt.Sprintf("failed to load gradebook: %v", err)
		return err
	}
	vm.data = data
	vm.cells = buildCells(data)
	vm.loadErr = ""
	return nil
}

// UseSnapshot seeds the view-model with a cached gradebook.
func (vm *ViewModel) UseSnapshot(data *models.Gradebook) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.data = data
	vm.cells = buildCells(data)
}

// Data returns the loaded gradebook, nil before the first successful load.
func (vm *ViewModel) Data() *models.Gradebook {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.data
}

// LoadError returns the inline load error, empty when the last load worked.
func (vm *ViewModel) LoadError() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loadErr
}

// CellFor returns the matrix cell for one student/item pair.
func (vm *ViewModel) CellFor(studentID, itemID string) Cell {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.cells[studentID][itemID]
}

// TotalFor derives one student's total over assigned cells.
func (vm *ViewModel) TotalFor(studentID string) Total {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.totalLocked(studentID)
}

func (vm *ViewModel) totalLocked(studentID string) Total {
	var total Total
	if vm.data == nil {
		return total
	}
	row := vm.cells[studentID]
	for _, item := range vm.data.Items {
		cell, ok := row[item.ID]
		if !ok || !cell.Assigned {
			continue
		}
		total.Earned += cell.Points
		total.Possible += item.MaxPoints
	}
	return total
}

// ExportCSV writes the gradebook as CSV: a header of item titles plus total
// columns, then one row per roster entry. Not-assigned cells export empty.
func (vm *ViewModel) ExportCSV(w io.Writer) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.data == nil {
		return fmt.Errorf("gradebook not loaded")
	}

	writer := csv.NewWriter(w)

	header := []string{"Student", "Email"}
	for _, item := range vm.data.Items {
		header = append(header, fmt.Sprintf("%s (%s)", item.Title, formatPoints(item.MaxPoints)))
	}
	header = append(header, "Total", "Percent")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, student := range vm.data.Students {
		row := []string{student.Username, student.Email}
		for _, item := range vm.data.Items {
			cell := vm.cells[student.ID][item.ID]
			switch {
			case !cell.Assigned:
				row = append(row, "")
			case cell.Missing:
				row = append(row, "missing")
			default:
				row = append(row, formatPoints(cell.Points))
			}
		}
		total := vm.totalLocked(student.ID)
		row = append(row, formatPoints(total.Earned), fmt.Sprintf("%.1f", total.Percent()))
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// buildCells indexes the flat grade list into the student-by-item matrix
func buildCells(data *models.Gradebook) map[string]map[string]Cell {
	cells := make(map[string]map[string]Cell, len(data.Students))
	for _, grade := range data.Grades {
		row, ok := cells[grade.StudentID]
		if !ok {
			row = make(map[string]Cell)
			cells[grade.StudentID] = row
		}
		row[grade.ItemID] = Cell{
			Assigned: true,
			Missing:  grade.Missing,
			Points:   grade.Points,
			Feedback: grade.Feedback,
		}
	}
	return cells
}

// formatPoints trims trailing zeros from point values
func formatPoints(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

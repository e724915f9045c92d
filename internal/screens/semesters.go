// Package screens holds the view-models for the thin CRUD screens: each one
// independently fetches on load, keeps local state and issues mutating
// requests on user action. Load failures keep stale data visible; mutation
// failures change nothing locally.
package screens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campusboard/internal/api"
	"campusboard/internal/models"
	"campusboard/internal/validation"
)

// SemesterScreen is the admin semester editor/list.
type SemesterScreen struct {
	client *api.Client

	mu        sync.Mutex
	semesters []models.Semester
	loadErr   string
}

// NewSemesterScreen creates the semester screen.
func NewSemesterScreen(client *api.Client) *SemesterScreen {
	return &SemesterScreen{client: client}
}

// Load refreshes the semester list.
func (s *SemesterScreen) Load(ctx context.Context) error {
	semesters, err := s.client.Semesters(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = fmt.Sprintf("failed to load semesters: %v", err)
		return err
	}
	s.semesters = semesters
	s.loadErr = ""
	return nil
}

// Semesters returns the loaded list.
func (s *SemesterScreen) Semesters() []models.Semester {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.semesters
}

// LoadError returns the inline load error, empty when the last load worked.
func (s *SemesterScreen) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Create validates the form, submits it and appends the created semester.
func (s *SemesterScreen) Create(ctx context.Context, form validation.SemesterForm) (models.Semester, []validation.FieldError, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return models.Semester{}, errs, nil
	}

	start, _ := time.Parse("2006-01-02", form.StartDate)
	end, _ := time.Parse("2006-01-02", form.EndDate)
	created, err := s.client.CreateSemester(ctx, models.Semester{
		Name:      form.Name,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return models.Semester{}, nil, err
	}

	s.mu.Lock()
	s.semesters = append(s.semesters, created)
	s.mu.Unlock()
	return created, nil, nil
}

// Update validates the form and updates the semester in place.
func (s *SemesterScreen) Update(ctx context.Context, id string, form validation.SemesterForm) ([]validation.FieldError, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return errs, nil
	}

	start, _ := time.Parse("2006-01-02", form.StartDate)
	end, _ := time.Parse("2006-01-02", form.EndDate)
	updated, err := s.client.UpdateSemester(ctx, models.Semester{
		ID:        id,
		Name:      form.Name,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.semesters {
		if s.semesters[i].ID == id {
			s.semesters[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return nil, nil
}

// Delete removes a semester remotely, then locally on success. A 404 means
// the semester is already gone, so the local row is dropped all the same.
func (s *SemesterScreen) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteSemester(ctx, id); err != nil && !api.IsNotFound(err) {
		return err
	}

	s.mu.Lock()
	kept := s.semesters[:0]
	for _, sem := range s.semesters {
		if sem.ID != id {
			kept = append(kept, sem)
		}
	}
	s.semesters = kept
	s.mu.Unlock()
	return nil
}

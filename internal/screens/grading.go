package screens

import (
	"context"
	"fmt"
	"sync"

	"campusboard/internal/api"
	"campusboard/internal/models"
)

// GradingScreen is the teacher's assignment detail + grading screen: the
// assignment, its submissions and grade entry per submission (or per group
// for group assignments; the backend fans a group grade out to members).
type GradingScreen struct {
	client       *api.Client
	assignmentID string

	mu          sync.Mutex
	assignment  models.Assignment
	submissions []models.Submission
	loadErr     string
}

// NewGradingScreen creates the grading screen for one assignment.
func NewGradingScreen(client *api.Client, assignmentID string) *GradingScreen {
	return &GradingScreen{client: client, assignmentID: assignmentID}
}

// Load refreshes the assignment and its submissions.
func (s *GradingScreen) Load(ctx context.Context) error {
	assignment, err := s.client.Assignment(ctx, s.assignmentID)
	if err != nil {
		s.setLoadErr(fmt.Sprintf("failed to load assignment: %v", err))
		return err
	}
	submissions, err := s.client.Submissions(ctx, s.assignmentID)
	if err != nil {
		s.setLoadErr(fmt.Sprintf("failed to load submissions: %v", err))
		return err
	}

	s.mu.Lock()
	s.assignment = assignment
	s.submissions = submissions
	s.loadErr = ""
	s.mu.Unlock()
	return nil
}

func (s *GradingScreen) setLoadErr(msg string) {
	s.mu.Lock()
	s.loadErr = msg
	s.mu.Unlock()
}

// Assignment returns the loaded assignment.
func (s *GradingScreen) Assignment() models.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignment
}

// Submissions returns the loaded submissions.
func (s *GradingScreen) Submissions() []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions
}

// LoadError returns the inline load error, empty when the last load worked.
func (s *GradingScreen) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Grade posts a grade for one submission and patches it locally on success.
// Points outside [0, max] are rejected client-side.
func (s *GradingScreen) Grade(ctx context.Context, submissionID string, points float64, feedback string) error {
	s.mu.Lock()
	maxPoints := s.assignment.MaxPoints
	s.mu.Unlock()
	if points < 0 || (maxPoints > 0 && points > maxPoints) {
		return fmt.Errorf("points must be between 0 and %g", maxPoints)
	}

	grade, err := s.client.GradeSubmission(ctx, submissionID, points, feedback)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.submissions {
		if s.submissions[i].ID == submissionID {
			g := grade
			s.submissions[i].Grade = &g
			break
		}
	}
	s.mu.Unlock()
	return nil
}

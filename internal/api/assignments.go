package api

import (
	"context"
	"net/url"

	"campusboard/internal/models"
)

// Assignments lists the assignments of a course instance.
func (c *Client) Assignments(ctx context.Context, courseInstanceID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := c.get(ctx, "/course-instances/"+url.PathEscape(courseInstanceID)+"/assignments", nil, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// Assignment fetches one assignment by id.
func (c *Client) Assignment(ctx context.Context, id string) (models.Assignment, error) {
	var a models.Assignment
	if err := c.get(ctx, "/assignments/"+url.PathEscape(id), nil, &a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// Submissions lists the submissions handed in for an assignment. For group
// assignments each submission carries a GroupID instead of a StudentID.
func (c *Client) Submissions(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	var subs []models.Submission
	if err := c.get(ctx, "/assignments/"+url.PathEscape(assignmentID)+"/submissions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// GradeSubmission posts a grade (points plus feedback) for one submission.
// For group assignments the backend fans the grade out to all members.
func (c *Client) GradeSubmission(ctx context.Context, submissionID string, points float64, feedback string) (models.Grade, error) {
	body := struct {
		Points   float64 `json:"points"`
		Feedback string  `json:"feedback,omitempty"`
	}{points, feedback}
	var resp struct {
		Grade models.Grade `json:"grade"`
	}
	if err := c.postJSON(ctx, "/submissions/"+url.PathEscape(submissionID)+"/grade", body, &resp); err != nil {
		return models.Grade{}, err
	}
	return resp.Grade, nil
}

package models

import "time"

// Assignment is one assignment or group assignment of a course instance.
type Assignment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Group     bool      `json:"group"`
	MaxPoints float64   `json:"maxPoints"`
	DueAt     time.Time `json:"dueAt"`
}

// Submission is one student's (or group's) handed-in work for an assignment.
type Submission struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"studentId,omitempty"`
	GroupID     string     `json:"groupId,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	FileURL     string     `json:"fileUrl,omitempty"`
	Text        string     `json:"text,omitempty"`
	Grade       *Grade     `json:"grade,omitempty"`
}

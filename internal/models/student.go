package models

import "time"

// LeaveRequest is a student's request for excused absence over a date range.
type LeaveRequest struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	FromDate  time.Time `json:"fromDate"`
	ToDate    time.Time `json:"toDate"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"` // pending, approved, rejected, cancelled
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is one inbox entry pushed to a student.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeedPost is one entry of a course instance's announcement feed.
type FeedPost struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

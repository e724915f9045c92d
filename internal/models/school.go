package models

import "time"

// Semester is one academic term.
type Semester struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Active    bool      `json:"active"`
}

// User is an account in the school system.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// NewUser is one row of a bulk user-creation batch.
type NewUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// UserCreateResult reports the outcome of one row of a bulk creation.
type UserCreateResult struct {
	Username string `json:"username"`
	Created  bool   `json:"created"`
	Error    string `json:"error,omitempty"`
}

// ReferenceDoc is an uploaded reference document (syllabus, handout, policy).
type ReferenceDoc struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	FileName   string    `json:"fileName"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
	URL        string    `json:"url"`
}

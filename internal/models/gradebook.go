package models

// GradebookItem is one graded column: an assignment, group assignment or
// question contributing points to a course instance.
type GradebookItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Kind      string  `json:"kind"`
	MaxPoints float64 `json:"maxPoints"`
}

// Grade is a single cell of the gradebook. A student/item pair with no Grade
// at all is "not assigned", which is distinct from an assigned-but-missing
// submission (Missing=true).
type Grade struct {
	StudentID string  `json:"studentId"`
	ItemID    string  `json:"itemId"`
	Points    float64 `json:"points"`
	Missing   bool    `json:"missing"`
	Feedback  string  `json:"feedback,omitempty"`
}

// Gradebook is the full roster/items/grades snapshot for a course instance.
type Gradebook struct {
	Students []Student       `json:"students"`
	Items    []GradebookItem `json:"items"`
	Grades   []Grade         `json:"grades"`
}

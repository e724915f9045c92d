package models

// AttendanceStatus is the recorded state of one student on one sessioned day.
// The empty string means "no record for that cell".
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusNone    AttendanceStatus = ""
)

// Student is one roster entry for a course instance.
type Student struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// StudentStats holds server- or client-derived aggregate counts for one student.
type StudentStats struct {
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Late    int     `json:"late"`
	Percent float64 `json:"percent"`
}

// DayStats holds aggregate counts for one day of the month.
type DayStats struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
}

// AttendanceStats is the optional server-derived stats block of a month snapshot.
type AttendanceStats struct {
	PerStudent map[string]StudentStats `json:"perStudent"`
	PerDay     map[int]DayStats        `json:"perDay"`
}

// MonthAttendance is the month snapshot for one course instance.
//
// SessionsByDay only contains days on which a class session was held; a
// missing key means no class that day. Matrix maps studentID to day-of-month
// to status; a cell may only carry a non-empty status when the day has a
// session, which the server guarantees and the client trusts.
type MonthAttendance struct {
	Year          int                                 `json:"year"`
	Month         int                                 `json:"month"`
	DaysInMonth   int                                 `json:"daysInMonth"`
	Students      []Student                           `json:"students"`
	SessionsByDay map[int]string                      `json:"sessionsByDay"`
	Matrix        map[string]map[int]AttendanceStatus `json:"matrix"`
	Stats         *AttendanceStats                    `json:"stats,omitempty"`
}

// AttendanceRecord is one student/status pair as pushed over the socket or
// returned by a manual mark.
type AttendanceRecord struct {
	Student string           `json:"student"`
	Status  AttendanceStatus `json:"status"`
}

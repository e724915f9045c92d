// Package attendance holds the client-side view-model for the teacher's
// month attendance grid: the snapshot reducers, the keyboard cursor and the
// live-session controller. All state lives here; rendering is elsewhere.
package attendance

import (
	"math"

	"campusboard/internal/models"
)

// Snapshot reducers. Each takes the previous month snapshot and returns a
// new one with the affected student row and stats line replaced; untouched
// rows are shared. Aggregates are always recomputed from a full rescan of
// the row, never adjusted by deltas, so any interleaving of socket pushes
// and manual marks converges to the same numbers as a fresh computation.

// WithRecord returns a snapshot with one (student, day) cell set to status
// and that student's stats recomputed.
func WithRecord(m *models.MonthAttendance, studentID string, day int, status models.AttendanceStatus) *models.MonthAttendance {
	next := shallowCopy(m)

	next.Matrix = copyMatrixRow(m.Matrix, studentID)
	next.Matrix[studentID][day] = status

	recomputeStudentStats(next, studentID)
	return next
}

// WithSession returns a snapshot with a day→session mapping added. Needed
// after a backfill creates a session for a day the loaded month predates.
func WithSession(m *models.MonthAttendance, day int, sessionID string) *models.MonthAttendance {
	if m.SessionsByDay[day] == sessionID {
		return m
	}
	next := shallowCopy(m)
	next.SessionsByDay = make(map[int]string, len(m.SessionsByDay)+1)
	for d, id := range m.SessionsByDay {
		next.SessionsByDay[d] = id
	}
	next.SessionsByDay[day] = sessionID
	return next
}

// SessionDay reverse-looks-up the day a session id is bound to, returning 0
// when the month holds no such session.
func SessionDay(m *models.MonthAttendance, sessionID string) int {
	if sessionID == "" {
		return 0
	}
	for day, id := range m.SessionsByDay {
		if id == sessionID {
			return day
		}
	}
	return 0
}

// CountRowPresent counts a student's present cells across sessioned days.
func CountRowPresent(m *models.MonthAttendance, studentID string) int {
	present := 0
	row := m.Matrix[studentID]
	for day := range m.SessionsByDay {
		if row[day] == models.StatusPresent {
			present++
		}
	}
	return present
}

// ComputePercent derives a student's attendance percentage. The denominator
// is the number of sessioned days on which the student has any recorded
// status; a sessioned day with no record for the student counts neither for
// nor against them.
func ComputePercent(m *models.MonthAttendance, studentID string) float64 {
	row := m.Matrix[studentID]
	present, recorded := 0, 0
	for day := range m.SessionsByDay {
		switch row[day] {
		case models.StatusPresent:
			present++
			recorded++
		case models.StatusAbsent, models.StatusLate:
			recorded++
		}
	}
	if recorded == 0 {
		return 0
	}
	return math.Round(float64(present)/float64(recorded)*1000) / 10
}

// StatsFor returns the stats line to display for a student: the server's
// when the snapshot carries one, otherwise the client-side fallback using
// the same denominator rule as the recompute path.
func StatsFor(m *models.MonthAttendance, studentID string) models.StudentStats {
	if m.Stats != nil {
		if stats, ok := m.Stats.PerStudent[studentID]; ok {
			return stats
		}
	}
	return computeStudentStats(m, studentID)
}

// DayStatsFor counts one day's column from the matrix. Always derived
// client-side so the counts track socket pushes and manual marks without
// waiting for a reload.
func DayStatsFor(m *models.MonthAttendance, day int) models.DayStats {
	var stats models.DayStats
	for _, student := range m.Students {
		switch m.Matrix[student.ID][day] {
		case models.StatusPresent:
			stats.Present++
		case models.StatusAbsent:
			stats.Absent++
		case models.StatusLate:
			stats.Late++
		}
	}
	return stats
}

// computeStudentStats rescans one student's row across sessioned days
func computeStudentStats(m *models.MonthAttendance, studentID string) models.StudentStats {
	row := m.Matrix[studentID]
	var stats models.StudentStats
	for day := range m.SessionsByDay {
		switch row[day] {
		case models.StatusPresent:
			stats.Present++
		case models.StatusAbsent:
			stats.Absent++
		case models.StatusLate:
			stats.Late++
		}
	}
	stats.Percent = ComputePercent(m, studentID)
	return stats
}

// recomputeStudentStats replaces one student's stats line in m, creating the
// stats block when the server omitted it
func recomputeStudentStats(m *models.MonthAttendance, studentID string) {
	perStudent := make(map[string]models.StudentStats)
	if m.Stats != nil {
		for id, stats := range m.Stats.PerStudent {
			perStudent[id] = stats
		}
	}
	perStudent[studentID] = computeStudentStats(m, studentID)

	stats := &models.AttendanceStats{PerStudent: perStudent}
	if m.Stats != nil {
		stats.PerDay = m.Stats.PerDay
	}
	m.Stats = stats
}

// shallowCopy duplicates the snapshot struct; callers replace the maps they
// are about to change
func shallowCopy(m *models.MonthAttendance) *models.MonthAttendance {
	next := *m
	return &next
}

// copyMatrixRow clones the matrix with a fresh copy of one student's row
func copyMatrixRow(matrix map[string]map[int]models.AttendanceStatus, studentID string) map[string]map[int]models.AttendanceStatus {
	next := make(map[string]map[int]models.AttendanceStatus, len(matrix)+1)
	for id, row := range matrix {
		next[id] = row
	}
	row := make(map[int]models.AttendanceStatus, len(matrix[studentID])+1)
	for day, status := range matrix[studentID] {
		row[day] = status
	}
	next[studentID] = row
	return next
}

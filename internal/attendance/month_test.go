package attendance

import (
	"testing"

	"campusboard/internal/models"
)

func sampleMonth() *models.MonthAttendance {
	return &models.MonthAttendance{
		Year:        2025,
		Month:       3,
		DaysInMonth: 31,
		Students: []models.Student{
			{ID: "s1", Username: "ana"},
			{ID: "s2", Username: "ben"},
			{ID: "s3", Username: "cara"},
		},
		SessionsByDay: map[int]string{
			3:  "sess-3",
			10: "sess-10",
			17: "sess-17",
		},
		Matrix: map[string]map[int]models.AttendanceStatus{
			"s1": {3: models.StatusPresent, 10: models.StatusAbsent, 17: models.StatusPresent},
			"s2": {3: models.StatusLate, 10: models.StatusPresent},
			"s3": {},
		},
	}
}

func TestComputePercentDenominator(t *testing.T) {
	tests := []struct {
		name      string
		studentID string
		expected  float64
	}{
		{
			// 2 present of 3 recorded sessioned days
			name:      "full row",
			studentID: "s1",
			expected:  66.7,
		},
		{
			// day 17 has a session but no record for s2: 1 present of 2 recorded
			name:      "unrecorded sessioned day excluded",
			studentID: "s2",
			expected:  50,
		},
		{
			name:      "no records at all",
			studentID: "s3",
			expected:  0,
		},
	}

	m := sampleMonth()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputePercent(m, tt.studentID)
			if result != tt.expected {
				t.Errorf("ComputePercent(%s) = %v, want %v", tt.studentID, result, tt.expected)
			}
		})
	}
}

func TestComputePercentIgnoresUnsessionedDays(t *testing.T) {
	m := sampleMonth()
	// a present mark on a day with no session must not change the numbers
	m.Matrix["s1"][20] = models.StatusPresent

	if got := ComputePercent(m, "s1"); got != 66.7 {
		t.Errorf("ComputePercent(s1) = %v, want 66.7", got)
	}
	if got := CountRowPresent(m, "s1"); got != 2 {
		t.Errorf("CountRowPresent(s1) = %v, want 2", got)
	}
}

func TestWithRecordPatchesSingleCell(t *testing.T) {
	m := sampleMonth()
	next := WithRecord(m, "s2", 17, models.StatusPresent)

	if next.Matrix["s2"][17] != models.StatusPresent {
		t.Errorf("patched cell = %q, want present", next.Matrix["s2"][17])
	}
	if m.Matrix["s2"][17] != models.StatusNone {
		t.Errorf("previous snapshot was mutated: %q", m.Matrix["s2"][17])
	}
	if next.Matrix["s1"][3] != models.StatusPresent {
		t.Errorf("unrelated row changed: %q", next.Matrix["s1"][3])
	}

	stats := next.Stats.PerStudent["s2"]
	if stats.Present != 2 || stats.Late != 1 {
		t.Errorf("recomputed stats = %+v, want 2 present 1 late", stats)
	}
}

func TestRecomputeNotDelta(t *testing.T) {
	// applying a sequence of updates incrementally must equal a single
	// from-scratch computation over the final row
	m := sampleMonth()
	updates := []struct {
		day    int
		status models.AttendanceStatus
	}{
		{3, models.StatusAbsent},
		{10, models.StatusPresent},
		{3, models.StatusPresent}, // overwrite the same cell
		{17, models.StatusLate},
		{17, models.StatusAbsent},
	}

	incremental := m
	for _, u := range updates {
		incremental = WithRecord(incremental, "s1", u.day, u.status)
	}

	fromScratch := computeStudentStats(incremental, "s1")
	got := incremental.Stats.PerStudent["s1"]
	if got != fromScratch {
		t.Errorf("incremental stats %+v differ from rescan %+v", got, fromScratch)
	}
	if fromScratch.Present != 2 || fromScratch.Absent != 1 {
		t.Errorf("rescan = %+v, want 2 present 1 absent", fromScratch)
	}
}

func TestWithSession(t *testing.T) {
	m := sampleMonth()
	next := WithSession(m, 20, "sess-20")

	if next.SessionsByDay[20] != "sess-20" {
		t.Errorf("SessionsByDay[20] = %q, want sess-20", next.SessionsByDay[20])
	}
	if _, ok := m.SessionsByDay[20]; ok {
		t.Error("previous snapshot was mutated")
	}
	if same := WithSession(next, 20, "sess-20"); same != next {
		t.Error("adding an existing mapping should return the same snapshot")
	}
}

func TestSessionDay(t *testing.T) {
	m := sampleMonth()
	tests := []struct {
		name      string
		sessionID string
		expected  int
	}{
		{"known session", "sess-10", 10},
		{"unknown session", "sess-99", 0},
		{"empty id", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionDay(m, tt.sessionID); got != tt.expected {
				t.Errorf("SessionDay(%q) = %d, want %d", tt.sessionID, got, tt.expected)
			}
		})
	}
}

func TestDayStatsFor(t *testing.T) {
	m := sampleMonth()

	day3 := DayStatsFor(m, 3)
	if day3.Present != 1 || day3.Late != 1 || day3.Absent != 0 {
		t.Errorf("DayStatsFor(3) = %+v, want 1 present 1 late", day3)
	}

	// counts follow reducer updates immediately
	next := WithRecord(m, "s3", 3, models.StatusPresent)
	if got := DayStatsFor(next, 3); got.Present != 2 {
		t.Errorf("DayStatsFor(3) after update = %+v, want 2 present", got)
	}

	if got := DayStatsFor(m, 25); got != (models.DayStats{}) {
		t.Errorf("DayStatsFor(25) = %+v, want zero for an empty column", got)
	}
}

func TestStatsForPrefersServerStats(t *testing.T) {
	m := sampleMonth()
	m.Stats = &models.AttendanceStats{
		PerStudent: map[string]models.StudentStats{
			"s1": {Present: 9, Percent: 90},
		},
	}

	if got := StatsFor(m, "s1"); got.Present != 9 {
		t.Errorf("StatsFor(s1).Present = %d, want server value 9", got.Present)
	}
	// s2 has no server line; fallback must use the recompute rule
	got := StatsFor(m, "s2")
	if got.Present != 1 || got.Late != 1 || got.Percent != 50 {
		t.Errorf("StatsFor(s2) = %+v, want fallback 1 present 1 late 50%%", got)
	}
}

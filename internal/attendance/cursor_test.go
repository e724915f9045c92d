package attendance

import "testing"

func TestCursorClamp(t *testing.T) {
	tests := []struct {
		name       string
		cursor     Cursor
		rows, days int
		expected   Cursor
	}{
		{
			name:     "inside bounds",
			cursor:   Cursor{Row: 2, Day: 15},
			rows:     5, days: 31,
			expected: Cursor{Row: 2, Day: 15},
		},
		{
			name:     "row past roster after shrink",
			cursor:   Cursor{Row: 9, Day: 15},
			rows:     5, days: 31,
			expected: Cursor{Row: 4, Day: 15},
		},
		{
			name:     "day past shorter month",
			cursor:   Cursor{Row: 0, Day: 31},
			rows:     5, days: 28,
			expected: Cursor{Row: 0, Day: 28},
		},
		{
			name:     "negative row and day",
			cursor:   Cursor{Row: -3, Day: 0},
			rows:     5, days: 31,
			expected: Cursor{Row: 0, Day: 1},
		},
		{
			name:     "empty roster clamps row to zero",
			cursor:   Cursor{Row: 3, Day: 10},
			rows:     0, days: 31,
			expected: Cursor{Row: 0, Day: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cursor.Clamp(tt.rows, tt.days); got != tt.expected {
				t.Errorf("Clamp() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestCursorMoveClampsAtEdges(t *testing.T) {
	// day 31 of a 31-day month: arrow right must not overflow
	c := Cursor{Row: 0, Day: 31}.Move(0, 1, 5, 31)
	if c.Day != 31 {
		t.Errorf("Day = %d, want 31", c.Day)
	}

	c = Cursor{Row: 0, Day: 1}.Move(0, -1, 5, 31)
	if c.Day != 1 {
		t.Errorf("Day = %d, want 1", c.Day)
	}

	c = Cursor{Row: 4, Day: 10}.Move(1, 0, 5, 31)
	if c.Row != 4 {
		t.Errorf("Row = %d, want 4", c.Row)
	}
}

func TestCursorAdvanceRowWraps(t *testing.T) {
	tests := []struct {
		name     string
		cursor   Cursor
		rows     int
		expected Cursor
	}{
		{
			name:     "advance mid-roster",
			cursor:   Cursor{Row: 1, Day: 20},
			rows:     5,
			expected: Cursor{Row: 2, Day: 20},
		},
		{
			// last row wraps to the first, day untouched
			name:     "wrap from last row",
			cursor:   Cursor{Row: 4, Day: 20},
			rows:     5,
			expected: Cursor{Row: 0, Day: 20},
		},
		{
			name:     "empty roster",
			cursor:   Cursor{Row: 0, Day: 20},
			rows:     0,
			expected: Cursor{Row: 0, Day: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cursor.AdvanceRow(tt.rows); got != tt.expected {
				t.Errorf("AdvanceRow() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

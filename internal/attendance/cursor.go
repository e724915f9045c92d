package attendance

// Cursor is the keyboard-navigable pointer into the month grid. Row indexes
// the roster from 0; Day is the 1-based day of month. A cursor is always
// kept inside [0, rows-1] x [1, days] by Clamp, including after reloads that
// shrink the grid.
type Cursor struct {
	Row int
	Day int
}

// Clamp forces the cursor inside the grid bounds. An empty roster clamps the
// row to 0.
func (c Cursor) Clamp(rows, days int) Cursor {
	if c.Row < 0 {
		c.Row = 0
	}
	if c.Row > rows-1 {
		c.Row = max(rows-1, 0)
	}
	if c.Day < 1 {
		c.Day = 1
	}
	if c.Day > days {
		c.Day = max(days, 1)
	}
	return c
}

// Move shifts the cursor by (dRow, dDay), clamped to the grid.
func (c Cursor) Move(dRow, dDay, rows, days int) Cursor {
	c.Row += dRow
	c.Day += dDay
	return c.Clamp(rows, days)
}

// AdvanceRow moves to the next row, wrapping to the first past the last.
// The day never changes.
func (c Cursor) AdvanceRow(rows int) Cursor {
	if rows <= 0 {
		c.Row = 0
		return c
	}
	c.Row = (c.Row + 1) % rows
	return c
}

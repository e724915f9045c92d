package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"campusboard/internal/attendance"
	"campusboard/internal/models"
	"campusboard/internal/qr"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	sessionStyle = lipgloss.NewStyle().Underline(true)
	liveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	presentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	absentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	lateStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// View renders the month grid, the per-student stats column, the live QR
// surface and the status line.
func (m Model) View() string {
	var b strings.Builder

	year, month := m.vm.Period()
	title := fmt.Sprintf("Attendance — %s %d", time.Month(month), year)
	if m.vm.State() == attendance.StateLive {
		title += liveStyle.Render(fmt.Sprintf("  ● LIVE day %d", m.vm.LiveDay()))
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	if loadErr := m.vm.LoadError(); loadErr != "" {
		b.WriteString(errorStyle.Render(loadErr))
		b.WriteString("\n")
	}

	data := m.vm.Month()
	if data == nil {
		b.WriteString(dimStyle.Render("loading…"))
		b.WriteString("\n")
		return b.String()
	}

	cur := m.vm.Cursor()
	b.WriteString(m.renderGrid(data, cur))

	if qrValue := m.vm.QRValue(); qrValue != "" {
		if block, err := qr.Terminal(qrValue); err == nil {
			b.WriteString("\n")
			b.WriteString(block)
		}
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("arrows move · p/a mark · space toggle · enter next row · o open today · l join · s stop · e export qr · [ ] month · r reload · q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderGrid draws the roster rows against the day columns
func (m Model) renderGrid(data *models.MonthAttendance, cur attendance.Cursor) string {
	var b strings.Builder

	nameWidth := 18
	b.WriteString(strings.Repeat(" ", nameWidth))
	for day := 1; day <= data.DaysInMonth; day++ {
		label := fmt.Sprintf("%2d", day%100)
		if _, ok := data.SessionsByDay[day]; ok {
			label = sessionStyle.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		b.WriteString(label)
	}
	b.WriteString(headerStyle.Render("   ✓    %"))
	b.WriteString("\n")

	for row, student := range data.Students {
		name := student.Username
		if len(name) > nameWidth-1 {
			name = name[:nameWidth-1]
		}
		b.WriteString(fmt.Sprintf("%-*s", nameWidth, name))

		for day := 1; day <= data.DaysInMonth; day++ {
			cell := renderCell(data.Matrix[student.ID][day])
			if row == cur.Row && day == cur.Day {
				cell = cursorStyle.Render(cell)
			}
			b.WriteString(" " + cell)
		}

		stats := attendance.StatsFor(data, student.ID)
		b.WriteString(fmt.Sprintf(" %3d %5.1f", stats.Present, stats.Percent))
		b.WriteString("\n")
	}

	// per-day present counts under the sessioned columns
	b.WriteString(dimStyle.Render(fmt.Sprintf("%-*s", nameWidth, "present")))
	for day := 1; day <= data.DaysInMonth; day++ {
		if _, ok := data.SessionsByDay[day]; !ok {
			b.WriteString("  ")
			continue
		}
		b.WriteString(fmt.Sprintf("%2d", attendance.DayStatsFor(data, day).Present))
	}
	b.WriteString("\n")
	return b.String()
}

// renderCell draws one status glyph
func renderCell(status models.AttendanceStatus) string {
	switch status {
	case models.StatusPresent:
		return presentStyle.Render("P")
	case models.StatusAbsent:
		return absentStyle.Render("A")
	case models.StatusLate:
		return lateStyle.Render("L")
	default:
		return dimStyle.Render("·")
	}
}

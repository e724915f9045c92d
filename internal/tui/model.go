// Package tui renders the teacher attendance dashboard in the terminal. It
// is a thin Bubble Tea shell around attendance.ViewModel: key presses map to
// view-model transitions and every state change triggers a repaint.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"campusboard/internal/attendance"
	"campusboard/internal/models"
	"campusboard/internal/qr"
)

// refreshMsg repaints after an asynchronous view-model change (socket push,
// QR rotation, load completion).
type refreshMsg struct{}

// opDoneMsg reports the outcome of a user-triggered operation.
type opDoneMsg struct {
	action string
	err    error
}

// Model is the Bubble Tea model for the attendance grid.
type Model struct {
	vm      *attendance.ViewModel
	timeout time.Duration
	qrPath  string

	status string
	width  int
	height int
}

// NewModel creates the dashboard model. timeout bounds each backend call;
// qrPath is where the live QR is written when exported.
func NewModel(vm *attendance.ViewModel, timeout time.Duration, qrPath string) Model {
	return Model{vm: vm, timeout: timeout, qrPath: qrPath}
}

// Refresh is the message a notify hook should feed into the program.
func Refresh() tea.Msg { return refreshMsg{} }

// Init loads the initial month.
func (m Model) Init() tea.Cmd {
	return m.runOp("load", func(ctx context.Context) error {
		return m.vm.Load(ctx)
	})
}

// runOp executes a view-model operation off the update loop
func (m Model) runOp(action string, op func(ctx context.Context) error) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opDoneMsg{action: action, err: op(ctx)}
	}
}

// Update handles key presses and operation results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.status = msg.action + ": " + msg.err.Error()
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey maps grid keys onto view-model transitions
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.vm.Shutdown()
		return m, tea.Quit

	case "right":
		m.vm.MoveCursor(0, 1)
	case "left":
		m.vm.MoveCursor(0, -1)
	case "down":
		m.vm.MoveCursor(1, 0)
	case "up":
		m.vm.MoveCursor(-1, 0)
	case "enter":
		m.vm.AdvanceCursor()

	case "p", "P":
		return m, m.runOp("mark present", func(ctx context.Context) error {
			return m.vm.MarkSelected(ctx, models.StatusPresent)
		})
	case "a", "A":
		return m, m.runOp("mark absent", func(ctx context.Context) error {
			return m.vm.MarkSelected(ctx, models.StatusAbsent)
		})
	case " ":
		return m, m.runOp("toggle", func(ctx context.Context) error {
			return m.vm.ToggleSelected(ctx)
		})

	case "o":
		return m, m.runOp("open today", func(ctx context.Context) error {
			return m.vm.OpenToday(ctx)
		})
	case "l":
		day := m.vm.Cursor().Day
		return m, m.runOp("join live", func(ctx context.Context) error {
			return m.vm.JoinLive(ctx, day)
		})
	case "s":
		return m, m.runOp("stop live", func(ctx context.Context) error {
			return m.vm.StopLive(ctx)
		})

	case "e":
		value := m.vm.QRValue()
		path := m.qrPath
		return m, m.runOp("export qr", func(ctx context.Context) error {
			if value == "" {
				return errors.New("no live session to export")
			}
			return qr.PNG(value, path, 512)
		})

	case "r":
		return m, m.runOp("reload", func(ctx context.Context) error {
			return m.vm.Load(ctx)
		})
	case "[":
		m.shiftMonth(-1)
		return m, m.runOp("load", func(ctx context.Context) error {
			return m.vm.Load(ctx)
		})
	case "]":
		m.shiftMonth(1)
		return m, m.runOp("load", func(ctx context.Context) error {
			return m.vm.Load(ctx)
		})
	}
	return m, nil
}

// shiftMonth moves the displayed period by delta months
func (m Model) shiftMonth(delta int) {
	year, month := m.vm.Period()
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	m.vm.SetPeriod(t.Year(), int(t.Month()))
}

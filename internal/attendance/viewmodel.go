package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"campusboard/internal/api"
	"campusboard/internal/models"
	"campusboard/internal/socket"
)

// Backend is the slice of the API client the view-model depends on.
type Backend interface {
	MonthAttendance(ctx context.Context, courseInstanceID string, year, month int) (*models.MonthAttendance, error)
	OpenSession(ctx context.Context, req api.OpenSessionRequest) (string, error)
	CloseSession(ctx context.Context, sessionID string) error
	SessionToken(ctx context.Context, sessionID string) (string, error)
	MarkManual(ctx context.Context, sessionID, studentID string, status models.AttendanceStatus) (models.AttendanceRecord, error)
}

// LiveState is the lifecycle of the broadcast session.
type LiveState int

const (
	StateIdle LiveState = iota
	StatePreparing
	StateLive
)

// ErrNotCurrentMonth rejects opening a rotating session while the grid shows
// a month other than the real current one; "today" is ambiguous otherwise.
// No request is sent.
var ErrNotCurrentMonth = errors.New("live sessions can only be opened while viewing the current month")

// ErrNoSession is returned when an operation needs a session on a day that
// has none.
var ErrNoSession = errors.New("no session held on that day")

// ErrNoData is returned when an operation needs a loaded month snapshot.
var ErrNoData = errors.New("month not loaded")

// ViewModel holds all state of the month attendance grid: the loaded
// snapshot, the keyboard cursor and the live session. All methods are safe
// for concurrent use; mutations are serialized internally and every state
// change invokes the notify hook so the view can re-render.
type ViewModel struct {
	backend     Backend
	dialer      socket.Dialer
	now         func() time.Time
	rotateEvery time.Duration
	notify      func()

	mu               sync.Mutex
	courseInstanceID string
	year             int
	month            int

	data    *models.MonthAttendance
	loadErr string
	loadGen uint64

	cursor Cursor

	state         LiveState
	liveDay       int
	liveSessionID string
	qrValue       string
	sub           socket.Subscription
	rotateStop    chan struct{}
}

// VMOption configures a ViewModel.
type VMOption func(*ViewModel)

// WithNotify sets a hook invoked after every state change.
func WithNotify(fn func()) VMOption {
	return func(vm *ViewModel) { vm.notify = fn }
}

// WithClock replaces the wall clock (tests).
func WithClock(now func() time.Time) VMOption {
	return func(vm *ViewModel) { vm.now = now }
}

// WithRotateInterval overrides the QR token rotation interval.
func WithRotateInterval(d time.Duration) VMOption {
	return func(vm *ViewModel) { vm.rotateEvery = d }
}

// NewViewModel creates the view-model for one course instance, initially
// showing the given year/month.
func NewViewModel(backend Backend, dialer socket.Dialer, courseInstanceID string, year, month int, opts ...VMOption) *ViewModel {
	vm := &ViewModel{
		backend:          backend,
		dialer:           dialer,
		now:              time.Now,
		rotateEvery:      15 * time.Second,
		courseInstanceID: courseInstanceID,
		year:             year,
		month:            month,
		cursor:           Cursor{Row: 0, Day: 1},
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// changed fires the notify hook outside the lock
func (vm *ViewModel) changed() {
	if vm.notify != nil {
		vm.notify()
	}
}

// Load fetches the month snapshot and replaces local state wholesale. The
// cursor is re-clamped to the new bounds and the live session is torn down
// if its day lost its session. On failure the previous snapshot stays
// visible and the error is kept for inline display. Overlapping loads are
// sequenced with a generation counter: a response superseded by a newer
// request is discarded.
func (vm *ViewModel) Load(ctx context.Context) error {
	vm.mu.Lock()
	vm.loadGen++
	gen := vm.loadGen
	courseID, year, month := vm.courseInstanceID, vm.year, vm.month
	vm.mu.Unlock()

	snapshot, err := vm.backend.MonthAttendance(ctx, courseID, year, month)

	vm.mu.Lock()
	if gen != vm.loadGen {
		vm.mu.Unlock()
		return nil
	}
	if err != nil {
		vm.loadErr = fmt.Sprintf("failed to load %04d-%02d: %v", year, month, err)
		vm.mu.Unlock()
		vm.changed()
		return err
	}

	vm.data = snapshot
	vm.loadErr = ""
	vm.cursor = vm.cursor.Clamp(len(snapshot.Students), snapshot.DaysInMonth)
	if vm.liveDay != 0 {
		if _, ok := snapshot.SessionsByDay[vm.liveDay]; !ok {
			vm.teardownLiveLocked()
		}
	}
	vm.mu.Unlock()
	vm.changed()
	return nil
}

// SetPeriod switches the displayed year/month. The caller follows up with
// Load; until then the previous snapshot stays visible.
func (vm *ViewModel) SetPeriod(year, month int) {
	vm.mu.Lock()
	vm.year = year
	vm.month = month
	vm.mu.Unlock()
	vm.changed()
}

// UseSnapshot seeds the view-model with a cached snapshot, typically after a
// failed initial load. Stale data beats a blank grid. The load error, if
// any, is preserved for display.
func (vm *ViewModel) UseSnapshot(snapshot *models.MonthAttendance) {
	vm.mu.Lock()
	vm.data = snapshot
	vm.cursor = vm.cursor.Clamp(len(snapshot.Students), snapshot.DaysInMonth)
	vm.mu.Unlock()
	vm.changed()
}

// SetStatus manually marks one student on one day. Days without a session
// are backfilled first through the idempotent ensure-session request. Local
// state changes only after the mark request succeeds, and the student's
// stats line is recomputed from a full row rescan.
func (vm *ViewModel) SetStatus(ctx context.Context, studentID string, day int, status models.AttendanceStatus) error {
	vm.mu.Lock()
	if vm.data == nil {
		vm.mu.Unlock()
		return ErrNoData
	}
	sessionID := vm.data.SessionsByDay[day]
	vm.mu.Unlock()

	if sessionID == "" {
		var err error
		sessionID, err = vm.EnsureSessionForDay(ctx, day)
		if err != nil {
			return err
		}
	}

	record, err := vm.backend.MarkManual(ctx, sessionID, studentID, status)
	if err != nil {
		return err
	}
	if record.Student == "" {
		record.Student = studentID
	}

	vm.mu.Lock()
	if vm.data != nil {
		vm.data = WithSession(vm.data, day, sessionID)
		vm.data = WithRecord(vm.data, record.Student, day, record.Status)
	}
	vm.mu.Unlock()
	vm.changed()
	return nil
}

// EnsureSessionForDay opens or reuses a session for one calendar day of the
// displayed month and returns its id. Safe to call repeatedly: the request
// carries reuse so the backend returns the existing session for that date.
func (vm *ViewModel) EnsureSessionForDay(ctx context.Context, day int) (string, error) {
	vm.mu.Lock()
	if vm.data == nil {
		vm.mu.Unlock()
		return "", ErrNoData
	}
	if existing := vm.data.SessionsByDay[day]; existing != "" {
		vm.mu.Unlock()
		return existing, nil
	}
	courseID, year, month := vm.courseInstanceID, vm.year, vm.month
	vm.mu.Unlock()

	sessionID, err := vm.backend.OpenSession(ctx, api.OpenSessionRequest{
		CourseInstanceID: courseID,
		ForDate:          fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		Reuse:            true,
	})
	if err != nil {
		return "", err
	}

	// refresh so the new mapping and any server-side effects show up; the
	// returned id stands on its own if this fails
	_ = vm.Load(ctx)
	return sessionID, nil
}

// MoveCursor shifts the grid cursor, clamped to the current bounds.
func (vm *ViewModel) MoveCursor(dRow, dDay int) {
	vm.mu.Lock()
	rows, days := vm.boundsLocked()
	vm.cursor = vm.cursor.Move(dRow, dDay, rows, days)
	vm.mu.Unlock()
	vm.changed()
}

// AdvanceCursor moves to the next row, wrapping past the last. Bound to
// Enter; marks nothing.
func (vm *ViewModel) AdvanceCursor() {
	vm.mu.Lock()
	rows, _ := vm.boundsLocked()
	vm.cursor = vm.cursor.AdvanceRow(rows)
	vm.mu.Unlock()
	vm.changed()
}

// MarkSelected marks the student under the cursor with status, then advances
// the row with wraparound.
func (vm *ViewModel) MarkSelected(ctx context.Context, status models.AttendanceStatus) error {
	studentID, day, err := vm.selected()
	if err != nil {
		return err
	}
	if err := vm.SetStatus(ctx, studentID, day, status); err != nil {
		return err
	}
	vm.AdvanceCursor()
	return nil
}

// ToggleSelected toggles the cell under the cursor between present and
// absent (any other state, including no record, becomes present), then
// advances the row with wraparound.
func (vm *ViewModel) ToggleSelected(ctx context.Context) error {
	studentID, day, err := vm.selected()
	if err != nil {
		return err
	}

	vm.mu.Lock()
	current := vm.data.Matrix[studentID][day]
	vm.mu.Unlock()

	next := models.StatusPresent
	if current == models.StatusPresent {
		next = models.StatusAbsent
	}
	if err := vm.SetStatus(ctx, studentID, day, next); err != nil {
		return err
	}
	vm.AdvanceCursor()
	return nil
}

// selected resolves the cursor to a (student, day) pair
func (vm *ViewModel) selected() (string, int, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.data == nil || len(vm.data.Students) == 0 {
		return "", 0, ErrNoData
	}
	cur := vm.cursor.Clamp(len(vm.data.Students), vm.data.DaysInMonth)
	return vm.data.Students[cur.Row].ID, cur.Day, nil
}

// boundsLocked returns the grid dimensions of the loaded snapshot
func (vm *ViewModel) boundsLocked() (rows, days int) {
	if vm.data == nil {
		return 0, 31
	}
	return len(vm.data.Students), vm.data.DaysInMonth
}

// Month returns the current snapshot. Callers must treat it as immutable;
// reducers replace it instead of mutating in place.
func (vm *ViewModel) Month() *models.MonthAttendance {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.data
}

// Period returns the displayed year and month.
func (vm *ViewModel) Period() (year, month int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.year, vm.month
}

// Cursor returns the current grid cursor.
func (vm *ViewModel) Cursor() Cursor {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.cursor
}

// LoadError returns the inline load error, empty when the last load worked.
func (vm *ViewModel) LoadError() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loadErr
}

// State returns the live-session lifecycle state.
func (vm *ViewModel) State() LiveState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// LiveDay returns the day currently broadcast, 0 when idle.
func (vm *ViewModel) LiveDay() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.liveDay
}

// LiveSessionID returns the session id currently broadcast, empty when idle.
func (vm *ViewModel) LiveSessionID() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.liveSessionID
}

// QRValue returns the JSON string currently encoded in the QR surface,
// empty while idle or between rotations.
func (vm *ViewModel) QRValue() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.qrValue
}

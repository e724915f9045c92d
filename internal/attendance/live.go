package attendance

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"campusboard/internal/api"
	"campusboard/internal/models"
	"campusboard/internal/socket"
)

// OpenToday opens (or reuses) a rotating session for today and goes live on
// it. Guarded client-side: the grid must be showing the real current month,
// otherwise no request is sent.
func (vm *ViewModel) OpenToday(ctx context.Context) error {
	now := vm.now()

	vm.mu.Lock()
	if vm.year != now.Year() || vm.month != int(now.Month()) {
		vm.mu.Unlock()
		return ErrNotCurrentMonth
	}
	courseID := vm.courseInstanceID
	vm.mu.Unlock()

	if _, err := vm.backend.OpenSession(ctx, api.OpenSessionRequest{
		CourseInstanceID: courseID,
		Rotating:         true,
	}); err != nil {
		return err
	}

	if err := vm.Load(ctx); err != nil {
		return err
	}

	vm.mu.Lock()
	day := now.Day()
	sessionID := ""
	if vm.data != nil {
		sessionID = vm.data.SessionsByDay[day]
	}
	vm.mu.Unlock()
	if sessionID == "" {
		// the session did not land under today; nothing to broadcast
		return ErrNoSession
	}
	return vm.goLive(ctx, day, sessionID)
}

// JoinLive goes live on a day that already has a session. No network call
// beyond what the socket and QR rotation trigger.
func (vm *ViewModel) JoinLive(ctx context.Context, day int) error {
	vm.mu.Lock()
	if vm.data == nil {
		vm.mu.Unlock()
		return ErrNoData
	}
	sessionID := vm.data.SessionsByDay[day]
	vm.mu.Unlock()
	if sessionID == "" {
		return ErrNoSession
	}
	return vm.goLive(ctx, day, sessionID)
}

// StopLive closes the live session. The session id is captured before any
// state changes; the socket, QR value and live fields are then cleared
// unconditionally so the QR surface disappears even when the close request
// is slow or fails. A reload follows to pick up server-side effects such as
// auto-marked absentees.
func (vm *ViewModel) StopLive(ctx context.Context) error {
	vm.mu.Lock()
	sessionID := vm.liveSessionID
	vm.teardownLiveLocked()
	vm.mu.Unlock()
	vm.changed()

	if sessionID == "" {
		return nil
	}
	if err := vm.backend.CloseSession(ctx, sessionID); err != nil {
		// teardown already happened; the server will expire the session
		log.Printf("failed to close session %s: %v", sessionID, err)
	}
	return vm.Load(ctx)
}

// Shutdown releases the socket and rotation timer without touching the
// backend. For view unmount.
func (vm *ViewModel) Shutdown() {
	vm.mu.Lock()
	vm.teardownLiveLocked()
	vm.mu.Unlock()
	vm.changed()
}

// goLive transitions to broadcasting day/sessionID: tears down any previous
// live session first (never two socket connections), then connects the
// socket and starts token rotation.
func (vm *ViewModel) goLive(ctx context.Context, day int, sessionID string) error {
	vm.mu.Lock()
	vm.teardownLiveLocked()
	vm.state = StatePreparing
	vm.liveDay = day
	vm.liveSessionID = sessionID
	vm.qrValue = ""
	vm.mu.Unlock()
	vm.changed()

	sub, err := vm.dialer.DialSession(ctx, sessionID)
	if err != nil {
		vm.mu.Lock()
		if vm.liveSessionID == sessionID {
			vm.teardownLiveLocked()
		}
		vm.mu.Unlock()
		vm.changed()
		return err
	}

	vm.mu.Lock()
	if vm.liveSessionID != sessionID {
		// live target changed while dialing; this connection lost the race
		vm.mu.Unlock()
		sub.Close()
		return nil
	}
	vm.sub = sub
	vm.state = StateLive
	vm.startRotationLocked(sessionID)
	vm.mu.Unlock()
	vm.changed()

	go vm.pumpEvents(sub, sessionID)
	return nil
}

// teardownLiveLocked releases every live resource and resets the live
// fields. Called with the lock held; safe when already idle.
func (vm *ViewModel) teardownLiveLocked() {
	if vm.rotateStop != nil {
		close(vm.rotateStop)
		vm.rotateStop = nil
	}
	if vm.sub != nil {
		vm.sub.Close()
		vm.sub = nil
	}
	vm.qrValue = ""
	vm.liveSessionID = ""
	vm.liveDay = 0
	vm.state = StateIdle
}

// startRotationLocked runs the QR token poll for sessionID until the live
// session ends. The first fetch happens immediately; fetch failures are
// swallowed so a transient error only skips one refresh.
func (vm *ViewModel) startRotationLocked(sessionID string) {
	stop := make(chan struct{})
	vm.rotateStop = stop
	interval := vm.rotateEvery

	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			token, err := vm.backend.SessionToken(ctx, sessionID)
			cancel()
			if err == nil {
				vm.setQRValue(sessionID, token)
			}
			select {
			case <-stop:
				return
			case <-time.After(interval):
			}
		}
	}()
}

// setQRValue recomputes the QR payload, unless the live session moved on
func (vm *ViewModel) setQRValue(sessionID, token string) {
	payload, err := json.Marshal(struct {
		SessionID string `json:"sessionId"`
		Token     string `json:"token"`
	}{sessionID, token})
	if err != nil {
		return
	}

	vm.mu.Lock()
	if vm.liveSessionID != sessionID {
		vm.mu.Unlock()
		return
	}
	vm.qrValue = string(payload)
	vm.mu.Unlock()
	vm.changed()
}

// pumpEvents merges socket pushes into the snapshot until the subscription
// closes.
func (vm *ViewModel) pumpEvents(sub socket.Subscription, sessionID string) {
	for ev := range sub.Events() {
		switch ev.Type {
		case socket.EventAttendanceUpdated:
			vm.applyLiveRecord(sessionID, ev.Record)
		case socket.EventAttendanceClosed:
			// externally-triggered close; the explicit stop flow owns
			// teardown, so nothing to do here
		}
	}
}

// applyLiveRecord patches the single cell a pushed record belongs to. The
// day is found by reverse-lookup of the session id; the student's stats are
// recomputed from a full row rescan.
func (vm *ViewModel) applyLiveRecord(sessionID string, record models.AttendanceRecord) {
	vm.mu.Lock()
	if vm.data == nil {
		vm.mu.Unlock()
		return
	}
	day := SessionDay(vm.data, sessionID)
	if day == 0 {
		vm.mu.Unlock()
		return
	}
	vm.data = WithRecord(vm.data, record.Student, day, record.Status)
	vm.mu.Unlock()
	vm.changed()
}

package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"campusboard/internal/models"
)

var upgrader = websocket.Upgrader{}

// sessionServer is a minimal room server: it records received frames and
// exposes the live websocket so tests can push events down it.
type sessionServer struct {
	*httptest.Server
	frames chan frame
	conns  chan *websocket.Conn
}

func newSessionServer(t *testing.T) *sessionServer {
	t.Helper()
	s := &sessionServer{
		frames: make(chan frame, 8),
		conns:  make(chan *websocket.Conn, 1),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		s.conns <- ws
		for {
			var f frame
			if err := ws.ReadJSON(&f); err != nil {
				return
			}
			s.frames <- f
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *sessionServer) url() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func (s *sessionServer) nextFrame(t *testing.T) frame {
	t.Helper()
	select {
	case f := <-s.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return frame{}
	}
}

func (s *sessionServer) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case ws := <-s.conns:
		return ws
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the connection")
		return nil
	}
}

func sessionIDOf(t *testing.T, f frame) string {
	t.Helper()
	var data struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(f.Data, &data); err != nil {
		t.Fatalf("decode frame data: %v", err)
	}
	return data.SessionID
}

func TestDialJoinsSessionRoom(t *testing.T) {
	server := newSessionServer(t)

	conn, err := Dial(context.Background(), server.url(), "sess-1")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	join := server.nextFrame(t)
	if join.Event != "join-session" {
		t.Errorf("first frame = %q, want join-session", join.Event)
	}
	if got := sessionIDOf(t, join); got != "sess-1" {
		t.Errorf("joined session = %q, want sess-1", got)
	}
}

func TestPushedEventsAreDelivered(t *testing.T) {
	server := newSessionServer(t)

	conn, err := Dial(context.Background(), server.url(), "sess-1")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	server.nextFrame(t) // join

	ws := server.conn(t)
	push := func(event, data string) {
		t.Helper()
		if err := ws.WriteJSON(frame{Event: event, Data: json.RawMessage(data)}); err != nil {
			t.Fatalf("push %s: %v", event, err)
		}
	}

	push(EventAttendanceUpdated, `{"record":{"student":"s2","status":"present"}}`)
	push("room:renamed", `{"name":"whatever"}`) // unknown, must be skipped
	push(EventAttendanceClosed, `{}`)

	ev := <-conn.Events()
	if ev.Type != EventAttendanceUpdated {
		t.Fatalf("event 1 = %q, want attendance:updated", ev.Type)
	}
	if ev.Record.Student != "s2" || ev.Record.Status != models.StatusPresent {
		t.Errorf("record = %+v", ev.Record)
	}

	ev = <-conn.Events()
	if ev.Type != EventAttendanceClosed {
		t.Errorf("event 2 = %q, want attendance:closed (unknown event leaked through?)", ev.Type)
	}
}

func TestCloseLeavesSessionRoom(t *testing.T) {
	server := newSessionServer(t)

	conn, err := Dial(context.Background(), server.url(), "sess-1")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server.nextFrame(t) // join

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	leave := server.nextFrame(t)
	if leave.Event != "leave-session" {
		t.Errorf("frame after close = %q, want leave-session", leave.Event)
	}
	if got := sessionIDOf(t, leave); got != "sess-1" {
		t.Errorf("left session = %q, want sess-1", got)
	}

	// repeated close is a no-op
	if err := conn.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestEventsChannelClosesWhenServerDrops(t *testing.T) {
	server := newSessionServer(t)

	conn, err := Dial(context.Background(), server.url(), "sess-1")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	server.nextFrame(t) // join

	server.conn(t).Close()

	select {
	case _, ok := <-conn.Events():
		if ok {
			t.Error("got an event, want a closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after server dropped")
	}
}

func TestDialFailsOnRefusedEndpoint(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, "ws://127.0.0.1:1/socket", "sess-1"); err == nil {
		t.Fatal("expected a dial error")
	}
}

// Package socket implements the live-session channel to the campus backend.
// A connection is scoped to exactly one attendance session: it joins the
// session's room on dial and leaves it on Close. Callers own the connection
// and must Close it on every exit path.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campusboard/internal/models"
)

// Event types pushed by the server into a joined session room.
const (
	EventAttendanceUpdated = "attendance:updated"
	EventAttendanceClosed  = "attendance:closed"
)

// Event is one server push received on a live session connection.
type Event struct {
	Type   string
	Record models.AttendanceRecord // set for attendance:updated
}

// frame is the wire shape of every message in both directions
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn is a live-session subscription. Events are delivered on Events()
// until the connection closes, at which point the channel is closed.
type Conn struct {
	ws        *websocket.Conn
	sessionID string
	events    chan Event

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dialer dials live-session connections. It exists so view-models can be
// tested against a fake without a real websocket server.
type Dialer interface {
	DialSession(ctx context.Context, sessionID string) (Subscription, error)
}

// Subscription is the consumer-side surface of a live-session connection.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// WebsocketDialer dials the backend's socket endpoint with gorilla/websocket.
type WebsocketDialer struct {
	URL string
}

// DialSession implements Dialer.
func (d WebsocketDialer) DialSession(ctx context.Context, sessionID string) (Subscription, error) {
	return Dial(ctx, d.URL, sessionID)
}

// Dial connects to socketURL, joins the room for sessionID and starts
// delivering pushed events.
func Dial(ctx context.Context, socketURL, sessionID string) (*Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, socketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect socket: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c := &Conn{
		ws:        ws,
		sessionID: sessionID,
		events:    make(chan Event, 16),
	}
	if err := c.emit("join-session", sessionID); err != nil {
		ws.Close()
		return nil, fmt.Errorf("failed to join session room: %w", err)
	}

	go c.readLoop()
	return c, nil
}

// Events returns the channel of pushed events. The channel is closed when
// the connection terminates for any reason.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Close leaves the session room and closes the connection. Safe to call more
// than once and from any goroutine.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		// best effort; the server also drops room membership on disconnect
		_ = c.emit("leave-session", c.sessionID)
		deadline := time.Now().Add(time.Second)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

// emit sends one room-scoped frame
func (c *Conn) emit(event, sessionID string) error {
	data, err := json.Marshal(struct {
		SessionID string `json:"sessionId"`
	}{sessionID})
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(frame{Event: event, Data: data})
}

// readLoop decodes pushed frames until the connection dies. Unknown events
// are ignored so new server pushes never break older clients.
func (c *Conn) readLoop() {
	defer close(c.events)
	for {
		var f frame
		if err := c.ws.ReadJSON(&f); err != nil {
			return
		}

		switch f.Event {
		case EventAttendanceUpdated:
			var data struct {
				Record models.AttendanceRecord `json:"record"`
			}
			if err := json.Unmarshal(f.Data, &data); err != nil {
				continue
			}
			c.events <- Event{Type: EventAttendanceUpdated, Record: data.Record}
		case EventAttendanceClosed:
			c.events <- Event{Type: EventAttendanceClosed}
		}
	}
}

package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"campusboard/internal/models"
)

// OpenSessionRequest asks the backend to open (or reuse) an attendance
// session. Rotating binds the session to "now"; ForDate plus Reuse requests
// an idempotent backfill session for a specific calendar date.
type OpenSessionRequest struct {
	CourseInstanceID string `json:"courseInstanceId"`
	Rotating         bool   `json:"rotating,omitempty"`
	ForDate          string `json:"forDate,omitempty"` // YYYY-MM-DD
	Reuse            bool   `json:"reuse,omitempty"`
}

// OpenSession opens or reuses an attendance session and returns its id.
func (c *Client) OpenSession(ctx context.Context, req OpenSessionRequest) (string, error) {
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.postJSON(ctx, "/attendance/sessions", req, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// CloseSession closes an attendance session. The server finalizes the day,
// marking students without a scan or manual record absent.
func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	return c.postJSON(ctx, "/attendance/sessions/"+url.PathEscape(sessionID)+"/close", nil, nil)
}

// SessionToken fetches the current rotating QR token for a live session.
func (c *Client) SessionToken(ctx context.Context, sessionID string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.get(ctx, "/attendance/sessions/"+url.PathEscape(sessionID)+"/token", nil, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// MarkManual records a manual present/absent mark for one student in a
// session and returns the stored record.
func (c *Client) MarkManual(ctx context.Context, sessionID, studentID string, status models.AttendanceStatus) (models.AttendanceRecord, error) {
	body := struct {
		StudentID string                  `json:"studentId"`
		Status    models.AttendanceStatus `json:"status"`
	}{studentID, status}
	var resp struct {
		Record models.AttendanceRecord `json:"record"`
	}
	if err := c.postJSON(ctx, "/attendance/sessions/"+url.PathEscape(sessionID)+"/manual", body, &resp); err != nil {
		return models.AttendanceRecord{}, err
	}
	return resp.Record, nil
}

// MonthAttendance fetches the month snapshot for a course instance,
// including server-derived stats. Successful snapshots are written to the
// snapshot cache when one is configured.
func (c *Client) MonthAttendance(ctx context.Context, courseInstanceID string, year, month int) (*models.MonthAttendance, error) {
	query := url.Values{}
	query.Set("year", fmt.Sprint(year))
	query.Set("month", fmt.Sprint(month))
	query.Set("includeStats", "1")

	var snapshot models.MonthAttendance
	path := "/attendance/course-instances/" + url.PathEscape(courseInstanceID) + "/month"
	if err := c.get(ctx, path, query, &snapshot); err != nil {
		return nil, err
	}
	c.cachePut(monthCacheKey(courseInstanceID, year, month), &snapshot)
	return &snapshot, nil
}

// CachedMonthAttendance returns the last successfully fetched month snapshot
// for a course instance, if the snapshot cache holds one.
func (c *Client) CachedMonthAttendance(courseInstanceID string, year, month int) (*models.MonthAttendance, time.Time, error) {
	var snapshot models.MonthAttendance
	fetchedAt, err := c.cacheGet(monthCacheKey(courseInstanceID, year, month), &snapshot)
	if err != nil {
		return nil, time.Time{}, err
	}
	return &snapshot, fetchedAt, nil
}

func monthCacheKey(courseInstanceID string, year, month int) string {
	return fmt.Sprintf("month:%s:%04d-%02d", courseInstanceID, year, month)
}

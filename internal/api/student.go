package api

import (
	"context"
	"net/url"
	"time"

	"campusboard/internal/models"
)

// LeaveRequests lists the authenticated student's leave requests.
func (c *Client) LeaveRequests(ctx context.Context) ([]models.LeaveRequest, error) {
	var requests []models.LeaveRequest
	if err := c.get(ctx, "/leave-requests", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// SubmitLeaveRequest submits a new leave request.
func (c *Client) SubmitLeaveRequest(ctx context.Context, from, to time.Time, reason string) (models.LeaveRequest, error) {
	body := struct {
		FromDate string `json:"fromDate"`
		ToDate   string `json:"toDate"`
		Reason   string `json:"reason"`
	}{from.Format("2006-01-02"), to.Format("2006-01-02"), reason}
	var created models.LeaveRequest
	if err := c.postJSON(ctx, "/leave-requests", body, &created); err != nil {
		return models.LeaveRequest{}, err
	}
	return created, nil
}

// CancelLeaveRequest cancels a pending leave request.
func (c *Client) CancelLeaveRequest(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/leave-requests/"+url.PathEscape(id)+"/cancel", nil, nil)
}

// Notifications lists the authenticated user's notification inbox.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var inbox []models.Notification
	if err := c.get(ctx, "/notifications", nil, &inbox); err != nil {
		return nil, err
	}
	return inbox, nil
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead marks the whole inbox read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.postJSON(ctx, "/notifications/read-all", nil, nil)
}

// Feed lists the announcement feed of a course instance.
func (c *Client) Feed(ctx context.Context, courseInstanceID string) ([]models.FeedPost, error) {
	var posts []models.FeedPost
	if err := c.get(ctx, "/course-instances/"+url.PathEscape(courseInstanceID)+"/feed", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

package screens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campusboard/internal/api"
	"campusboard/internal/models"
	"campusboard/internal/validation"
)

// LeaveScreen is the student leave-request screen.
type LeaveScreen struct {
	client *api.Client

	mu       sync.Mutex
	requests []models.LeaveRequest
	loadErr  string
}

// NewLeaveScreen creates the leave-request screen.
func NewLeaveScreen(client *api.Client) *LeaveScreen {
	return &LeaveScreen{client: client}
}

// Load refreshes the student's leave requests.
func (s *LeaveScreen) Load(ctx context.Context) error {
	requests, err := s.client.LeaveRequests(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = fmt.Sprintf("failed to load leave requests: %v", err)
		return err
	}
	s.requests = requests
	s.loadErr = ""
	return nil
}

// Requests returns the loaded list.
func (s *LeaveScreen) Requests() []models.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// LoadError returns the inline load error, empty when the last load worked.
func (s *LeaveScreen) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Submit validates and submits a new leave request, prepending it locally
// on success.
func (s *LeaveScreen) Submit(ctx context.Context, form validation.LeaveForm) (models.LeaveRequest, []validation.FieldError, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return models.LeaveRequest{}, errs, nil
	}

	from, _ := time.Parse("2006-01-02", form.FromDate)
	to, _ := time.Parse("2006-01-02", form.ToDate)
	created, err := s.client.SubmitLeaveRequest(ctx, from, to, form.Reason)
	if err != nil {
		return models.LeaveRequest{}, nil, err
	}

	s.mu.Lock()
	s.requests = append([]models.LeaveRequest{created}, s.requests...)
	s.mu.Unlock()
	return created, nil, nil
}

// Cancel cancels a pending request and updates its local status on success.
func (s *LeaveScreen) Cancel(ctx context.Context, id string) error {
	if err := s.client.CancelLeaveRequest(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.requests {
		if s.requests[i].ID == id {
			s.requests[i].Status = "cancelled"
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// InboxScreen is the student notification inbox.
type InboxScreen struct {
	client *api.Client

	mu      sync.Mutex
	items   []models.Notification
	loadErr string
}

// NewInboxScreen creates the notification inbox screen.
func NewInboxScreen(client *api.Client) *InboxScreen {
	return &InboxScreen{client: client}
}

// Load refreshes the inbox.
func (s *InboxScreen) Load(ctx context.Context) error {
	items, err := s.client.Notifications(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = fmt.Sprintf("failed to load notifications: %v", err)
		return err
	}
	s.items = items
	s.loadErr = ""
	return nil
}

// Items returns the loaded inbox.
func (s *InboxScreen) Items() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// LoadError returns the inline load error, empty when the last load worked.
func (s *InboxScreen) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Unread counts unread notifications.
func (s *InboxScreen) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	unread := 0
	for _, n := range s.items {
		if !n.Read {
			unread++
		}
	}
	return unread
}

// MarkRead marks one notification read remotely, then locally on success.
func (s *InboxScreen) MarkRead(ctx context.Context, id string) error {
	if err := s.client.MarkNotificationRead(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// MarkAllRead marks the whole inbox read remotely, then locally on success.
func (s *InboxScreen) MarkAllRead(ctx context.Context) error {
	if err := s.client.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.mu.Unlock()
	return nil
}

// FeedScreen is the course announcement feed.
type FeedScreen struct {
	client           *api.Client
	courseInstanceID string

	mu      sync.Mutex
	posts   []models.FeedPost
	loadErr string
}

// NewFeedScreen creates the feed screen for one course instance.
func NewFeedScreen(client *api.Client, courseInstanceID string) *FeedScreen {
	return &FeedScreen{client: client, courseInstanceID: courseInstanceID}
}

// Load refreshes the feed.
func (s *FeedScreen) Load(ctx context.Context) error {
	posts, err := s.client.Feed(ctx, s.courseInstanceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = fmt.Sprintf("failed to load feed: %v", err)
		return err
	}
	s.posts = posts
	s.loadErr = ""
	return nil
}

// Posts returns the loaded feed.
func (s *FeedScreen) Posts() []models.FeedPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

// LoadError returns the inline load error, empty when the last load worked.
func (s *FeedScreen) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

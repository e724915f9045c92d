package api

import (
	"context"
	"net/url"
	"time"

	"campusboard/internal/models"
)

// Gradebook fetches the roster/items/grades snapshot for a course instance.
func (c *Client) Gradebook(ctx context.Context, courseInstanceID string) (*models.Gradebook, error) {
	var gb models.Gradebook
	path := "/gradebook/course-instances/" + url.PathEscape(courseInstanceID)
	if err := c.get(ctx, path, nil, &gb); err != nil {
		return nil, err
	}
	c.cachePut("gradebook:"+courseInstanceID, &gb)
	return &gb, nil
}

// CachedGradebook returns the last successfully fetched gradebook snapshot
// for a course instance, if the snapshot cache holds one.
func (c *Client) CachedGradebook(courseInstanceID string) (*models.Gradebook, time.Time, error) {
	var gb models.Gradebook
	fetchedAt, err := c.cacheGet("gradebook:"+courseInstanceID, &gb)
	if err != nil {
		return nil, time.Time{}, err
	}
	return &gb, fetchedAt, nil
}

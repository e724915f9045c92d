package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"campusboard/internal/models"
)

// Semesters lists all semesters.
func (c *Client) Semesters(ctx context.Context) ([]models.Semester, error) {
	var semesters []models.Semester
	if err := c.get(ctx, "/semesters", nil, &semesters); err != nil {
		return nil, err
	}
	return semesters, nil
}

// CreateSemester creates a semester and returns the stored record.
func (c *Client) CreateSemester(ctx context.Context, s models.Semester) (models.Semester, error) {
	var created models.Semester
	if err := c.postJSON(ctx, "/semesters", s, &created); err != nil {
		return models.Semester{}, err
	}
	return created, nil
}

// UpdateSemester updates a semester by id.
func (c *Client) UpdateSemester(ctx context.Context, s models.Semester) (models.Semester, error) {
	var updated models.Semester
	if err := c.putJSON(ctx, "/semesters/"+url.PathEscape(s.ID), s, &updated); err != nil {
		return models.Semester{}, err
	}
	return updated, nil
}

// DeleteSemester deletes a semester by id.
func (c *Client) DeleteSemester(ctx context.Context, id string) error {
	return c.delete(ctx, "/semesters/"+url.PathEscape(id))
}

// Users lists all accounts.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUsers submits a bulk user-creation batch and returns per-row results.
func (c *Client) CreateUsers(ctx context.Context, users []models.NewUser) ([]models.UserCreateResult, error) {
	body := struct {
		Users []models.NewUser `json:"users"`
	}{users}
	var resp struct {
		Results []models.UserCreateResult `json:"results"`
	}
	if err := c.postJSON(ctx, "/users/bulk", body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// References lists uploaded reference documents.
func (c *Client) References(ctx context.Context) ([]models.ReferenceDoc, error) {
	var docs []models.ReferenceDoc
	if err := c.get(ctx, "/references", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadReference uploads a reference document as multipart form data.
func (c *Client) UploadReference(ctx context.Context, title, fileName string, content io.Reader) (models.ReferenceDoc, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("title", title); err != nil {
		return models.ReferenceDoc{}, err
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return models.ReferenceDoc{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return models.ReferenceDoc{}, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return models.ReferenceDoc{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/references", &buf)
	if err != nil {
		return models.ReferenceDoc{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var doc models.ReferenceDoc
	if err := c.do(req, &doc); err != nil {
		return models.ReferenceDoc{}, err
	}
	return doc, nil
}

// DeleteReference deletes a reference document by id.
func (c *Client) DeleteReference(ctx context.Context, id string) error {
	return c.delete(ctx, "/references/"+url.PathEscape(id))
}

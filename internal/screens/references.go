package screens

import (
	"context"
	"fmt"
	"io"
	"sync"

	"campusboard/internal/api"
	"campusboard/internal/models"
	"campusboard/internal/validation"
)

// ReferenceScreen is the admin reference-document uploader/list.
type ReferenceScreen struct {
	client  *api.Client
	maxSize int64

	mu      sync.Mutex
	docs    []models.ReferenceDoc
	loadErr string
}

// NewReferenceScreen creates the reference screen. Uploads larger than
// maxSize bytes are rejected client-side.
func NewReferenceScreen(client *api.Client, maxSize int64) *ReferenceScreen {
	return &ReferenceScreen{client: client, maxSize: maxSize}
}

// Load refreshes the document list.
func (s *ReferenceScreen) Load(ctx context.Context) error {
	docs, err := s.client.References(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = fmt.Sprintf("failed to load references: %v", err)
		return err
	}
	s.docs = docs
	s.loadErr = ""
	return nil
}

// Docs returns the loaded document list.
func (s *ReferenceScreen) Docs() []models.ReferenceDoc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs
}

// LoadError returns the inline load error, empty when the last load worked.
func (s *ReferenceScreen) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Upload validates and uploads one document of known size, then prepends it
// to the local list.
func (s *ReferenceScreen) Upload(ctx context.Context, title, fileName string, size int64, content io.Reader) (models.ReferenceDoc, []validation.FieldError, error) {
	form := validation.ReferenceForm{Title: title, FileName: fileName}
	if errs := form.Validate(); len(errs) > 0 {
		return models.ReferenceDoc{}, errs, nil
	}
	if size > s.maxSize {
		return models.ReferenceDoc{}, []validation.FieldError{
			{Field: "File", Message: fmt.Sprintf("exceeds the %d MB upload limit", s.maxSize/(1024*1024))},
		}, nil
	}

	doc, err := s.client.UploadReference(ctx, title, fileName, content)
	if err != nil {
		return models.ReferenceDoc{}, nil, err
	}

	s.mu.Lock()
	s.docs = append([]models.ReferenceDoc{doc}, s.docs...)
	s.mu.Unlock()
	return doc, nil, nil
}

// Delete removes a document remotely, then locally on success. A 404 means
// the document is already gone, so the local row is dropped all the same.
func (s *ReferenceScreen) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteReference(ctx, id); err != nil && !api.IsNotFound(err) {
		return err
	}

	s.mu.Lock()
	kept := s.docs[:0]
	for _, doc := range s.docs {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	s.docs = kept
	s.mu.Unlock()
	return nil
}

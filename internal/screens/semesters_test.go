package screens

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusboard/internal/api"
	"campusboard/internal/credentials"
)

func newSemesterTestServer(t *testing.T, deleteStatus int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/semesters":
			io.WriteString(w, `[
				{"id":"sem-1","name":"Fall 2025","active":true},
				{"id":"sem-2","name":"Spring 2026"}
			]`)
		case r.Method == http.MethodDelete:
			w.WriteHeader(deleteStatus)
			if deleteStatus == http.StatusNotFound {
				io.WriteString(w, `{"error":"no such semester"}`)
			}
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newSemesterScreen(t *testing.T, server *httptest.Server) *SemesterScreen {
	t.Helper()
	screen := NewSemesterScreen(api.NewClient(server.URL, credentials.RoleAdmin, credentials.StaticProvider("t")))
	if err := screen.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return screen
}

func TestSemesterDelete(t *testing.T) {
	screen := newSemesterScreen(t, newSemesterTestServer(t, http.StatusNoContent))

	if err := screen.Delete(context.Background(), "sem-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	semesters := screen.Semesters()
	if len(semesters) != 1 || semesters[0].ID != "sem-2" {
		t.Errorf("semesters after delete = %+v", semesters)
	}
}

func TestSemesterDeleteOfMissingRecord(t *testing.T) {
	// the record vanished server-side (another admin deleted it); the
	// local row is still dropped instead of surfacing the 404
	screen := newSemesterScreen(t, newSemesterTestServer(t, http.StatusNotFound))

	if err := screen.Delete(context.Background(), "sem-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if semesters := screen.Semesters(); len(semesters) != 1 {
		t.Errorf("semesters after delete = %+v", semesters)
	}
}

func TestSemesterDeleteFailureKeepsRow(t *testing.T) {
	screen := newSemesterScreen(t, newSemesterTestServer(t, http.StatusForbidden))

	if err := screen.Delete(context.Background(), "sem-1"); err == nil {
		t.Fatal("expected a delete error")
	}
	if semesters := screen.Semesters(); len(semesters) != 2 {
		t.Errorf("semesters after failed delete = %+v, want both kept", semesters)
	}
}

package task

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bingshan1999/TaskManager/internal/dto"
	"github.com/bingshan1999/TaskManager/internal/middleware"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	svc := NewTaskService(NewRepository(newTestDB(t)), nil, zerolog.Nop())
	router := chi.NewRouter()
	NewHandler(svc, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) dto.TaskResponse {
	t.Helper()

	var resp dto.TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode task response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHandlerEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/tasks", `{"title":"Buy milk","assignedTo":"Alice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /tasks status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeTask(t, rec)
	if created.ID != 1 || created.Title != "Buy milk" || created.AssignedTo != "Alice" {
		t.Errorf("created = %+v", created)
	}
	if created.CreatedAt == "" {
		t.Error("createdAt is empty")
	}
	if created.Status != nil || created.Description != nil {
		t.Errorf("unset fields should be null: %+v", created)
	}

	rec = do(t, router, http.MethodGet, "/tasks/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /tasks/1 status = %d", rec.Code)
	}
	if got := decodeTask(t, rec); got != created {
		t.Errorf("GET /tasks/1 = %+v, want %+v", got, created)
	}

	rec = do(t, router, http.MethodPut, "/tasks/1", `{"title":"Buy milk and eggs","assignedTo":"Alice","status":"IN_PROGRESS"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /tasks/1 status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeTask(t, rec)
	if updated.ID != 1 || updated.Title != "Buy milk and eggs" || updated.Status == nil || *updated.Status != "IN_PROGRESS" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Errorf("createdAt changed from %s to %s", created.CreatedAt, updated.CreatedAt)
	}

	rec = do(t, router, http.MethodDelete, "/tasks/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE /tasks/1 status = %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("DELETE body = %q, want empty", rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/tasks/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /tasks/1 after delete status = %d, want 404", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("404 body = %q, want empty", rec.Body.String())
	}
}

func TestHandlerTaskList(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/tasks", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty list = %d %q, want 200 []", rec.Code, rec.Body.String())
	}

	for _, body := range []string{
		`{"title":"a","assignedTo":"x","status":"PENDING"}`,
		`{"title":"b","assignedTo":"y","description":"second"}`,
	} {
		if rec := do(t, router, http.MethodPost, "/tasks", body); rec.Code != http.StatusOK {
			t.Fatalf("POST %s status = %d", body, rec.Code)
		}
	}

	rec = do(t, router, http.MethodGet, "/tasks", "")
	var list []dto.TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0].Title != "a" || list[1].Title != "b" {
		t.Errorf("list = %+v", list)
	}
	if list[1].Description == nil || *list[1].Description != "second" {
		t.Errorf("description = %v", list[1].Description)
	}
}

func TestHandlerIgnoresClientIDAndCreatedAt(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/tasks", `{"id":77,"createdAt":"1999-01-01T00:00:00Z","title":"T","assignedTo":"A"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	created := decodeTask(t, rec)
	if created.ID != 1 {
		t.Errorf("id = %d, want generated 1", created.ID)
	}
	if strings.HasPrefix(created.CreatedAt, "1999") {
		t.Errorf("createdAt = %s, want server timestamp", created.CreatedAt)
	}
}

func TestHandlerErrors(t *testing.T) {
	router := newTestRouter(t)
	if rec := do(t, router, http.MethodPost, "/tasks", `{"title":"T","assignedTo":"A"}`); rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d", rec.Code)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "get missing", method: http.MethodGet, path: "/tasks/42", wantStatus: http.StatusNotFound},
		{name: "put missing", method: http.MethodPut, path: "/tasks/42", body: `{"title":"T","assignedTo":"A"}`, wantStatus: http.StatusNotFound},
		{name: "delete missing", method: http.MethodDelete, path: "/tasks/42", wantStatus: http.StatusNotFound},
		{name: "non numeric id", method: http.MethodGet, path: "/tasks/abc", wantStatus: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: "/tasks", body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "unknown status", method: http.MethodPost, path: "/tasks", body: `{"title":"T","assignedTo":"A","status":"DONE"}`, wantStatus: http.StatusBadRequest},
		{name: "missing title", method: http.MethodPost, path: "/tasks", body: `{"assignedTo":"A"}`, wantStatus: http.StatusInternalServerError},
		{name: "null assignee on update", method: http.MethodPut, path: "/tasks/1", body: `{"title":"T"}`, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusNotFound && rec.Body.Len() != 0 {
				t.Errorf("404 body = %q, want empty", rec.Body.String())
			}
		})
	}

	rec := do(t, router, http.MethodGet, "/tasks/1", "")
	if got := decodeTask(t, rec); got.AssignedTo != "A" {
		t.Errorf("failed update changed the task: %+v", got)
	}
}

func TestHandlerBodyTooLarge(t *testing.T) {
	svc := NewTaskService(NewRepository(newTestDB(t)), nil, zerolog.Nop())
	router := chi.NewRouter()
	router.Use(middleware.RequestSizeLimit(32))
	NewHandler(svc, zerolog.Nop()).RegisterRoutes(router)

	body := `{"title":"` + strings.Repeat("x", 100) + `","assignedTo":"A"}`
	for _, tt := range []struct{ method, path string }{
		{http.MethodPost, "/tasks"},
		{http.MethodPut, "/tasks/1"},
	} {
		rec := do(t, router, tt.method, tt.path, body)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("%s %s status = %d, want 413 (body %q)", tt.method, tt.path, rec.Code, rec.Body.String())
		}
	}

	if rec := do(t, router, http.MethodPost, "/tasks", `{"title":`); rec.Code != http.StatusBadRequest {
		t.Errorf("small malformed body status = %d, want 400", rec.Code)
	}
}

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	adminapp "github.com/sngm3741/pcb-intake-services/api/internal/admin/application"
	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

type memoryRepo struct {
	subs []domain.Submission
	err  error
}

func (m *memoryRepo) List(context.Context) ([]domain.Submission, error) {
	return m.subs, m.err
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Submission, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].Status = status
			out := m.subs[i]
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func newRouter(repo *memoryRepo) http.Handler {
	r := chi.NewRouter()
	NewHandler(Config{Reviews: adminapp.NewReviewService(repo)}).Register(r)
	return r
}

func TestSubmissionList(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo := &memoryRepo{subs: []domain.Submission{
		{ID: "b", Name: "Bob", FileURL: "https://f/b.zip", Status: domain.StatusNew, CreatedAt: created.Add(time.Minute)},
		{ID: "a", Name: "Ada", FileURL: "https://f/a.zip", Status: domain.StatusReviewed, CreatedAt: created},
	}}
	rec := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Submissions []map[string]any `json:"submissions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Submissions) != 2 || resp.Submissions[0]["id"] != "b" || resp.Submissions[1]["status"] != "reviewed" {
		t.Fatalf("unexpected list %v", resp.Submissions)
	}
	if resp.Submissions[0]["file_url"] != "https://f/b.zip" {
		t.Fatalf("file url missing: %v", resp.Submissions[0])
	}
}

func TestSubmissionListEmptyIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&memoryRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))
	if strings.TrimSpace(rec.Body.String()) != `{"submissions":[]}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestSubmissionListStoreFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&memoryRepo{err: errors.New("mongo down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestSubmissionStatusUpdate(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"ok", "a", `{"status":"processing"}`, http.StatusOK},
		{"invalid status", "a", `{"status":"shipped"}`, http.StatusBadRequest},
		{"unknown id", "zzz", `{"status":"reviewed"}`, http.StatusNotFound},
		{"bad body", "a", `status=reviewed`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryRepo{subs: []domain.Submission{{ID: "a", Name: "Ada", Status: domain.StatusNew}}}
			req := httptest.NewRequest(http.MethodPatch, "/submissions/"+tt.id+"/status", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusOK && repo.subs[0].Status != domain.StatusProcessing {
				t.Fatalf("status not stored")
			}
		})
	}
}

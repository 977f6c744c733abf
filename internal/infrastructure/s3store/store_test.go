package s3store

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

func newFakeS3(t *testing.T, status int) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func newTestStore(t *testing.T, endpoint string) *Store {
	t.Helper()
	store, err := New(context.Background(), Config{
		Endpoint:        endpoint,
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Bucket:          "pcb-intake",
		UsePathStyle:    true,
		MaxAttempts:     1,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestPutUploadsUnderKey(t *testing.T) {
	srv, requests := newFakeS3(t, http.StatusOK)
	store := newTestStore(t, srv.URL)

	data := []byte("%PDF-1.7 board")
	url, err := store.Put(context.Background(), "pcb_uploads/abc.pdf", bytes.NewReader(data), int64(len(data)), "application/pdf")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != srv.URL+"/pcb-intake/pcb_uploads/abc.pdf" {
		t.Fatalf("unexpected url %q", url)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("expected one request, got %d", len(got))
	}
	if got[0].method != http.MethodPut || got[0].path != "/pcb-intake/pcb_uploads/abc.pdf" {
		t.Fatalf("unexpected request %+v", got[0])
	}
	if got[0].contentType != "application/pdf" || got[0].body != string(data) {
		t.Fatalf("object not sent as-is: %+v", got[0])
	}
}

func TestPutPropagatesProviderError(t *testing.T) {
	srv, _ := newFakeS3(t, http.StatusForbidden)
	store := newTestStore(t, srv.URL)

	if _, err := store.Put(context.Background(), "pcb_uploads/abc.zip", bytes.NewReader([]byte("zip")), 3, "application/zip"); err == nil {
		t.Fatalf("expected upload error")
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"cdn", Config{Bucket: "b", PublicBaseURL: "https://cdn.example", Endpoint: "http://minio:9000"}, "https://cdn.example/pcb_uploads/x.zip"},
		{"endpoint", Config{Bucket: "b", Endpoint: "http://minio:9000"}, "http://minio:9000/b/pcb_uploads/x.zip"},
		{"aws", Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com/pcb_uploads/x.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{cfg: tt.cfg}
			if got := s.PublicURL("pcb_uploads/x.zip"); got != tt.want {
				t.Fatalf("PublicURL = %q, want %q", got, tt.want)
			}
		})
	}
}

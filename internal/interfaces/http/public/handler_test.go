package public

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/pcb-intake-services/api/internal/auth"
	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	publicapp "github.com/sngm3741/pcb-intake-services/api/internal/public/application"
)

type stubIntake struct {
	err      error
	fields   domain.ContactFields
	upload   *publicapp.Upload
	fileBody string
}

func (s *stubIntake) Submit(_ context.Context, fields domain.ContactFields, upload *publicapp.Upload) (*domain.Submission, error) {
	s.fields = fields
	s.upload = upload
	if upload != nil {
		data, _ := io.ReadAll(upload.Body)
		s.fileBody = string(data)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Submission{ID: "sub-1", Name: fields.Name, Status: domain.StatusNew, CreatedAt: time.Now()}, nil
}

type stubAuthenticator struct {
	err error
}

func (s stubAuthenticator) Authenticate(secret string) (auth.Credential, error) {
	if s.err != nil {
		return auth.Credential{}, s.err
	}
	if secret == "" {
		return auth.Credential{}, &domain.ValidationError{Field: "secret", Message: "Password required"}
	}
	if secret != "admin123" {
		return auth.Credential{}, domain.ErrInvalidCredential
	}
	return auth.Credential{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func newRouter(intake Intake, authn Authenticator, maxUpload int64) http.Handler {
	h := NewHandler(Config{Intake: intake, Authenticator: authn, MaxUploadBytes: maxUpload})
	r := chi.NewRouter()
	passthrough := func(next http.Handler) http.Handler { return next }
	h.Register(r, passthrough)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileName, contentType string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if fileName != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		_, _ = part.Write(file)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

var contact = map[string]string{"name": "Ada", "email": "ada@example.com", "phone": "555", "notes": "4 layers"}

func TestUploadSuccess(t *testing.T) {
	intake := &stubIntake{}
	router := newRouter(intake, stubAuthenticator{}, 0)

	body, ct := multipartBody(t, contact, "board.zip", "application/zip", []byte("PK\x03\x04"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["success"] != true {
		t.Fatalf("unexpected response %v", resp)
	}
	if intake.fields.Notes != "4 layers" || intake.upload.FileName != "board.zip" || intake.upload.ContentType != "application/zip" {
		t.Fatalf("form not passed through: %+v %+v", intake.fields, intake.upload)
	}
	if intake.fileBody != "PK\x03\x04" {
		t.Fatalf("file bytes not passed through: %q", intake.fileBody)
	}
}

func TestUploadWithoutFile(t *testing.T) {
	intake := &stubIntake{err: domain.ErrMissingFile}
	router := newRouter(intake, stubAuthenticator{}, 0)

	body, ct := multipartBody(t, contact, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if intake.upload != nil {
		t.Fatalf("missing file should reach intake as nil")
	}
	if got := decode(t, rec)["error"]; got != "No file uploaded" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &domain.ValidationError{Field: "email", Message: "Email is required"}, http.StatusBadRequest, "Email is required"},
		{"unsupported", &domain.UnsupportedFileTypeError{ContentType: "text/plain"}, http.StatusBadRequest, "Invalid file type: text/plain"},
		{"relay", &domain.RelayError{Err: errors.New("secret bucket detail")}, http.StatusInternalServerError, "We could not process your submission. Please try again."},
		{"record", &domain.RecordError{Err: errors.New("pq: connection reset")}, http.StatusInternalServerError, "We could not process your submission. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&stubIntake{err: tt.err}, stubAuthenticator{}, 0)
			body, ct := multipartBody(t, contact, "board.pdf", "application/pdf", []byte("%PDF"))
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			resp := decode(t, rec)
			if resp["error"] != tt.message || resp["success"] != false {
				t.Fatalf("unexpected body %v", resp)
			}
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	router := newRouter(&stubIntake{}, stubAuthenticator{}, 1024)
	body, ct := multipartBody(t, contact, "board.zip", "application/zip", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUploadRejectsNonMultipart(t *testing.T) {
	router := newRouter(&stubIntake{}, stubAuthenticator{}, 0)
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"name":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name   string
		authn  Authenticator
		body   string
		status int
		errMsg string
	}{
		{"success", stubAuthenticator{}, `{"secret":"admin123"}`, http.StatusOK, ""},
		{"password alias", stubAuthenticator{}, `{"password":"admin123"}`, http.StatusOK, ""},
		{"wrong secret", stubAuthenticator{}, `{"secret":"nope"}`, http.StatusUnauthorized, "Invalid password"},
		{"empty secret", stubAuthenticator{}, `{"secret":""}`, http.StatusBadRequest, "Password required"},
		{"malformed", stubAuthenticator{}, `{`, http.StatusBadRequest, "Invalid request body"},
		{"unprovisioned", stubAuthenticator{err: domain.ErrServerMisconfigured}, `{"secret":"admin123"}`, http.StatusInternalServerError, "Server misconfiguration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&stubIntake{}, tt.authn, 0)
			req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decode(t, rec)
			if tt.errMsg != "" && resp["error"] != tt.errMsg {
				t.Fatalf("error = %v, want %q", resp["error"], tt.errMsg)
			}
			if tt.status == http.StatusOK && (resp["token"] != "tok" || resp["tokenType"] != "Bearer") {
				t.Fatalf("unexpected token response %v", resp)
			}
		})
	}
}

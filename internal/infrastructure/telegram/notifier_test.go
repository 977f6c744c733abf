package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

func sampleSummary() domain.Summary {
	return domain.Summary{
		SubmissionID: "abc",
		Name:         "Ada_Lovelace",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		FileName:     "board.zip",
		FileURL:      "https://files.example/pcb_uploads/x.zip",
		SubmittedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNotifyPostsSendMessage(t *testing.T) {
	var (
		gotPath string
		gotBody sendMessageRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	notifier := New(Config{APIURL: srv.URL, BotToken: "123:token", ChatID: "-100", AdminPanelURL: "https://pcb.example/admin"})
	if err := notifier.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotPath != "/bot123:token/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody.ChatID != "-100" || gotBody.ParseMode != "Markdown" {
		t.Fatalf("unexpected payload %+v", gotBody)
	}
	for _, want := range []string{"*Name:* Ada\\_Lovelace", "*Notes:* None", "[board.zip](https://files.example/pcb_uploads/x.zip)", "2024-05-01 10:00:00 UTC", "(https://pcb.example/admin)"} {
		if !strings.Contains(gotBody.Text, want) {
			t.Fatalf("message missing %q:\n%s", want, gotBody.Text)
		}
	}
}

func TestNotifyReportsFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusBadGateway, `{"ok":false,"description":"Bad Gateway"}`},
		{"not ok", http.StatusOK, `{"ok":false,"description":"chat not found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			notifier := New(Config{APIURL: srv.URL, BotToken: "t", ChatID: "c"})
			if err := notifier.Notify(context.Background(), sampleSummary()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{BotToken: "t"}).Enabled() {
		t.Fatalf("chat id is required")
	}
	if !(Config{BotToken: "t", ChatID: "c"}).Enabled() {
		t.Fatalf("expected enabled")
	}
}

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

const DefaultAPIURL = "https://api.telegram.org"

// Config provides dependencies for Notifier.
type Config struct {
	APIURL        string
	BotToken      string
	ChatID        string
	AdminPanelURL string
	Location      *time.Location
	HTTPClient    *http.Client
}

// Enabled reports whether both the bot token and the chat id are configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.BotToken) != "" && strings.TrimSpace(c.ChatID) != ""
}

// Notifier posts a submission alert to a Telegram chat through the Bot API.
type Notifier struct {
	endpoint      string
	chatID        string
	adminPanelURL string
	location      *time.Location
	httpClient    *http.Client
}

func New(cfg Config) *Notifier {
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		endpoint:      fmt.Sprintf("%s/bot%s/sendMessage", apiURL, strings.TrimSpace(cfg.BotToken)),
		chatID:        strings.TrimSpace(cfg.ChatID),
		adminPanelURL: strings.TrimSpace(cfg.AdminPanelURL),
		location:      loc,
		httpClient:    client,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (n *Notifier) Notify(ctx context.Context, summary domain.Summary) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.chatID,
		Text:      BuildMessage(summary, n.adminPanelURL, n.location),
		ParseMode: "Markdown",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var decoded sendMessageResponse
	_ = json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d: %s", resp.StatusCode, strings.TrimSpace(decoded.Description))
	}
	if !decoded.OK {
		return fmt.Errorf("telegram rejected message: %s", strings.TrimSpace(decoded.Description))
	}
	return nil
}

// BuildMessage renders the Markdown alert text.
func BuildMessage(summary domain.Summary, adminPanelURL string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	notes := strings.TrimSpace(summary.Notes)
	if notes == "" {
		notes = "None"
	}
	submittedAt := summary.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	var builder strings.Builder
	builder.WriteString("🔔 *New PCB Submission*\n\n")
	builder.WriteString(fmt.Sprintf("👤 *Name:* %s\n", escapeMarkdown(summary.Name)))
	builder.WriteString(fmt.Sprintf("📧 *Email:* %s\n", escapeMarkdown(summary.Email)))
	builder.WriteString(fmt.Sprintf("📱 *Phone:* %s\n", escapeMarkdown(summary.Phone)))
	builder.WriteString(fmt.Sprintf("📝 *Notes:* %s\n", escapeMarkdown(notes)))
	if summary.FileURL != "" {
		builder.WriteString(fmt.Sprintf("📎 *File:* [%s](%s)\n", escapeMarkdown(summary.FileName), summary.FileURL))
	} else {
		builder.WriteString(fmt.Sprintf("📎 *File:* %s\n", escapeMarkdown(summary.FileName)))
	}
	builder.WriteString(fmt.Sprintf("⏰ *Time:* %s\n", submittedAt.In(loc).Format("2006-01-02 15:04:05 MST")))
	if adminPanelURL != "" {
		builder.WriteString(fmt.Sprintf("\n🔗 [View Admin Panel](%s)\n", adminPanelURL))
	}
	return builder.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// LogNotifier stands in when no chat is configured and only records the alert in the log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, summary domain.Summary) error {
	if n.Logger != nil {
		n.Logger.Info("notification channel not configured, skipping alert",
			zap.String("submissionId", summary.SubmissionID),
			zap.String("fileName", summary.FileName),
		)
	}
	return nil
}

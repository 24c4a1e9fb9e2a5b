package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"watchmigrate/internal/config"
	"watchmigrate/internal/report"
)

const userAgent = "watchmigrate/0.1.0"

// Service defines the notification surface exposed to the migrate command.
type Service interface {
	NotifyMigrationCompleted(ctx context.Context, rep report.Report, dryRun bool) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether cfg routes notifications anywhere.
func Enabled(cfg *config.Config) bool {
	return cfg != nil && strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyMigrationCompleted(ctx context.Context, rep report.Report, dryRun bool) error {
	elapsed := rep.Elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	var message strings.Builder
	if dryRun {
		fmt.Fprintf(&message, "Would mark %d of %d items watched", rep.WouldMark, rep.Total)
	} else {
		fmt.Fprintf(&message, "Marked %d of %d items watched", rep.Marked, rep.Total)
	}
	fmt.Fprintf(&message, " in %s", elapsed)
	if rep.AlreadyWatched > 0 {
		fmt.Fprintf(&message, "\nAlready watched: %d", rep.AlreadyWatched)
	}
	if count := len(rep.NoMatch); count > 0 {
		fmt.Fprintf(&message, "\nUnmatched: %d", count)
	}
	if count := len(rep.Malformed); count > 0 {
		fmt.Fprintf(&message, "\nMalformed target records: %d", count)
	}

	data := payload{
		title:   "watchmigrate - Migration Complete",
		message: message.String(),
		tags:    []string{"watchmigrate", "migrate", "completed"},
	}
	switch {
	case rep.Failed > 0:
		data.title = "watchmigrate - Migration Complete (with errors)"
		fmt.Fprintf(&message, "\nFailed updates: %d", rep.Failed)
		data.message = message.String()
		data.priority = "high"
	case dryRun:
		data.title = "watchmigrate - Dry Run Complete"
		data.tags = []string{"watchmigrate", "migrate", "dry-run"}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "watchmigrate - Error",
		message:  builder.String(),
		tags:     []string{"watchmigrate", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "watchmigrate - Test",
		message:  "Notification system test",
		tags:     []string{"watchmigrate", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyMigrationCompleted(context.Context, report.Report, bool) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }

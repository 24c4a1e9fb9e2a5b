package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"watchmigrate/internal/config"
	"watchmigrate/internal/notifications"
	"watchmigrate/internal/report"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), requests...)
	}
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	if notifications.Enabled(&cfg) {
		t.Fatal("expected notifications disabled by default")
	}
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyMigrationCompleted(context.Background(), report.Report{Total: 1}, false); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  []string
		expectTags     string
		expectPriority string
	}{
		{
			name: "migration completed",
			send: func(s notifications.Service) error {
				return s.NotifyMigrationCompleted(context.Background(), report.Report{
					Total: 10, Marked: 6, AlreadyWatched: 2, NoMatch: []string{"a", "b"}, Elapsed: 3200 * time.Millisecond,
				}, false)
			},
			expectTitle:   "watchmigrate - Migration Complete",
			expectMessage: []string{"Marked 6 of 10 items watched in 3s", "Already watched: 2", "Unmatched: 2"},
			expectTags:    "watchmigrate,migrate,completed",
		},
		{
			name: "dry run",
			send: func(s notifications.Service) error {
				return s.NotifyMigrationCompleted(context.Background(), report.Report{Total: 4, WouldMark: 3}, true)
			},
			expectTitle:   "watchmigrate - Dry Run Complete",
			expectMessage: []string{"Would mark 3 of 4 items watched"},
			expectTags:    "watchmigrate,migrate,dry-run",
		},
		{
			name: "completed with failures",
			send: func(s notifications.Service) error {
				return s.NotifyMigrationCompleted(context.Background(), report.Report{Total: 2, Marked: 1, Failed: 1}, false)
			},
			expectTitle:    "watchmigrate - Migration Complete (with errors)",
			expectMessage:  []string{"Marked 1 of 2", "Failed updates: 1"},
			expectTags:     "watchmigrate,migrate,completed",
			expectPriority: "high",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("jellyfin unreachable"), "migration")
			},
			expectTitle:    "watchmigrate - Error",
			expectMessage:  []string{"Error during migration: jellyfin unreachable"},
			expectTags:     "watchmigrate,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test notification",
			send:           func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "watchmigrate - Test",
			expectMessage:  []string{"Notification system test"},
			expectTags:     "watchmigrate,test",
			expectPriority: "low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newCaptureServer(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL

			if err := tt.send(notifications.NewService(&cfg)); err != nil {
				t.Fatalf("send: %v", err)
			}
			got := requests()
			if len(got) != 1 {
				t.Fatalf("expected one request, got %d", len(got))
			}
			req := got[0]
			if req.title != tt.expectTitle {
				t.Fatalf("title = %q, want %q", req.title, tt.expectTitle)
			}
			for _, want := range tt.expectMessage {
				if !strings.Contains(req.body, want) {
					t.Fatalf("body %q missing %q", req.body, want)
				}
			}
			if req.tags != tt.expectTags {
				t.Fatalf("tags = %q, want %q", req.tags, tt.expectTags)
			}
			if req.priority != tt.expectPriority {
				t.Fatalf("priority = %q, want %q", req.priority, tt.expectPriority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL

	err := notifications.NewService(&cfg).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

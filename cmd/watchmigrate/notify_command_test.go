package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func newNtfyRecorder(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var titles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		titles = append(titles, r.Header.Get("Title"))
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), titles...)
	}
}

func TestTestNotifyDisabled(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}

func TestTestNotifySends(t *testing.T) {
	env := setupCLITestEnv(t)
	ntfy, titles := newNtfyRecorder(t)
	env.cfg.Notifications.NtfyTopic = ntfy.URL
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if got := titles(); len(got) != 1 || got[0] != "watchmigrate - Test" {
		t.Fatalf("unexpected notifications %v", got)
	}
}

func TestMigrateSendsCompletionNotification(t *testing.T) {
	env := setupCLITestEnv(t)
	ntfy, titles := newNtfyRecorder(t)
	env.cfg.Notifications.NtfyTopic = ntfy.URL
	writeTestConfig(t, env.configPath, env.cfg)

	if _, logs, err := runCLI(t, []string{"migrate", "--dry-run"}, env.configPath); err != nil {
		t.Fatalf("migrate: %v\nlogs:\n%s", err, logs)
	}
	if got := titles(); len(got) != 1 || got[0] != "watchmigrate - Dry Run Complete" {
		t.Fatalf("unexpected notifications %v", got)
	}
}

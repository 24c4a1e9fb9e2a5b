package services_test

import (
	"errors"
	"strings"
	"testing"

	"watchmigrate/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "jellyfin", "mark watched", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"jellyfin", "mark watched", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestIsUserError(t *testing.T) {
	if !services.IsUserError(services.Wrap(services.ErrNotFound, "jellyfin", "resolve user", "no such user", nil)) {
		t.Fatal("expected not-found to be a user error")
	}
	if !services.IsUserError(services.Wrap(services.ErrConfiguration, "plex", "sections", "", nil)) {
		t.Fatal("expected configuration error to be a user error")
	}
	if services.IsUserError(services.Wrap(services.ErrExternalService, "plex", "sections", "", errors.New("503"))) {
		t.Fatal("expected remote failure not to be a user error")
	}
}

package services_test

import (
	"context"
	"testing"

	"watchmigrate/internal/services"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "abc")
	id, ok := services.RunIDFromContext(ctx)
	if !ok || id != "abc" {
		t.Fatalf("expected run id abc, got %q (%v)", id, ok)
	}
}

func TestWithRunIDIgnoresEmpty(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id for empty value")
	}
}

func TestNewRunContextGeneratesDistinctIDs(t *testing.T) {
	ctx1, id1 := services.NewRunContext(context.Background())
	_, id2 := services.NewRunContext(context.Background())
	if id1 == "" || id1 == id2 {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", id1, id2)
	}
	if got, _ := services.RunIDFromContext(ctx1); got != id1 {
		t.Fatalf("expected context to carry %q, got %q", id1, got)
	}
}

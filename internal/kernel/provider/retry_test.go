package provider

import (
	"context"
	"errors"
	"testing"
)

func TestOpenWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	got, err := openWithRetry(context.Background(), func(error) bool { return true }, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestOpenWithRetryNonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	_, err := openWithRetry(context.Background(), func(error) bool { return false }, func() (string, error) {
		attempts++
		return "", errors.New("fatal")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestOpenWithRetryExhaustsAfterFourRetries(t *testing.T) {
	attempts := 0
	_, err := openWithRetry(context.Background(), func(error) bool { return true }, func() (string, error) {
		attempts++
		return "", errors.New("always fails")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != maxStreamOpenRetries+1 {
		t.Fatalf("expected %d attempts, got %d", maxStreamOpenRetries+1, attempts)
	}
}

func TestOpenWithRetryRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := openWithRetry(ctx, func(error) bool { return true }, func() (string, error) {
		return "", errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

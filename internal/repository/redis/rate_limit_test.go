package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRateLimitRepository_RecordAndCount(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{
		KeyPrefix: "ratelimit",
		TTL:       2 * time.Minute,
	})

	ctx := context.Background()
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	window := time.Minute

	for _, offset := range []time.Duration{-90 * time.Second, -30 * time.Second, -5 * time.Second} {
		if err := repo.RecordAttempt(ctx, "203.0.113.7", now.Add(offset)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "203.0.113.7", window, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 attempts inside window, got %d", count)
	}

	remaining := server.TTL("ratelimit:203.0.113.7")
	if remaining <= 0 || remaining > 2*time.Minute {
		t.Fatalf("expected ttl within (0, 2m], got %v", remaining)
	}
}

func TestRateLimitRepository_TrimWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "ratelimit"})

	ctx := context.Background()
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)

	if err := repo.RecordAttempt(ctx, "user-1", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "user-1", now.Add(-10*time.Second)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	if err := repo.TrimWindow(ctx, "user-1", time.Minute, now); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "user-1", 10*time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected trimmed set to hold 1 attempt, got %d", count)
	}
}

func TestRateLimitRepository_OldestAttempt(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "ratelimit"})

	ctx := context.Background()
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)

	if _, found, err := repo.OldestAttempt(ctx, "user-2", time.Minute, now); err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	} else if found {
		t.Fatal("expected no attempts for fresh identifier")
	}

	oldest := now.Add(-45 * time.Second)
	if err := repo.RecordAttempt(ctx, "user-2", oldest); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "user-2", now.Add(-5*time.Second)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	ts, found, err := repo.OldestAttempt(ctx, "user-2", time.Minute, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !found {
		t.Fatal("expected an attempt inside the window")
	}
	if !ts.Equal(oldest) {
		t.Fatalf("expected oldest %v, got %v", oldest, ts)
	}

	if _, found, err = repo.OldestAttempt(ctx, "user-2", 30*time.Second, now); err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	} else if !found {
		t.Fatal("expected the newer attempt inside the 30s window")
	}
}

func TestRateLimitRepository_WindowValidation(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "ratelimit"})

	ctx := context.Background()

	if _, err := repo.CountAttempts(ctx, "user-3", 0, time.Now()); err == nil {
		t.Fatal("expected error for non-positive window")
	}
	if err := repo.TrimWindow(ctx, "user-3", -time.Second, time.Now()); err == nil {
		t.Fatal("expected error for non-positive window")
	}
}

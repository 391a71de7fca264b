//go:build integration

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_URL")
	if addr == "" {
		addr = "localhost:6380"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRedisWriter_SummaryLifecycle(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	w := NewRedisWriter(client, time.Hour, 3*time.Hour)

	if _, err := w.ReadMatchSummary(ctx, 7); !errors.Is(err, ErrNoSummary) {
		t.Fatalf("expected ErrNoSummary, got %v", err)
	}

	live := scoring.Summary{MatchID: 7, HomeTeam: "Riverside CC", Status: scoring.StatusLive, Score: scoring.Score{Runs: 45, Wickets: 2, OversText: "6.3"}}
	if err := w.WriteMatchSummary(ctx, live); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := w.ReadMatchSummary(ctx, 7)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Score.Runs != 45 || got.Score.OversText != "6.3" {
		t.Errorf("unexpected summary %+v", got)
	}
	if ttl := client.TTL(ctx, SummaryKey(7)).Val(); ttl > time.Hour || ttl <= 0 {
		t.Errorf("expected live TTL, got %v", ttl)
	}
	ids, _ := w.LiveMatchIDs(ctx)
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("expected match 7 live, got %v", ids)
	}

	live.Status = scoring.StatusCompleted
	if err := w.WriteMatchSummary(ctx, live); err != nil {
		t.Fatalf("write final: %v", err)
	}
	if ttl := client.TTL(ctx, SummaryKey(7)).Val(); ttl <= time.Hour {
		t.Errorf("expected final TTL, got %v", ttl)
	}
	if ids, _ := w.LiveMatchIDs(ctx); len(ids) != 0 {
		t.Errorf("completed match must leave the live set, got %v", ids)
	}
}

// Package cache keeps the latest score summary of every match in Redis so
// scoreboards can poll it without touching the scoring service's locks.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

// LiveMatchesKey is a set holding the ids of matches not yet completed.
const LiveMatchesKey = "matches:live"

// ErrNoSummary is returned when Redis holds no summary for a match.
var ErrNoSummary = errors.New("no cached summary")

// RedisWriter writes match summaries to Redis.
type RedisWriter struct {
	client   *redis.Client
	ttlLive  time.Duration
	ttlFinal time.Duration
}

// NewRedisWriter creates a writer.  ttlLive applies while a match is live
// or paused, ttlFinal once it is completed.
func NewRedisWriter(client *redis.Client, ttlLive, ttlFinal time.Duration) *RedisWriter {
	return &RedisWriter{client: client, ttlLive: ttlLive, ttlFinal: ttlFinal}
}

// SummaryKey is the Redis key for a match summary.
func SummaryKey(matchID uint64) string {
	return fmt.Sprintf("match:%d:summary", matchID)
}

// WriteMatchSummary stores the summary and keeps the live set in step.
func (w *RedisWriter) WriteMatchSummary(ctx context.Context, s scoring.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	id := strconv.FormatUint(s.MatchID, 10)

	pipe := w.client.TxPipeline()
	pipe.Set(ctx, SummaryKey(s.MatchID), data, w.ttlFor(s.Status))
	if s.Status == scoring.StatusCompleted {
		pipe.SRem(ctx, LiveMatchesKey, id)
	} else {
		pipe.SAdd(ctx, LiveMatchesKey, id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (w *RedisWriter) ttlFor(status scoring.Status) time.Duration {
	if status == scoring.StatusCompleted {
		return w.ttlFinal
	}
	return w.ttlLive
}

// ReadMatchSummary retrieves a summary, or ErrNoSummary.
func (w *RedisWriter) ReadMatchSummary(ctx context.Context, matchID uint64) (*scoring.Summary, error) {
	data, err := w.client.Get(ctx, SummaryKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSummary
	}
	if err != nil {
		return nil, err
	}
	var s scoring.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling summary: %w", err)
	}
	return &s, nil
}

// LiveMatchIDs lists the matches in the live set.
func (w *RedisWriter) LiveMatchIDs(ctx context.Context) ([]uint64, error) {
	members, err := w.client.SMembers(ctx, LiveMatchesKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseUint(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

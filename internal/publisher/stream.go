// Package publisher appends score updates to a Redis stream for
// downstream consumers (scoreboards, archivers).
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cricket-live-scoring/internal/queue"
)

// StreamPublisher publishes scoring events to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher creates a publisher for stream.  maxLen caps the
// stream approximately; zero leaves it unbounded.
func NewStreamPublisher(client *redis.Client, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// PublishEvent appends one entry and returns its stream id.
func (p *StreamPublisher) PublishEvent(ctx context.Context, ev queue.ScoringEvent) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("marshaling scoring event: %w", err)
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]interface{}{
			"data":     string(data),
			"match_id": strconv.FormatUint(ev.MatchID, 10),
			"op":       ev.Op,
			"status":   ev.Status,
		},
	}).Result()
}

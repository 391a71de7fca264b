package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LogFileName is the file the consumer appends to inside its log directory.
const LogFileName = "scoring.log"

// ConsumerConfig tells the consumer where to read from and write to.
type ConsumerConfig struct {
	URL    string
	Queue  string
	LogDir string
}

// StartScoringConsumer connects to RabbitMQ, declares the scoring queue
// (durable) and appends each event to <LogDir>/scoring.log as a single,
// human-friendly line.  It reconnects with exponential backoff and only
// returns when ctx is cancelled.  Malformed messages are rejected without
// requeue so the consumer never spins on them.
func StartScoringConsumer(ctx context.Context, cfg ConsumerConfig) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.Printf("scoring-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, cfg)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("scoring-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg ConsumerConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("scoring-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(cfg.LogDir, d.Body); err != nil {
				log.Printf("scoring-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(dir string, body []byte) error {
	var ev ScoringEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.MatchID == 0 || ev.Op == "" {
		return errors.New("event without match id or op")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLine renders one scoring.log line, e.g.
//
//	[2026-06-13T10:30:00Z] record-ball | match_id=7 | Riverside CC 45/2 (6.3) | ball=4 | scorer="Pat"
func formatLine(ev ScoringEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | match_id=%d | %s %d/%d (%s)", ev.OccurredAt, ev.Op, ev.MatchID, ev.BattingTeam, ev.Runs, ev.Wickets, ev.Overs)
	if ev.Target > 0 {
		fmt.Fprintf(&b, " | target=%d", ev.Target)
	}
	if ev.BallID != "" {
		fmt.Fprintf(&b, " | ball=%d", ev.BallRuns)
		if ev.Extras != "" {
			fmt.Fprintf(&b, " %s", ev.Extras)
		}
		if ev.Dismissal != "" {
			fmt.Fprintf(&b, " | wicket=%s", ev.Dismissal)
		}
	}
	fmt.Fprintf(&b, " | status=%s | scorer=%q\n", ev.Status, ev.Scorer)
	return b.String()
}

package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/cricket-live-scoring/internal/queue"
	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

// Sinks the live notifier writes to.  Any of them may be nil.
type (
	SummaryWriter interface {
		WriteMatchSummary(ctx context.Context, s scoring.Summary) error
	}
	StreamPublisher interface {
		PublishEvent(ctx context.Context, ev queue.ScoringEvent) (string, error)
	}
	EventPublisher interface {
		Publish(ctx context.Context, ev queue.ScoringEvent) error
	}
	Broadcaster interface {
		Broadcast(u scoring.Update)
	}
)

const sinkTimeout = 3 * time.Second

// LiveNotifier implements scoring.Notifier.  Notify only enqueues; a single
// worker started by Run delivers updates to the sinks in the order they
// were queued.
type LiveNotifier struct {
	Summaries SummaryWriter
	Stream    StreamPublisher
	Events    EventPublisher
	Hub       Broadcaster

	queue chan scoring.Update
}

// NewLiveNotifier creates a notifier with room for buffer pending updates.
func NewLiveNotifier(buffer int) *LiveNotifier {
	if buffer <= 0 {
		buffer = 1024
	}
	return &LiveNotifier{queue: make(chan scoring.Update, buffer)}
}

// Notify queues u.  When the queue is full the update is dropped; the next
// update carries the full session anyway.
func (n *LiveNotifier) Notify(ctx context.Context, u scoring.Update) {
	select {
	case n.queue <- u:
	default:
		log.Printf("livefeed: queue full, dropping %s for match %d", u.Op, u.MatchID)
	}
}

// Run delivers queued updates until ctx is cancelled, then drains what is
// left.
func (n *LiveNotifier) Run(ctx context.Context) {
	for {
		select {
		case u := <-n.queue:
			n.deliver(u)
		case <-ctx.Done():
			for {
				select {
				case u := <-n.queue:
					n.deliver(u)
				default:
					return
				}
			}
		}
	}
}

func (n *LiveNotifier) deliver(u scoring.Update) {
	if n.Hub != nil {
		n.Hub.Broadcast(u)
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if n.Summaries != nil {
		if err := n.Summaries.WriteMatchSummary(ctx, u.Session.Summary()); err != nil {
			log.Printf("livefeed: summary for match %d: %v", u.MatchID, err)
		}
	}
	if n.Stream == nil && n.Events == nil {
		return
	}
	ev := queue.NewScoringEvent(u)
	if n.Stream != nil {
		if _, err := n.Stream.PublishEvent(ctx, ev); err != nil {
			log.Printf("livefeed: stream entry for match %d: %v", u.MatchID, err)
		}
	}
	if n.Events != nil {
		if err := n.Events.Publish(ctx, ev); err != nil {
			log.Printf("livefeed: event for match %d: %v", u.MatchID, err)
		}
	}
}

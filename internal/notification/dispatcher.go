package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fkhayef/chama/pkg/middleware"
)

// Notifier receives operation outcomes. Implementations must not block the
// caller.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Publisher forwards events to an external broker
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Dispatcher queues events on a bounded buffer and delivers them from Run.
// When the buffer is full the event is dropped.
type Dispatcher struct {
	events    chan Event
	repo      Repository
	publisher Publisher
	dropped   prometheus.Counter
	delivered *prometheus.CounterVec
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher with room for buffer pending events.
// publisher may be nil.
func NewDispatcher(repo Repository, publisher Publisher, buffer int) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	return &Dispatcher{
		events:    make(chan Event, buffer),
		repo:      repo,
		publisher: publisher,
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chama_notifications_dropped_total",
			Help: "Notifications dropped because the dispatch buffer was full.",
		}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chama_notifications_delivered_total",
			Help: "Notifications handled by the dispatcher, by entity and outcome.",
		}, []string{"entity", "success"}),
	}
}

// Collectors returns the dispatcher metrics for registration
func (d *Dispatcher) Collectors() []prometheus.Collector {
	return []prometheus.Collector{d.dropped, d.delivered}
}

// Notify enqueues e without blocking. The recipient is the authenticated
// user on ctx, if any.
func (d *Dispatcher) Notify(ctx context.Context, e Event) {
	if userID, ok := middleware.GetUserID(ctx); ok {
		e.RecipientID = userID
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	select {
	case d.events <- e:
	default:
		d.dropped.Inc()
		slog.WarnContext(ctx, "Notification buffer full, dropping event",
			"routing_key", e.RoutingKey(),
			"entity_id", e.EntityID)
	}
}

// Pending returns the number of queued events
func (d *Dispatcher) Pending() int {
	return len(d.events)
}

// Run delivers queued events until ctx is cancelled, then drains what is
// left in the buffer.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Notification dispatcher started", "buffer", cap(d.events))

	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx))
			slog.InfoContext(ctx, "Notification dispatcher stopped")
			return nil
		case e := <-d.events:
			d.deliver(ctx, e)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for {
		select {
		case e := <-d.events:
			d.deliver(ctx, e)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	success := "false"
	if e.Success {
		success = "true"
	}
	d.delivered.WithLabelValues(string(e.Entity), success).Inc()

	if e.RecipientID != 0 && d.repo != nil {
		if _, err := d.repo.Create(ctx, e.toNotification()); err != nil {
			slog.ErrorContext(ctx, "Failed to store notification",
				"error", err,
				"recipient_id", e.RecipientID,
				"routing_key", e.RoutingKey())
		}
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to publish notification",
				"error", err,
				"routing_key", e.RoutingKey())
		}
	}
}

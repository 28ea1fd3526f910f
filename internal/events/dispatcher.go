package events

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/waggytrails/walker-scheduler/internal/logging"
)

type Subscriber interface {
	Handle(ev Event)
}

// Dispatcher fans events out to subscribers from a single worker
// goroutine. Delivery is fire-and-forget: a full queue drops the event
// rather than ever blocking the booking path.
type Dispatcher struct {
	subscribers []Subscriber
	queue       chan Event
	log         *zap.Logger
}

func NewDispatcher(subscribers ...Subscriber) *Dispatcher {
	d := &Dispatcher{
		subscribers: subscribers,
		queue:       make(chan Event, 100),
		log:         logging.L(),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		for _, sub := range d.subscribers {
			d.deliver(sub, ev)
		}
	}
}

func (d *Dispatcher) deliver(sub Subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("event subscriber panicked",
				zap.String("event", string(ev.Type)),
				zap.Any("panic", r),
			)
		}
	}()
	sub.Handle(ev)
}

func (d *Dispatcher) Dispatch(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = timeNow()
	}

	select {
	case d.queue <- ev:
	default:
		// queue full: drop rather than stall a request
		d.log.Warn("event queue full, dropping event",
			zap.String("event", string(ev.Type)),
			zap.Uint("booking_id", ev.BookingID),
		)
	}
}

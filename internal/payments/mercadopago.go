package payments

import (
	"context"
	"time"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"

	"github.com/waggytrails/walker-scheduler/internal/events"
	"github.com/waggytrails/walker-scheduler/internal/logging"
)

// Collector is the payment-capture collaborator. It consumes
// BookingCommitted events and opens a Mercado Pago preference for the
// booked price; the engine itself never learns about payment state.
type Collector struct {
	client preference.Client
	log    *zap.Logger
}

func NewCollector(accessToken string) (*Collector, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}

	return &Collector{
		client: preference.NewClient(cfg),
		log:    logging.L(),
	}, nil
}

func (c *Collector) Handle(ev events.Event) {
	if ev.Type != events.BookingCommitted {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	quantity := 1
	title := "Dog walk"

	resp, err := c.client.Create(ctx, preference.Request{
		ExternalReference: ev.Reference,
		Items: []preference.ItemRequest{
			{
				Title:     title,
				Quantity:  quantity,
				UnitPrice: ev.Price,
			},
		},
	})
	if err != nil {
		c.log.Error("failed to create payment preference",
			zap.String("booking_reference", ev.Reference),
			zap.Error(err),
		)
		return
	}

	c.log.Info("payment preference created",
		zap.String("booking_reference", ev.Reference),
		zap.String("preference_id", resp.ID),
	)
}

// Compile-time check
var _ events.Subscriber = (*Collector)(nil)

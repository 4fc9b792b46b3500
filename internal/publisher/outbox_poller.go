package publisher

import (
	"context"
	"time"

	"github.com/fifilen/foodapp/internal/domain"
	"github.com/fifilen/foodapp/internal/journal"
	"go.uber.org/zap"
)

// Outbox is the part of the checkout journal the poller drains.
type Outbox interface {
	Unpublished(ctx context.Context, limit int) ([]*journal.Entry, error)
	MarkPublished(ctx context.Context, id string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// OutboxPoller announces finished checkouts recorded in the journal. An
// entry is stamped only after its event was written, so delivery is
// at-least-once and consumers must tolerate duplicates.
type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	batchSize int
	outbox    Outbox
	publisher eventPublisher
	logger    *zap.Logger
}

func NewOutboxPoller(outbox Outbox, pub eventPublisher, logger *zap.Logger) *OutboxPoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxPoller{
		timeout:   time.Second * 5,
		eventTick: time.Second,
		batchSize: 100,
		outbox:    outbox,
		publisher: pub,
		logger:    logger,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	entries, err := p.outbox.Unpublished(ctx, p.batchSize)
	if err != nil {
		p.logger.Warn("failed to fetch unpublished checkouts", zap.Error(err))
		return
	}

	for _, entry := range entries {
		event, ok := eventFor(entry)
		if !ok {
			continue
		}
		if err := p.publisher.Publish(ctx, event); err != nil {
			p.logger.Warn("failed to publish checkout event",
				zap.String("checkout_id", entry.ID),
				zap.String("event_type", event.Type),
				zap.Error(err))
			// stop here so entries go out in journal order; the rest retry next tick
			return
		}

		if err := p.outbox.MarkPublished(ctx, entry.ID); err != nil {
			p.logger.Warn("failed to mark checkout as published",
				zap.String("checkout_id", entry.ID),
				zap.Error(err))
		}
	}
}

func eventFor(entry *journal.Entry) (Event, bool) {
	event := Event{
		CheckoutID:   entry.ID,
		UserID:       entry.UserID,
		RestaurantID: entry.RestaurantID,
		TotalAmount:  entry.OrderTotal,
		OccurredAt:   entry.UpdatedAt,
	}
	if entry.OrderID != nil {
		event.OrderID = *entry.OrderID
	}

	switch entry.Status {
	case domain.CheckoutStatusCompleted:
		event.Type = EventOrderPlaced
		event.Items = eventItems(entry.Snapshot)
	case domain.CheckoutStatusPaymentFailed:
		event.Type = EventPaymentAttentionRequired
		event.Reason = entry.FailureReason
	case domain.CheckoutStatusOrderUnconfirmed:
		event.Type = EventOrderUnconfirmed
		event.TotalAmount = entry.TotalPrice.InexactFloat64()
		event.Items = eventItems(entry.Snapshot)
		event.Reason = entry.FailureReason
	default:
		return Event{}, false
	}
	return event, true
}

func eventItems(snapshot domain.CartSnapshot) []EventItem {
	items := make([]EventItem, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		items[i] = EventItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.InexactFloat64(),
		}
	}
	return items
}

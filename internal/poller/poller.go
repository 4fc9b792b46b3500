package poller

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fifilen/foodapp/internal/publisher"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const retryDelay = time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// CartEvictor drops a user's in-memory cart.
type CartEvictor interface {
	Evict(userID string)
}

// Poller consumes checkout events so that every replica drops carts that
// were checked out elsewhere.
type Poller struct {
	reader  messageReader
	evictor CartEvictor
	logger  *zap.Logger
}

// NewPoller reads the checkout topic under groupID. Each replica needs its
// own group to see every event.
func NewPoller(evictor CartEvictor, groupID string, logger *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       publisher.Topic,
		GroupID:     groupID,
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.LastOffset,
	})
	return newPoller(reader, evictor, logger)
}

func newPoller(reader messageReader, evictor CartEvictor, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{reader: reader, evictor: evictor, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := p.handleNext(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("error reading checkout event", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("error closing reader", zap.Error(err))
	}
}

// handleNext returns an error only when reading fails. Malformed or
// irrelevant events are skipped.
func (p *Poller) handleNext(ctx context.Context) error {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		return err
	}

	var event publisher.Event
	if errUnmarshal := json.Unmarshal(m.Value, &event); errUnmarshal != nil {
		p.logger.Warn("error parsing checkout event", zap.Int64("offset", m.Offset), zap.Error(errUnmarshal))
		return nil
	}
	if event.Type != publisher.EventOrderPlaced {
		return nil
	}
	if event.UserID == "" {
		p.logger.Warn("checkout event without user_id", zap.Int64("offset", m.Offset))
		return nil
	}

	p.evictor.Evict(event.UserID)
	p.logger.Debug("evicted checked out cart",
		zap.String("user_id", event.UserID),
		zap.Int64("order_id", event.OrderID))
	return nil
}

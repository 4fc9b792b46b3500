package checkout

import (
	"context"

	"github.com/fifilen/foodapp/internal/domain"
	"go.uber.org/zap"
)

// Journal failures are logged only; they never change what
// PlaceOrder returns. Terminal states are written even when the request
// context is gone, since the relay announces only what reached the journal.

func (s *Service) beginJournal(ctx context.Context, userID string, snapshot domain.CartSnapshot, key string) string {
	if s.journal == nil {
		return ""
	}
	id, err := s.journal.Begin(ctx, userID, snapshot, key)
	if err != nil {
		s.logger.Warn("failed to journal checkout", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return id
}

func (s *Service) markOrderCreated(ctx context.Context, checkoutID string, order *domain.Order) {
	if s.journal == nil || checkoutID == "" {
		return
	}
	if err := s.journal.MarkOrderCreated(ctx, checkoutID, order.ID, order.TotalAmount); err != nil {
		s.logger.Warn("failed to journal order creation", zap.String("checkout_id", checkoutID), zap.Error(err))
	}
}

func (s *Service) markFailed(ctx context.Context, checkoutID string, status domain.CheckoutStatus, reason string) {
	if s.journal == nil || checkoutID == "" {
		return
	}
	if err := s.journal.MarkFailed(context.WithoutCancel(ctx), checkoutID, status, reason); err != nil {
		s.logger.Warn("failed to journal checkout failure", zap.String("checkout_id", checkoutID), zap.Error(err))
	}
}

func (s *Service) markCompleted(ctx context.Context, checkoutID string) {
	if s.journal == nil || checkoutID == "" {
		return
	}
	if err := s.journal.MarkCompleted(context.WithoutCancel(ctx), checkoutID); err != nil {
		s.logger.Warn("failed to journal checkout completion", zap.String("checkout_id", checkoutID), zap.Error(err))
	}
}

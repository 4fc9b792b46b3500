package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fifilen/foodapp/internal/apiclient"
	"github.com/fifilen/foodapp/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service turns a cart into an order followed by a payment. The two calls
// are strictly sequential and never retried; a payment failure leaves the
// created order in place.
type Service struct {
	api            OrderAPI
	journal        Journal
	recorder       Recorder
	logger         *zap.Logger
	newKey         func() string
	persistTimeout time.Duration
}

var errMissingOrderID = errors.New("response carried no order id")

type Option func(*Service)

func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(api OrderAPI, opts ...Option) *Service {
	s := &Service{
		api:            api,
		logger:         zap.NewNop(),
		newKey:         func() string { return uuid.NewString() },
		persistTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder resolves to a Result or to one of ErrEmptyCart,
// ErrMissingRestaurant, ErrMissingPaymentMethod, *OrderCreationFailedError,
// *OrderUnconfirmedError or *PaymentFailedAfterOrderCreatedError. The cart is
// cleared only on success, and a PersistentCart is written through before
// the attempt is journaled as completed.
func (s *Service) PlaceOrder(ctx context.Context, cart Cart, req Request) (*Result, error) {
	snapshot := cart.Snapshot()

	restaurantID, err := validate(snapshot, req)
	if err != nil {
		s.record(outcomeOf(err))
		return nil, err
	}

	key := s.newKey()
	checkoutID := s.beginJournal(ctx, req.UserID, snapshot, key)
	logger := s.logger.With(
		zap.String("user_id", req.UserID),
		zap.String("checkout_id", checkoutID),
		zap.Int64("restaurant_id", restaurantID))

	order, err := s.api.CreateOrder(ctx, req.Token, key, buildOrderRequest(snapshot, restaurantID, req.DeliveryAddressID))
	if err == nil && (order == nil || order.ID <= 0) {
		err = errMissingOrderID
	}
	var decodeErr *apiclient.DecodeError
	if errors.Is(err, errMissingOrderID) || errors.As(err, &decodeErr) {
		failure := &OrderUnconfirmedError{
			Status:  apiclient.StatusOf(err),
			Message: err.Error(),
			Err:     err,
		}
		logger.Error("order creation unconfirmed", zap.Int("status", failure.Status), zap.Error(err))
		s.markFailed(ctx, checkoutID, domain.CheckoutStatusOrderUnconfirmed, failure.Message)
		s.record(OutcomeOrderUnconfirmed)
		return nil, failure
	}
	if err != nil {
		failure := &OrderCreationFailedError{
			Status:  apiclient.StatusOf(err),
			Message: messageOf(err),
			Err:     err,
		}
		logger.Warn("order creation failed", zap.Int("status", failure.Status), zap.Error(err))
		s.markFailed(ctx, checkoutID, domain.CheckoutStatusOrderFailed, failure.Message)
		s.record(OutcomeOrderFailed)
		return nil, failure
	}
	logger = logger.With(zap.Int64("order_id", order.ID))
	s.markOrderCreated(ctx, checkoutID, order)

	payment, err := s.api.CreatePayment(ctx, req.Token, &domain.CreatePaymentRequest{
		OrderID:       order.ID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		failure := &PaymentFailedAfterOrderCreatedError{
			OrderID:     order.ID,
			TotalAmount: order.TotalAmount,
			Status:      apiclient.StatusOf(err),
			Message:     messageOf(err),
			Err:         err,
		}
		logger.Error("payment failed after order was created", zap.Int("status", failure.Status), zap.Error(err))
		s.markFailed(ctx, checkoutID, domain.CheckoutStatusPaymentFailed, failure.Message)
		s.record(OutcomePaymentFailed)
		return nil, failure
	}

	cart.Clear()
	s.persist(ctx, logger, cart)
	s.markCompleted(ctx, checkoutID)
	s.record(OutcomeCompleted)
	logger.Info("order placed", zap.Float64("total_amount", order.TotalAmount))

	return &Result{
		CheckoutID:  checkoutID,
		OrderID:     order.ID,
		PaymentID:   payment.ID,
		TotalAmount: order.TotalAmount,
	}, nil
}

func validate(snapshot domain.CartSnapshot, req Request) (int64, error) {
	if snapshot.IsEmpty() {
		return 0, ErrEmptyCart
	}

	restaurantID := snapshot.RestaurantID
	if req.RestaurantID != 0 {
		if restaurantID != 0 && restaurantID != req.RestaurantID {
			return 0, fmt.Errorf("%w: cart holds restaurant %d, request names %d",
				ErrMissingRestaurant, restaurantID, req.RestaurantID)
		}
		restaurantID = req.RestaurantID
	}
	if restaurantID <= 0 {
		return 0, ErrMissingRestaurant
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		return 0, ErrMissingPaymentMethod
	}
	return restaurantID, nil
}

func buildOrderRequest(snapshot domain.CartSnapshot, restaurantID int64, addressID *int64) *domain.CreateOrderRequest {
	items := make([]domain.OrderItemRequest, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		items[i] = domain.OrderItemRequest{
			ProductID:         line.ProductID,
			Quantity:          line.Quantity,
			ExpectedUnitPrice: line.UnitPrice.InexactFloat64(),
		}
	}
	return &domain.CreateOrderRequest{
		RestaurantID:      restaurantID,
		DeliveryAddressID: addressID,
		OrderItems:        items,
	}
}

func messageOf(err error) string {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return OutcomeEmptyCart
	case errors.Is(err, ErrMissingRestaurant):
		return OutcomeMissingRestaurant
	default:
		return OutcomeMissingPaymentMethod
	}
}

func (s *Service) record(outcome string) {
	if s.recorder != nil {
		s.recorder.CheckoutOutcome(outcome)
	}
}

// persist writes a cleared cart through to shared storage. It runs even when
// the request was cancelled, since the order and payment already exist.
func (s *Service) persist(ctx context.Context, logger *zap.Logger, cart Cart) {
	pc, ok := cart.(PersistentCart)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()
	if err := pc.Persist(ctx); err != nil {
		logger.Error("failed to persist cleared cart", zap.Error(err))
	}
}

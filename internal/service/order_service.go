package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidTransition is returned when an order transition is attempted
// from a terminal or wrong state.
var ErrInvalidTransition = errors.New("invalid order status transition")

const (
	orderNoLength = 10
	// A fresh 10-digit number collides with an existing order only by
	// chance, but the chance is checked, not hoped away.
	maxOrderNoAttempts = 5
)

// OrderService creates orders and drives them through the payment
// status state machine.
type OrderService struct {
	store   store.Store
	catalog *catalog.Catalog
	events  *broker.EventPublisher
	logger  *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(st store.Store, cat *catalog.Catalog, events *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:   st,
		catalog: cat,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// CreateOrder creates a pending order for one catalog product. The
// price is snapshotted from the catalog so later price changes do not
// affect existing orders.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, productID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	price, err := s.catalog.PriceOf(productID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("unknown_product").Inc()
		return nil, err
	}

	var order *models.Order
	for attempt := 0; attempt < maxOrderNoAttempts; attempt++ {
		candidate := &models.Order{
			OrderNo:   randomOrderNo(),
			UserID:    userID,
			ProductID: productID,
			Price:     price,
			Status:    models.OrderStatusPending,
		}

		err = s.store.CreateOrder(ctx, candidate)
		if errors.Is(err, store.ErrOrderNoConflict) {
			util.OrderNoRetriesTotal.Inc()
			continue
		}
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		order = candidate
		break
	}
	if order == nil {
		util.OrdersFailedTotal.WithLabelValues("order_no_exhausted").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_no", order.OrderNo),
		zap.Int64("user_id", userID),
		zap.String("product_id", productID),
		zap.Int64("price", price))

	if s.events != nil {
		event := &models.OrderCreatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCreated,
				Timestamp: time.Now(),
			},
			OrderNo:   order.OrderNo,
			UserID:    userID,
			ProductID: productID,
			Price:     price,
		}
		if err := s.events.PublishOrderCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}
	}

	return order, nil
}

// ConfirmOrder marks a pending order as completed. This is the
// settlement entry point: the order price is added to the account's
// cumulative spend.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderNo, paymentInfo string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ConfirmOrder")
	defer span.End()

	order, err := s.store.TransitionOrder(ctx, orderNo, models.OrderStatusPending, models.OrderStatusCompleted, paymentInfo)
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	if err := s.store.AddSpend(ctx, order.UserID, order.Price); err != nil {
		s.logger.Error("Failed to record spend for confirmed order",
			zap.String("order_no", orderNo), zap.Error(err))
	}

	util.OrdersCompletedTotal.Inc()
	s.logger.Info("Order confirmed",
		zap.String("order_no", orderNo),
		zap.Int64("user_id", order.UserID))

	if s.events != nil {
		event := &models.OrderCompletedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCompleted,
				Timestamp: time.Now(),
			},
			OrderNo: order.OrderNo,
			UserID:  order.UserID,
			Price:   order.Price,
		}
		if err := s.events.PublishOrderCompleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCompleted event", zap.Error(err))
		}
	}

	return order, nil
}

// CancelOrder cancels a pending order
func (s *OrderService) CancelOrder(ctx context.Context, orderNo, reason string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer span.End()

	order, err := s.store.TransitionOrder(ctx, orderNo, models.OrderStatusPending, models.OrderStatusCancelled, "")
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled",
		zap.String("order_no", orderNo),
		zap.String("reason", reason))

	if s.events != nil {
		event := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: time.Now(),
			},
			OrderNo: order.OrderNo,
			UserID:  order.UserID,
			Reason:  reason,
		}
		if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}
	}

	return order, nil
}

// GetOrder retrieves an order by its order number
func (s *OrderService) GetOrder(ctx context.Context, orderNo string) (*models.Order, error) {
	return s.store.GetOrderByNo(ctx, orderNo)
}

// ListOrders retrieves the order history for a user
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

// randomOrderNo returns a random fixed-length numeric order number
func randomOrderNo() string {
	var raw [orderNoLength]byte
	if _, err := rand.Read(raw[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	digits := make([]byte, orderNoLength)
	for i, b := range raw {
		digits[i] = '0' + b%10
	}
	return string(digits)
}

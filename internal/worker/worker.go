// Package worker runs the settlement consumer: payment notifications
// published by the external settlement process are turned into order
// confirmations.
package worker

import (
	"context"
	"errors"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
)

// SettlementWorker consumes PaymentReceived events and confirms the
// matching orders.
type SettlementWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	orders       *service.OrderService
}

// NewSettlementWorker creates a new settlement worker
func NewSettlementWorker(consumer *broker.Consumer, orders *service.OrderService) *SettlementWorker {
	w := &SettlementWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		orders:       orders,
	}
	w.eventHandler.OnPaymentReceived(w.handlePaymentReceived)
	return w
}

func (w *SettlementWorker) handlePaymentReceived(ctx context.Context, event *models.PaymentReceivedEvent) error {
	_, err := w.orders.ConfirmOrder(ctx, event.OrderNo, event.PaymentInfo)
	if errors.Is(err, service.ErrInvalidTransition) || errors.Is(err, store.ErrOrderNotFound) {
		// Already settled or unknown order number; the notification is
		// consumed either way so it is not redelivered forever.
		log.Printf("Payment notification skipped for order %s: %v", event.OrderNo, err)
		return nil
	}
	return err
}

// Start starts the worker
func (w *SettlementWorker) Start(ctx context.Context) error {
	log.Println("Starting settlement worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SettlementWorker) Stop() error {
	log.Println("Stopping settlement worker...")
	return w.consumer.Close()
}

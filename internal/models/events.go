package models

import "time"

// Event types
const (
	EventTypeCheckinCompleted = "CHECKIN_COMPLETED"
	EventTypeOrderCreated     = "ORDER_CREATED"
	EventTypeOrderCompleted   = "ORDER_COMPLETED"
	EventTypeOrderCancelled   = "ORDER_CANCELLED"
	EventTypePaymentReceived  = "PAYMENT_RECEIVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckinCompletedEvent published after a successful daily check-in
type CheckinCompletedEvent struct {
	BaseEvent
	UserID       int64  `json:"user_id"`
	CheckinDate  string `json:"checkin_date"`
	CoinsEarned  int64  `json:"coins_earned"`
	PointsEarned int64  `json:"points_earned"`
	Streak       int    `json:"streak"`
}

// OrderCreatedEvent published when an order enters the pending state
type OrderCreatedEvent struct {
	BaseEvent
	OrderNo   string `json:"order_no"`
	UserID    int64  `json:"user_id"`
	ProductID string `json:"product_id"`
	Price     int64  `json:"price"`
}

// OrderCompletedEvent published when an order is confirmed
type OrderCompletedEvent struct {
	BaseEvent
	OrderNo string `json:"order_no"`
	UserID  int64  `json:"user_id"`
	Price   int64  `json:"price"`
}

// OrderCancelledEvent published when a pending order is cancelled
type OrderCancelledEvent struct {
	BaseEvent
	OrderNo string `json:"order_no"`
	UserID  int64  `json:"user_id"`
	Reason  string `json:"reason"`
}

// PaymentReceivedEvent is consumed from the payment notification topic.
// It is produced by the external settlement process when an operator
// verifies a payment for an order.
type PaymentReceivedEvent struct {
	BaseEvent
	OrderNo     string `json:"order_no"`
	PaymentInfo string `json:"payment_info"`
}

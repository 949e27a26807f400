// Package store defines the durable storage contract for accounts,
// check-in history and orders, with a Postgres implementation for
// production and an in-memory implementation for tests and local runs.
package store

import (
	"context"
	"errors"

	"storefront-service/internal/models"
)

var (
	// ErrAccountNotFound is returned when no account exists for a user ID
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateCheckin is returned when a check-in record already
	// exists for the (user, date) pair. The balance update in the same
	// operation is rolled back.
	ErrDuplicateCheckin = errors.New("checkin already recorded for date")

	// ErrOrderNotFound is returned when no order exists for an order number
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNoConflict is returned when an order number is already taken.
	// Callers regenerate the number and retry.
	ErrOrderNoConflict = errors.New("order number already exists")

	// ErrStatusConflict is returned when an order is not in the status a
	// conditional transition expects.
	ErrStatusConflict = errors.New("order not in expected status")
)

// Store is the operation-level storage contract. Implementations must
// make ApplyCheckin atomic (balance update and history insert succeed or
// fail together) and must reject a duplicate (user, date) check-in.
type Store interface {
	GetAccount(ctx context.Context, userID int64) (*models.Account, error)
	CreateAccountIfAbsent(ctx context.Context, userID int64, profile models.Profile) (*models.Account, error)
	ApplyCheckin(ctx context.Context, userID int64, coins, points int64, date string) (*models.Account, error)
	GetCheckins(ctx context.Context, userID int64) ([]models.Checkin, error)
	CountCheckinsSince(ctx context.Context, userID int64, date string) (int64, error)
	AddSpend(ctx context.Context, userID int64, amount int64) error

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	TransitionOrder(ctx context.Context, orderNo, from, to, paymentInfo string) (*models.Order, error)

	Stats(ctx context.Context, today string) (*models.StoreStats, error)

	Close() error
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT UNIQUE NOT NULL,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	coins BIGINT NOT NULL DEFAULT 0,
	points BIGINT NOT NULL DEFAULT 0,
	total_spent BIGINT NOT NULL DEFAULT 0,
	checkin_streak INT NOT NULL DEFAULT 0,
	last_checkin TEXT NOT NULL DEFAULT '',
	vip_level INT NOT NULL DEFAULT 0,
	vip_expiry TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS checkins (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	checkin_date TEXT NOT NULL,
	coins_earned BIGINT NOT NULL,
	points_earned BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, checkin_date)
);

CREATE TABLE IF NOT EXISTS orders (
	id BIGSERIAL PRIMARY KEY,
	order_no TEXT UNIQUE NOT NULL,
	user_id BIGINT NOT NULL,
	product_id TEXT NOT NULL,
	price BIGINT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	payment_info TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// Postgres is the sqlx-backed Store implementation. Each operation runs
// as its own statement or transaction; the connection pool is shared.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres connects to the database and bootstraps the schema
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close closes the database connection
func (s *Postgres) Close() error {
	return s.db.Close()
}

// GetAccount retrieves an account by user ID
func (s *Postgres) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	var account models.Account
	err := s.db.GetContext(ctx, &account, "SELECT * FROM users WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccountIfAbsent inserts an account if none exists for the user
// ID and returns the stored account either way. The supplied profile is
// discarded when the account already exists.
func (s *Postgres) CreateAccountIfAbsent(ctx context.Context, userID int64, profile models.Profile) (*models.Account, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, first_name, last_name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, profile.Username, profile.FirstName, profile.LastName)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return s.GetAccount(ctx, userID)
}

// ApplyCheckin records a check-in and applies the reward in one
// transaction. The UNIQUE (user_id, checkin_date) index is the final
// arbiter against concurrent check-ins on the same date.
func (s *Postgres) ApplyCheckin(ctx context.Context, userID int64, coins, points int64, date string) (*models.Account, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO checkins (user_id, checkin_date, coins_earned, points_earned)
		 VALUES ($1, $2, $3, $4)`,
		userID, date, coins, points)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCheckin
		}
		return nil, fmt.Errorf("failed to insert checkin: %w", err)
	}

	var account models.Account
	err = tx.GetContext(ctx, &account,
		`UPDATE users
		 SET coins = coins + $1,
		     points = points + $2,
		     checkin_streak = checkin_streak + 1,
		     last_checkin = $3
		 WHERE user_id = $4
		 RETURNING *`,
		coins, points, date, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply checkin reward: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetCheckins retrieves the check-in history for a user, newest first
func (s *Postgres) GetCheckins(ctx context.Context, userID int64) ([]models.Checkin, error) {
	var checkins []models.Checkin
	err := s.db.SelectContext(ctx, &checkins,
		"SELECT * FROM checkins WHERE user_id = $1 ORDER BY checkin_date DESC", userID)
	return checkins, err
}

// CountCheckinsSince counts check-ins on or after the given date
func (s *Postgres) CountCheckinsSince(ctx context.Context, userID int64, date string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM checkins WHERE user_id = $1 AND checkin_date >= $2", userID, date)
	return count, err
}

// AddSpend increases the cumulative spend on an account. Used by the
// settlement path when an order is confirmed.
func (s *Postgres) AddSpend(ctx context.Context, userID int64, amount int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET total_spent = total_spent + $1 WHERE user_id = $2",
		amount, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// CreateOrder inserts a new order. A taken order number fails with
// ErrOrderNoConflict so the caller can regenerate and retry.
func (s *Postgres) CreateOrder(ctx context.Context, order *models.Order) error {
	err := s.db.GetContext(ctx, order,
		`INSERT INTO orders (order_no, user_id, product_id, price, status, payment_info)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING *`,
		order.OrderNo, order.UserID, order.ProductID, order.Price, order.Status, order.PaymentInfo)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrOrderNoConflict
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrderByNo retrieves an order by its order number
func (s *Postgres) GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE order_no = $1", orderNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersByUser retrieves all orders for a user, newest first
func (s *Postgres) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// TransitionOrder moves an order from one status to another as a single
// conditional update, so two concurrent transitions cannot both win.
func (s *Postgres) TransitionOrder(ctx context.Context, orderNo, from, to, paymentInfo string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		`UPDATE orders
		 SET status = $1,
		     payment_info = CASE WHEN $2 <> '' THEN $2 ELSE payment_info END,
		     updated_at = NOW()
		 WHERE order_no = $3 AND status = $4
		 RETURNING *`,
		to, paymentInfo, orderNo, from)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing order from a lost transition race.
		if _, getErr := s.GetOrderByNo(ctx, orderNo); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}
	return &order, nil
}

// Stats aggregates the admin panel counters
func (s *Postgres) Stats(ctx context.Context, today string) (*models.StoreStats, error) {
	var stats models.StoreStats
	if err := s.db.GetContext(ctx, &stats.TotalUsers,
		"SELECT COUNT(*) FROM users"); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &stats.NewUsersToday,
		"SELECT COUNT(*) FROM users WHERE created_at::date = $1::date", today); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &stats.TotalOrders,
		"SELECT COUNT(*) FROM orders"); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &stats.CompletedSales,
		"SELECT COALESCE(SUM(price), 0) FROM orders WHERE status = $1", models.OrderStatusCompleted); err != nil {
		return nil, err
	}
	return &stats, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

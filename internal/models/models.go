package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for check-in bookkeeping.
// Dates are compared as plain strings so there is no timezone arithmetic
// anywhere in the ledger.
const DateLayout = "2006-01-02"

// Account represents a user account in the ledger
type Account struct {
	ID            int64     `db:"id" json:"-"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Username      string    `db:"username" json:"username"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Coins         int64     `db:"coins" json:"coins"`
	Points        int64     `db:"points" json:"points"`
	TotalSpent    int64     `db:"total_spent" json:"total_spent"`
	CheckinStreak int       `db:"checkin_streak" json:"checkin_streak"`
	LastCheckin   string    `db:"last_checkin" json:"last_checkin,omitempty"`
	VIPLevel      int       `db:"vip_level" json:"vip_level"`
	VIPExpiry     string    `db:"vip_expiry" json:"vip_expiry,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Profile carries the display-name fields captured on first contact.
// They are informational only and never overwrite an existing account.
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Checkin is an immutable record of one successful daily check-in
type Checkin struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	CheckinDate  string    `db:"checkin_date" json:"checkin_date"`
	CoinsEarned  int64     `db:"coins_earned" json:"coins_earned"`
	PointsEarned int64     `db:"points_earned" json:"points_earned"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Order represents a purchase order for one catalog product.
// OrderNo is the externally visible identifier, distinct from the
// surrogate ID; Price is snapshotted from the catalog at creation time.
type Order struct {
	ID          int64     `db:"id" json:"-"`
	OrderNo     string    `db:"order_no" json:"order_no"`
	UserID      int64     `db:"user_id" json:"user_id"`
	ProductID   string    `db:"product_id" json:"product_id"`
	Price       int64     `db:"price" json:"price"`
	Status      string    `db:"status" json:"status"`
	PaymentInfo string    `db:"payment_info" json:"payment_info,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Order statuses. Completed and cancelled are terminal.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// StoreStats is the read-only aggregation behind the admin panel
type StoreStats struct {
	TotalUsers     int64 `json:"total_users"`
	NewUsersToday  int64 `json:"new_users_today"`
	TotalOrders    int64 `json:"total_orders"`
	CompletedSales int64 `json:"completed_sales"`
}

// FormatAmount renders an amount of integer cents as a decimal string,
// e.g. 700 -> "7.00".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

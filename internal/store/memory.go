package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-service/internal/models"
)

// Memory is a map-backed Store for tests and local runs without a
// database. One RWMutex guards all maps; operations are in-process and
// hold it only for the mutation itself.
type Memory struct {
	mu       sync.RWMutex
	accounts map[int64]*models.Account
	checkins map[int64]map[string]models.Checkin
	orders   map[string]*models.Order
	nextID   int64
	now      func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[int64]*models.Account),
		checkins: make(map[int64]map[string]models.Checkin),
		orders:   make(map[string]*models.Order),
		now:      time.Now,
	}
}

// SetClock overrides the timestamp source. Test hook only.
func (s *Memory) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Close is a no-op for the in-memory store
func (s *Memory) Close() error {
	return nil
}

func (s *Memory) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

// GetAccount retrieves an account by user ID
func (s *Memory) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

// CreateAccountIfAbsent inserts an account if none exists, keeping the
// first-captured profile when one does.
func (s *Memory) CreateAccountIfAbsent(ctx context.Context, userID int64, profile models.Profile) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account, ok := s.accounts[userID]; ok {
		cp := *account
		return &cp, nil
	}

	account := &models.Account{
		ID:        s.nextSeq(),
		UserID:    userID,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		CreatedAt: s.now(),
	}
	s.accounts[userID] = account
	cp := *account
	return &cp, nil
}

// ApplyCheckin records a check-in and applies the reward under the
// store lock, so a concurrent duplicate loses with ErrDuplicateCheckin
// and no partial write.
func (s *Memory) ApplyCheckin(ctx context.Context, userID int64, coins, points int64, date string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}

	byDate, ok := s.checkins[userID]
	if !ok {
		byDate = make(map[string]models.Checkin)
		s.checkins[userID] = byDate
	}
	if _, exists := byDate[date]; exists {
		return nil, ErrDuplicateCheckin
	}

	byDate[date] = models.Checkin{
		ID:           s.nextSeq(),
		UserID:       userID,
		CheckinDate:  date,
		CoinsEarned:  coins,
		PointsEarned: points,
		CreatedAt:    s.now(),
	}

	account.Coins += coins
	account.Points += points
	account.CheckinStreak++
	account.LastCheckin = date

	cp := *account
	return &cp, nil
}

// GetCheckins retrieves the check-in history for a user, newest first
func (s *Memory) GetCheckins(ctx context.Context, userID int64) ([]models.Checkin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDate := s.checkins[userID]
	checkins := make([]models.Checkin, 0, len(byDate))
	for _, c := range byDate {
		checkins = append(checkins, c)
	}
	sort.Slice(checkins, func(i, j int) bool {
		return checkins[i].CheckinDate > checkins[j].CheckinDate
	})
	return checkins, nil
}

// CountCheckinsSince counts check-ins on or after the given date
func (s *Memory) CountCheckinsSince(ctx context.Context, userID int64, date string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for d := range s.checkins[userID] {
		if d >= date {
			count++
		}
	}
	return count, nil
}

// AddSpend increases the cumulative spend on an account
func (s *Memory) AddSpend(ctx context.Context, userID int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return ErrAccountNotFound
	}
	account.TotalSpent += amount
	return nil
}

// CreateOrder inserts a new order, failing with ErrOrderNoConflict when
// the order number is already taken.
func (s *Memory) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.OrderNo]; exists {
		return ErrOrderNoConflict
	}

	order.ID = s.nextSeq()
	order.CreatedAt = s.now()
	order.UpdatedAt = order.CreatedAt

	cp := *order
	s.orders[order.OrderNo] = &cp
	return nil
}

// GetOrderByNo retrieves an order by its order number
func (s *Memory) GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderNo]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

// ListOrdersByUser retrieves all orders for a user, newest first
func (s *Memory) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// TransitionOrder moves an order from one status to another, failing
// with ErrStatusConflict when the order is not in the expected status.
func (s *Memory) TransitionOrder(ctx context.Context, orderNo, from, to, paymentInfo string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderNo]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if order.Status != from {
		return nil, ErrStatusConflict
	}

	order.Status = to
	if paymentInfo != "" {
		order.PaymentInfo = paymentInfo
	}
	order.UpdatedAt = s.now()

	cp := *order
	return &cp, nil
}

// Stats aggregates the admin panel counters
func (s *Memory) Stats(ctx context.Context, today string) (*models.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.StoreStats{}
	for _, a := range s.accounts {
		stats.TotalUsers++
		if a.CreatedAt.Format(models.DateLayout) == today {
			stats.NewUsersToday++
		}
	}
	for _, o := range s.orders {
		stats.TotalOrders++
		if o.Status == models.OrderStatusCompleted {
			stats.CompletedSales += o.Price
		}
	}
	return stats, nil
}

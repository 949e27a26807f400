package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	baseCheckinCoins  = 5
	baseCheckinPoints = 10
	// Streak bonus grows by one unit per full week of check-ins.
	streakBonusPeriod = 7

	checkinLockTTL = 10 * time.Second
	checkinFlagTTL = 48 * time.Hour
)

// RewardsService decides check-in eligibility and applies rewards.
// The redis client and event publisher are optional; with neither, the
// store's (user, date) uniqueness constraint still guarantees a single
// reward per day.
type RewardsService struct {
	store  store.Store
	redis  *redisclient.Client
	events *broker.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewRewardsService creates a new rewards service
func NewRewardsService(st store.Store, redis *redisclient.Client, events *broker.EventPublisher) *RewardsService {
	return &RewardsService{
		store:  st,
		redis:  redis,
		events: events,
		logger: util.GetLogger(),
		now:    time.Now,
	}
}

// CheckinResult is the outcome of a check-in attempt. AlreadyCheckedIn
// is a normal no-op outcome, not an error.
type CheckinResult struct {
	AlreadyCheckedIn bool            `json:"already_checked_in"`
	CoinsEarned      int64           `json:"coins_earned"`
	PointsEarned     int64           `json:"points_earned"`
	Streak           int             `json:"streak"`
	Account          *models.Account `json:"account"`
}

// EnsureAccount creates the account on first contact. Idempotent: an
// existing account is returned unchanged and the profile is discarded.
func (s *RewardsService) EnsureAccount(ctx context.Context, userID int64, profile models.Profile) (*models.Account, error) {
	ctx, span := util.StartSpan(ctx, "RewardsService.EnsureAccount")
	defer span.End()

	return s.store.CreateAccountIfAbsent(ctx, userID, profile)
}

// CheckIn performs the daily check-in for a user. An empty date means
// today. The reward is computed from the streak BEFORE this check-in:
// coins = 5 + streak/7, points = 10 + streak/7.
//
// The streak never resets on a missed day; it counts check-ins for the
// account's lifetime, so the weekly bonus keeps whatever level it
// reached.
func (s *RewardsService) CheckIn(ctx context.Context, userID int64, date string) (*CheckinResult, error) {
	ctx, span := util.StartSpan(ctx, "RewardsService.CheckIn")
	defer span.End()

	if date == "" {
		date = s.now().Format(models.DateLayout)
	}

	if s.redis != nil {
		if flagged, err := s.redis.WasCheckedIn(ctx, userID, date); err == nil && flagged {
			util.CheckinsDuplicateTotal.Inc()
			account, err := s.store.GetAccount(ctx, userID)
			if err != nil {
				return nil, err
			}
			return &CheckinResult{AlreadyCheckedIn: true, Streak: account.CheckinStreak, Account: account}, nil
		}

		// Best-effort serialization across instances. On failure the
		// store constraint below still rejects the duplicate.
		if acquired, err := s.redis.AcquireCheckinLock(ctx, userID, checkinLockTTL); err == nil && acquired {
			defer func() {
				if err := s.redis.ReleaseCheckinLock(ctx, userID); err != nil {
					s.logger.Warn("Failed to release checkin lock",
						zap.Int64("user_id", userID), zap.Error(err))
				}
			}()
		}
	}

	account, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if account.LastCheckin == date {
		util.CheckinsDuplicateTotal.Inc()
		return &CheckinResult{AlreadyCheckedIn: true, Streak: account.CheckinStreak, Account: account}, nil
	}

	bonus := int64(account.CheckinStreak / streakBonusPeriod)
	coins := baseCheckinCoins + bonus
	points := baseCheckinPoints + bonus

	updated, err := s.store.ApplyCheckin(ctx, userID, coins, points, date)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCheckin) {
			// Lost a race with a concurrent check-in for the same date.
			util.CheckinsDuplicateTotal.Inc()
			account, getErr := s.store.GetAccount(ctx, userID)
			if getErr != nil {
				return nil, getErr
			}
			return &CheckinResult{AlreadyCheckedIn: true, Streak: account.CheckinStreak, Account: account}, nil
		}
		return nil, fmt.Errorf("failed to apply checkin: %w", err)
	}

	util.CheckinsTotal.Inc()
	util.CheckinCoinsGranted.Add(float64(coins))
	util.CheckinPointsGranted.Add(float64(points))

	s.logger.Info("Checkin completed",
		zap.Int64("user_id", userID),
		zap.String("date", date),
		zap.Int64("coins", coins),
		zap.Int64("points", points),
		zap.Int("streak", updated.CheckinStreak))

	if s.redis != nil {
		if err := s.redis.MarkCheckedIn(ctx, userID, date, checkinFlagTTL); err != nil {
			s.logger.Warn("Failed to set checkin flag", zap.Error(err))
		}
	}

	if s.events != nil {
		event := &models.CheckinCompletedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCheckinCompleted,
				Timestamp: time.Now(),
			},
			UserID:       userID,
			CheckinDate:  date,
			CoinsEarned:  coins,
			PointsEarned: points,
			Streak:       updated.CheckinStreak,
		}
		if err := s.events.PublishCheckinCompleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish CheckinCompleted event", zap.Error(err))
		}
	}

	return &CheckinResult{
		CoinsEarned:  coins,
		PointsEarned: points,
		Streak:       updated.CheckinStreak,
		Account:      updated,
	}, nil
}

// AccountSummary is the profile view: the account plus the number of
// check-ins since the first of the current month.
type AccountSummary struct {
	Account       *models.Account `json:"account"`
	MonthCheckins int64           `json:"month_checkins"`
}

// GetAccountSummary returns the profile snapshot for a user
func (s *RewardsService) GetAccountSummary(ctx context.Context, userID int64) (*AccountSummary, error) {
	ctx, span := util.StartSpan(ctx, "RewardsService.GetAccountSummary")
	defer span.End()

	account, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)
	monthCheckins, err := s.store.CountCheckinsSince(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}

	return &AccountSummary{Account: account, MonthCheckins: monthCheckins}, nil
}

// GetCheckinHistory returns the check-in records for a user
func (s *RewardsService) GetCheckinHistory(ctx context.Context, userID int64) ([]models.Checkin, error) {
	return s.store.GetCheckins(ctx, userID)
}

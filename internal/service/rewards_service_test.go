package service

import (
	"context"
	"fmt"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRewardsFixture(t *testing.T) (*RewardsService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewRewardsService(mem, nil, nil), mem
}

func TestCheckInFirstDay(t *testing.T) {
	svc, mem := newRewardsFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{Username: "u1"})
	require.NoError(t, err)

	result, err := svc.CheckIn(ctx, 1, "2025-06-01")
	require.NoError(t, err)
	assert.False(t, result.AlreadyCheckedIn)
	assert.Equal(t, int64(5), result.CoinsEarned)
	assert.Equal(t, int64(10), result.PointsEarned)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, int64(5), result.Account.Coins)
	assert.Equal(t, int64(10), result.Account.Points)
}

func TestCheckInSameDayIsNoOp(t *testing.T) {
	svc, mem := newRewardsFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, 1, "2025-06-01")
	require.NoError(t, err)

	result, err := svc.CheckIn(ctx, 1, "2025-06-01")
	require.NoError(t, err)
	assert.True(t, result.AlreadyCheckedIn)
	assert.Zero(t, result.CoinsEarned)
	assert.Equal(t, 1, result.Streak)

	account, err := mem.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), account.Coins)
	assert.Equal(t, int64(10), account.Points)
	assert.Equal(t, 1, account.CheckinStreak)
}

func TestCheckInSecondDay(t *testing.T) {
	svc, mem := newRewardsFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, 1, "2025-06-01")
	require.NoError(t, err)

	// Streak was 1, 1/7 = 0, so the reward is still the base amount.
	result, err := svc.CheckIn(ctx, 1, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.CoinsEarned)
	assert.Equal(t, int64(10), result.PointsEarned)
	assert.Equal(t, 2, result.Streak)
}

func TestCheckInWeeklyBonus(t *testing.T) {
	svc, mem := newRewardsFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{})
	require.NoError(t, err)

	for day := 1; day <= 7; day++ {
		result, err := svc.CheckIn(ctx, 1, fmt.Sprintf("2025-06-%02d", day))
		require.NoError(t, err)
		assert.Equal(t, int64(5), result.CoinsEarned)
		assert.Equal(t, int64(10), result.PointsEarned)
	}

	// Streak is now 7: the eighth check-in carries the weekly bonus.
	result, err := svc.CheckIn(ctx, 1, "2025-06-08")
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.CoinsEarned)
	assert.Equal(t, int64(11), result.PointsEarned)
	assert.Equal(t, 8, result.Streak)
}

func TestCheckInRewardFormula(t *testing.T) {
	svc, mem := newRewardsFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{})
	require.NoError(t, err)

	for day := 0; day < 30; day++ {
		date := fmt.Sprintf("2025-%02d-%02d", 6+day/28, 1+day%28)
		account, err := mem.GetAccount(ctx, 1)
		require.NoError(t, err)
		streakBefore := account.CheckinStreak

		result, err := svc.CheckIn(ctx, 1, date)
		require.NoError(t, err)
		assert.Equal(t, int64(5+streakBefore/7), result.CoinsEarned)
		assert.Equal(t, int64(10+streakBefore/7), result.PointsEarned)
		assert.Equal(t, streakBefore+1, result.Streak)
	}
}

func TestCheckInStreakSurvivesMissedDay(t *testing.T) {
	svc, mem := newRewardsFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, 1, "2025-06-01")
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, 1, "2025-06-02")
	require.NoError(t, err)

	// June 3rd is skipped. The streak keeps counting rather than
	// resetting: it is a lifetime check-in counter.
	result, err := svc.CheckIn(ctx, 1, "2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Streak)
}

func TestCheckInBalancesNeverDecrease(t *testing.T) {
	svc, mem := newRewardsFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{})
	require.NoError(t, err)

	var prevCoins, prevPoints int64
	for day := 1; day <= 28; day++ {
		_, err := svc.CheckIn(ctx, 1, fmt.Sprintf("2025-06-%02d", day))
		require.NoError(t, err)

		account, err := mem.GetAccount(ctx, 1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, account.Coins, prevCoins)
		assert.GreaterOrEqual(t, account.Points, prevPoints)
		prevCoins, prevPoints = account.Coins, account.Points
	}
}

func TestCheckInUnknownAccount(t *testing.T) {
	svc, _ := newRewardsFixture(t)

	_, err := svc.CheckIn(context.Background(), 999, "2025-06-01")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestEnsureAccountKeepsFirstProfile(t *testing.T) {
	svc, _ := newRewardsFixture(t)
	ctx := context.Background()

	first, err := svc.EnsureAccount(ctx, 1, models.Profile{Username: "original"})
	require.NoError(t, err)
	assert.Equal(t, "original", first.Username)

	second, err := svc.EnsureAccount(ctx, 1, models.Profile{Username: "changed"})
	require.NoError(t, err)
	assert.Equal(t, "original", second.Username)
}

func TestGetAccountSummaryMonthCheckins(t *testing.T) {
	svc, mem := newRewardsFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{})
	require.NoError(t, err)

	// One check-in well in the past, two in the current month.
	_, err = svc.CheckIn(ctx, 1, "2020-01-15")
	require.NoError(t, err)
	now := svc.now()
	for _, day := range []int{1, 2} {
		date := fmt.Sprintf("%04d-%02d-%02d", now.Year(), now.Month(), day)
		_, err = svc.CheckIn(ctx, 1, date)
		require.NoError(t, err)
	}

	summary, err := svc.GetAccountSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.MonthCheckins)
	assert.Equal(t, 3, summary.Account.CheckinStreak)
}

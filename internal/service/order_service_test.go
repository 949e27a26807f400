package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderNoPattern = regexp.MustCompile(`^[0-9]{10}$`)

func newOrderFixture(t *testing.T) (*OrderService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewOrderService(mem, catalog.Default(), nil), mem
}

func TestCreateOrderSnapshotsPrice(t *testing.T) {
	svc, _ := newOrderFixture(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, "day")
	require.NoError(t, err)
	assert.Regexp(t, orderNoPattern, order.OrderNo)
	assert.Equal(t, int64(700), order.Price)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "7.00", models.FormatAmount(order.Price))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc, _ := newOrderFixture(t)

	_, err := svc.CreateOrder(context.Background(), 1, "lifetime")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestCreateOrderUniqueNumbersUnderConcurrency(t *testing.T) {
	svc, _ := newOrderFixture(t)
	ctx := context.Background()

	const n = 1000
	var wg sync.WaitGroup
	orderNos := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := svc.CreateOrder(ctx, int64(i), "day")
			if err != nil {
				t.Error(err)
				return
			}
			orderNos[i] = order.OrderNo
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, no := range orderNos {
		require.Regexp(t, orderNoPattern, no)
		assert.False(t, seen[no], "duplicate order number %s", no)
		seen[no] = true
	}
}

func TestConfirmOrder(t *testing.T) {
	svc, mem := newOrderFixture(t)
	ctx := context.Background()

	_, err := mem.CreateAccountIfAbsent(ctx, 1, models.Profile{})
	require.NoError(t, err)

	order, err := svc.CreateOrder(ctx, 1, "day")
	require.NoError(t, err)

	confirmed, err := svc.ConfirmOrder(ctx, order.OrderNo, "alipay:tx-001")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, confirmed.Status)
	assert.Equal(t, "alipay:tx-001", confirmed.PaymentInfo)

	// Confirmation settles the spend onto the account.
	account, err := mem.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(700), account.TotalSpent)

	// Completed is terminal: cancelling it must fail.
	_, err = svc.CancelOrder(ctx, order.OrderNo, "changed my mind")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelOrder(t *testing.T) {
	svc, _ := newOrderFixture(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, "week")
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(ctx, order.OrderNo, "user request")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	_, err = svc.ConfirmOrder(ctx, order.OrderNo, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.CancelOrder(ctx, order.OrderNo, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmOrderNotFound(t *testing.T) {
	svc, _ := newOrderFixture(t)

	_, err := svc.ConfirmOrder(context.Background(), "0000000000", "")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	svc, _ := newOrderFixture(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, 1, "day")
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, 1, "month")
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, 2, "day")
	require.NoError(t, err)

	orders, err := svc.ListOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Contains(t, []string{first.OrderNo, second.OrderNo}, o.OrderNo)
	}
}

func TestRandomOrderNoFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, orderNoPattern, randomOrderNo())
	}
}

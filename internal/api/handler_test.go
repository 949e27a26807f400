package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-service/internal/catalog"
	"storefront-service/internal/service"
	"storefront-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminID = "987654"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	cat := catalog.Default()
	rewards := service.NewRewardsService(mem, nil, nil)
	orders := service.NewOrderService(mem, cat, nil)
	stats := service.NewStatsService(mem)

	r := gin.New()
	h := NewHandler(rewards, orders, stats, cat, []int64{987654})
	h.SetupRoutes(r)
	return r
}

func httpDo(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestEnsureAccountAndCheckin(t *testing.T) {
	r := setupRouter(t)

	w := httpDo(r, http.MethodPost, "/api/v1/accounts",
		map[string]interface{}{"user_id": 100, "username": "alice"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, http.MethodPost, "/api/v1/accounts/100/checkin",
		map[string]string{"date": "2025-06-01"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["already_checked_in"])
	assert.Equal(t, float64(5), body["coins_earned"])
	assert.Equal(t, float64(10), body["points_earned"])
	assert.Equal(t, float64(1), body["streak"])

	// Same day again: a no-op, still 200.
	w = httpDo(r, http.MethodPost, "/api/v1/accounts/100/checkin",
		map[string]string{"date": "2025-06-01"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, true, body["already_checked_in"])
}

func TestCheckinUnknownAccount(t *testing.T) {
	r := setupRouter(t)

	w := httpDo(r, http.MethodPost, "/api/v1/accounts/999/checkin",
		map[string]string{"date": "2025-06-01"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountSummary(t *testing.T) {
	r := setupRouter(t)

	w := httpDo(r, http.MethodPost, "/api/v1/accounts",
		map[string]interface{}{"user_id": 100, "username": "alice"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, http.MethodGet, "/api/v1/accounts/100", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	account := body["account"].(map[string]interface{})
	assert.Equal(t, "alice", account["username"])
	assert.Equal(t, float64(0), body["month_checkins"])
}

func TestListCatalog(t *testing.T) {
	r := setupRouter(t)

	w := httpDo(r, http.MethodGet, "/api/v1/catalog", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["cards"], 4)
	assert.Len(t, body["agents"], 3)
	assert.Len(t, body["agent_prices"], 3)
}

func TestOrderLifecycle(t *testing.T) {
	r := setupRouter(t)
	admin := map[string]string{"X-Admin-ID": testAdminID}

	w := httpDo(r, http.MethodPost, "/api/v1/accounts",
		map[string]interface{}{"user_id": 100, "username": "alice"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, http.MethodPost, "/api/v1/orders",
		map[string]interface{}{"user_id": 100, "product_id": "day"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	order := body["order"].(map[string]interface{})
	orderNo := order["order_no"].(string)
	assert.Len(t, orderNo, 10)
	assert.Equal(t, float64(700), order["price"])
	assert.Equal(t, "7.00", body["price_display"])
	assert.Equal(t, "pending", order["status"])

	// Confirmation requires admin access.
	w = httpDo(r, http.MethodPost, "/api/v1/orders/"+orderNo+"/confirm", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httpDo(r, http.MethodPost, "/api/v1/orders/"+orderNo+"/confirm",
		map[string]string{"payment_info": "alipay"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "completed", body["order"].(map[string]interface{})["status"])

	// Completed is terminal.
	w = httpDo(r, http.MethodPost, "/api/v1/orders/"+orderNo+"/cancel", nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httpDo(r, http.MethodGet, "/api/v1/accounts/100/orders", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["orders"], 1)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	r := setupRouter(t)

	w := httpDo(r, http.MethodPost, "/api/v1/orders",
		map[string]interface{}{"user_id": 100, "product_id": "lifetime"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminStatsEndpoint(t *testing.T) {
	r := setupRouter(t)
	admin := map[string]string{"X-Admin-ID": testAdminID}

	w := httpDo(r, http.MethodPost, "/api/v1/accounts",
		map[string]interface{}{"user_id": 100, "username": "alice"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, http.MethodGet, "/api/v1/admin/stats", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httpDo(r, http.MethodGet, "/api/v1/admin/stats", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total_users"])
}

func TestHealthEndpoints(t *testing.T) {
	r := setupRouter(t)

	assert.Equal(t, http.StatusOK, httpDo(r, http.MethodGet, "/health", nil, nil).Code)
	assert.Equal(t, http.StatusOK, httpDo(r, http.MethodGet, "/ready", nil, nil).Code)
}

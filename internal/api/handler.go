package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers. It is the transport collaborator: it
// only invokes engine operations and renders their results.
type Handler struct {
	rewards  *service.RewardsService
	orders   *service.OrderService
	stats    *service.StatsService
	catalog  *catalog.Catalog
	adminIDs map[int64]bool
}

// NewHandler creates a new HTTP handler
func NewHandler(
	rewards *service.RewardsService,
	orders *service.OrderService,
	stats *service.StatsService,
	cat *catalog.Catalog,
	adminIDs []int64,
) *Handler {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Handler{
		rewards:  rewards,
		orders:   orders,
		stats:    stats,
		catalog:  cat,
		adminIDs: admins,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/accounts", h.ensureAccount)
		v1.GET("/accounts/:id", h.getAccountSummary)
		v1.POST("/accounts/:id/checkin", h.checkIn)
		v1.GET("/accounts/:id/checkins", h.listCheckins)
		v1.GET("/accounts/:id/orders", h.listOrders)

		v1.GET("/catalog", h.listCatalog)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:order_no", h.getOrder)

		admin := v1.Group("", h.requireAdmin)
		{
			admin.POST("/orders/:order_no/confirm", h.confirmOrder)
			admin.POST("/orders/:order_no/cancel", h.cancelOrder)
			admin.GET("/admin/stats", h.adminStats)
		}
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type ensureAccountRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ensureAccount handles first-contact account creation
func (h *Handler) ensureAccount(c *gin.Context) {
	var req ensureAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	account, err := h.rewards.EnsureAccount(c.Request.Context(), req.UserID, models.Profile{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

type checkinRequest struct {
	Date string `json:"date"`
}

// checkIn handles the daily check-in
func (h *Handler) checkIn(c *gin.Context) {
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	var req checkinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}
	if req.Date != "" {
		if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	result, err := h.rewards.CheckIn(c.Request.Context(), userID, req.Date)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// getAccountSummary handles the profile view
func (h *Handler) getAccountSummary(c *gin.Context) {
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	summary, err := h.rewards.GetAccountSummary(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// listCheckins handles the check-in history view
func (h *Handler) listCheckins(c *gin.Context) {
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	checkins, err := h.rewards.GetCheckinHistory(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkins": checkins})
}

// listCatalog returns the full price list snapshot
func (h *Handler) listCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Snapshot())
}

type createOrderRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.UserID, req.ProductID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":         order,
		"price_display": models.FormatAmount(order.Price),
	})
}

// getOrder handles get order by order number
func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("order_no"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// listOrders handles the order history view
func (h *Handler) listOrders(c *gin.Context) {
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type confirmOrderRequest struct {
	PaymentInfo string `json:"payment_info"`
}

// confirmOrder handles manual order confirmation
func (h *Handler) confirmOrder(c *gin.Context) {
	var req confirmOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	order, err := h.orders.ConfirmOrder(c.Request.Context(), c.Param("order_no"), req.PaymentInfo)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// cancelOrder handles order cancellation
func (h *Handler) cancelOrder(c *gin.Context) {
	var req cancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), c.Param("order_no"), req.Reason)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// adminStats handles the admin statistics view
func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.stats.AdminStats(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":                   stats,
		"completed_sales_display": models.FormatAmount(stats.CompletedSales),
	})
}

// requireAdmin gates admin endpoints on the configured admin ID list.
// Caller identity comes from the transport layer; here it is a header.
func (h *Handler) requireAdmin(c *gin.Context) {
	adminID, err := strconv.ParseInt(c.GetHeader("X-Admin-ID"), 10, 64)
	if err != nil || !h.adminIDs[adminID] {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}
	c.Next()
}

func (h *Handler) pathUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return userID, true
}

// renderError maps engine errors onto HTTP statuses
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, store.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Order is not in a state that allows this transition"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

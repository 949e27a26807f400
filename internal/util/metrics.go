package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkins_total",
		Help: "Total number of successful daily check-ins",
	})

	CheckinsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkins_duplicate_total",
		Help: "Total number of check-in attempts rejected as already checked in",
	})

	CheckinCoinsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_coins_granted_total",
		Help: "Total coins granted through check-in rewards",
	})

	CheckinPointsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_points_granted_total",
		Help: "Total points granted through check-in rewards",
	})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Total number of orders confirmed as paid",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order operations",
	}, []string{"reason"})

	OrderNoRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_number_retries_total",
		Help: "Total number of order number collisions that forced a regeneration",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// Package metrics provides Prometheus instrumentation for the settlement core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersPlaced counts accepted order placements, partitioned by fee policy.
	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundcore_orders_placed_total",
		Help: "Total number of orders placed",
	}, []string{"fee_policy"})

	// PlacementsRejected counts business rejections at placement.
	PlacementsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundcore_placements_rejected_total",
		Help: "Order placements rejected by a business rule",
	}, []string{"reason"})

	// OrdersSettled counts orders that transitioned to SETTLED.
	OrdersSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fundcore_orders_settled_total",
		Help: "Orders settled against a share price",
	})

	// OrdersCanceled counts orders canceled for insufficient balance.
	OrdersCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fundcore_orders_canceled_total",
		Help: "Orders canceled at settlement",
	})

	// OrdersSkipped counts per-batch skips while no share price exists yet.
	OrdersSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fundcore_orders_skipped_total",
		Help: "Orders left pending because no usable share price was published",
	})

	// SettlementFaults counts data-integrity aborts inside a batch.
	SettlementFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fundcore_settlement_faults_total",
		Help: "Orders aborted by a data-integrity fault",
	})

	// NotificationsDelivered counts outbox records handed to the sender.
	NotificationsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fundcore_notifications_delivered_total",
		Help: "Outbox notifications marked delivered",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opAddItem     = "add_item"
	opRemoveItem  = "remove_item"
	opSetQuantity = "set_quantity"
	opIncrement   = "increment"
	opDecrement   = "decrement"
	opClear       = "clear"
	opApplyPromo  = "apply_promo"
	opCheckout    = "checkout"

	outcomeOK       = "ok"
	outcomeNoop     = "noop"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var (
	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Total number of cart operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	cartItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_items",
			Help: "Current number of units in the cart",
		},
	)
)

func observeOperation(op, outcome string) {
	cartOperationsTotal.WithLabelValues(op, outcome).Inc()
}

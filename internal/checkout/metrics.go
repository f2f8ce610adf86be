package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "doma",
	Subsystem: "checkout",
	Name:      "attempts_total",
	Help:      "Checkout attempts by terminal outcome.",
}, []string{"outcome"})

var cartRemovalFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "doma",
	Subsystem: "checkout",
	Name:      "cart_removal_failures_total",
	Help:      "Best-effort cart removals that failed after a committed checkout.",
})

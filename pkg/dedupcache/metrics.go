package dedupcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	claimsHeld = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pagebuffer_dedup_claims_held",
		Help: "Current number of in-flight window claims held in Redis",
	})

	claimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagebuffer_dedup_claim_conflicts_total",
		Help: "Total Claim calls that found a window already claimed",
	})

	dedupErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagebuffer_dedup_errors_total",
		Help: "Total dedupcache operation errors",
	}, []string{"operation"})
)

package estimator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// estimateTotal counts estimates by outcome ("success" or a failure kind)
	estimateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carprice_estimate_total",
		Help: "Total price estimates by result",
	}, []string{"result"})

	// estimateDuration tracks end-to-end estimate latency
	estimateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "carprice_estimate_duration_seconds",
		Help:    "Estimate duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14), // 50us to ~400ms
	})

	// estimatePrice tracks the distribution of predicted prices
	estimatePrice = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "carprice_estimate_price",
		Help:    "Predicted price in the model's unit",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	// brandFallbackTotal counts brand lists served from the static fallback
	brandFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carprice_brand_fallback_total",
		Help: "Brand option lists served from the fallback list",
	})
)

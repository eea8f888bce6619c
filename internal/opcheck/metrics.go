package opcheck

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Case results used as the "result" label.
const (
	resultPass  = "pass"
	resultFail  = "fail"
	resultError = "error"
)

var (
	casesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opref_cases_total",
		Help: "Total number of scenarios checked, by op and result",
	}, []string{"op", "result"})

	caseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opref_case_duration_seconds",
		Help:    "Time spent building, running and comparing one scenario",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	mismatchedElements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opref_mismatched_elements_total",
		Help: "Total number of output elements outside tolerance",
	}, []string{"op"})
)

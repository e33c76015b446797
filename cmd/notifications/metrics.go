package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricAlertsTotal        = "lowstock_alerts_total"
	metricsReadHeaderTimeout = 5 * time.Second
)

func newAlertOutcomes(reg prometheus.Registerer) *prometheus.CounterVec {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricAlertsTotal,
		Help: "Low-stock alert attempts by outcome",
	}, []string{"status", "reason"})
	reg.MustRegister(outcomes)
	return outcomes
}

// newMetricsServer exposes the worker's counters on /metrics. The worker has
// no other HTTP surface.
func newMetricsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
}

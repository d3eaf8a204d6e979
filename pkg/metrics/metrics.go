package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_http_requests_total",
		Help: "Total number of HTTP requests served, by route pattern and status code.",
	}, []string{"route", "code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reports_http_request_seconds",
		Help:    "Time spent serving HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	RegistryReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_registry_reloads_total",
		Help: "Total number of metadata reloads, by result.",
	}, []string{"result"})

	RegistryReports = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reports_registry_reports",
		Help: "Number of reports in the currently published snapshot.",
	})

	MissingReportFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reports_missing_files",
		Help: "Number of registered reports whose backing file was missing at the last health probe.",
	})
)

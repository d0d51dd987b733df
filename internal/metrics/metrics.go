package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	MaintenancePasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantops_maintenance_passes_total",
			Help: "Maintenance evaluation passes by outcome",
		},
		[]string{"status"},
	)

	AlertEmails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantops_alert_emails_total",
			Help: "Maintenance alert emails by urgency and send status",
		},
		[]string{"urgency", "status"},
	)

	SiteQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantops_site_queries_total",
			Help: "Queries against external site databases by status",
		},
		[]string{"database", "status"},
	)

	SiteQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plantops_site_query_duration_seconds",
			Help:    "Duration of external site database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"database"},
	)
)

func Init() {
	prometheus.MustRegister(MaintenancePasses, AlertEmails, SiteQueries, SiteQueryDuration)
}

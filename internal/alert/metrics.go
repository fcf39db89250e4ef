package alert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Asset classes used as metric labels.
const (
	classLicense   = "license"
	classEquipment = "equipment"
)

//nolint:gochecknoglobals
var (
	alertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_alerts_created_total",
		Help: "Notifications created by the alert scanner.",
	}, []string{"class"})

	alertsDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_alerts_duplicate_total",
		Help: "Alerts suppressed because an identical notification exists inside the dedup window.",
	}, []string{"class"})

	alertsErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_alerts_errors_total",
		Help: "Assets or recipients skipped by the alert scanner because of an error.",
	}, []string{"class"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "asset_alerts_scan_duration_seconds",
		Help:    "Duration of a full alert scan.",
		Buckets: prometheus.DefBuckets,
	})

	dispatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatch_total",
		Help: "Notifications handled by the dispatch worker by outcome.",
	}, []string{"outcome"})

	dispatchBusy = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_dispatch_busy_total",
		Help: "Dispatch runs skipped because another run was in progress.",
	})
)

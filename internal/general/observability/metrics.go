package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersReceived = promauto.NewCounter(prometheus.CounterOpts{Namespace: "driver_gateway", Name: "offers_received_total", Help: "Offers pushed to drivers"})
	OffersAccepted = promauto.NewCounter(prometheus.CounterOpts{Namespace: "driver_gateway", Name: "offers_accepted_total", Help: "Offers accepted by drivers"})
	OffersDeclined = promauto.NewCounter(prometheus.CounterOpts{Namespace: "driver_gateway", Name: "offers_declined_total", Help: "Offers declined by drivers"})
	OffersExpired  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "driver_gateway", Name: "offers_expired_total", Help: "Offers that expired before a decision"})

	TripsCompleted = promauto.NewCounter(prometheus.CounterOpts{Namespace: "driver_gateway", Name: "trips_completed_total", Help: "Trips driven to completion"})
	Reconciles     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "driver_gateway", Name: "reconciles_total", Help: "Full state reloads triggered by realtime events"})
	DriversOnline  = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "driver_gateway", Name: "drivers_online", Help: "Drivers currently available or on trip"})

	LocationsRelayed = promauto.NewCounter(prometheus.CounterOpts{Namespace: "location_relay", Name: "locations_relayed_total", Help: "Location updates forwarded to Kafka"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "driver_gateway", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "driver_gateway",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

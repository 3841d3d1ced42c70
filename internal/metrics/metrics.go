package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Метрики конвейера
	PipelineRecordsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trackmiles_records_loaded_total",
			Help: "Total number of position records loaded from input",
		},
	)

	PipelineTracksSelected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trackmiles_tracks_selected_total",
			Help: "Total number of tracks retained by the airport filter",
		},
	)

	PipelineTracksDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackmiles_tracks_dropped_total",
			Help: "Total number of tracks dropped, by reason",
		},
		[]string{"reason"},
	)

	PipelineRowsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackmiles_rows_filtered_total",
			Help: "Total number of rows removed by cleaning stages",
		},
		[]string{"stage"},
	)

	PipelineAltitudesInterpolated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trackmiles_altitudes_interpolated_total",
			Help: "Total number of altitude values restored by interpolation",
		},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackmiles_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// HTTP метрики
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackmiles_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackmiles_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
)

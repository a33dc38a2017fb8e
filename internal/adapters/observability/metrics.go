package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"isuumo/internal/domain"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "isuumo", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "isuumo", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	StoreQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "isuumo", Name: "store_queries_total", Help: "Store operations by outcome."},
		[]string{"op", "outcome"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "isuumo", Name: "store_query_duration_seconds",
			Help:    "Store operation duration seconds.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"op"},
	)
	Reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "isuumo", Name: "reservations_total", Help: "Chair reservations."},
		[]string{"outcome"}, // outcome: reserved|out_of_stock|error
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "isuumo", Name: "events_published_total", Help: "Post-commit events."},
		[]string{"backend", "subject", "outcome"},
	)
)

// Serve exposes reg on addr in the background. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, StoreQueries, StoreLatency, Reservations, EventsPublished)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveStore(op string, err error, dur time.Duration) {
	StoreQueries.WithLabelValues(op, LabelErr(err)).Inc()
	StoreLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func ObserveReservation(err error) {
	outcome := "reserved"
	switch {
	case err == nil:
	case domain.KindOf(err) == domain.KindOutOfStock:
		outcome = "out_of_stock"
	default:
		outcome = "error"
	}
	Reservations.WithLabelValues(outcome).Inc()
}

func ObserveEvent(backend, subject string, err error) {
	EventsPublished.WithLabelValues(backend, subject, LabelErr(err)).Inc()
}

// LabelErr keeps label cardinality bounded: "none", a lowercased domain kind, or "error".
func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	if k := domain.KindOf(err); k != "" {
		return strings.ToLower(string(k))
	}
	return "error"
}

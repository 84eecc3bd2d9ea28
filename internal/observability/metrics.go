package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "review_api_requests_total",
		Help: "Backend API requests by endpoint and HTTP status",
	}, []string{"endpoint", "status"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "review_api_request_duration_seconds",
		Help:    "Backend API request latency in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	statusPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "review_status_polls_total",
		Help: "Status requests issued by the processing poll",
	})

	seeks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "review_seeks_total",
		Help: "Playback seeks by source (segment, navigation, step)",
	}, []string{"source"})
)

// RecordAPIRequest records one backend request. status 0 means no response.
func RecordAPIRequest(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequests.WithLabelValues(endpoint, label).Inc()
	apiLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordStatusPoll counts one status request from the poll loop.
func RecordStatusPoll() { statusPolls.Inc() }

// RecordSeek counts a playback seek.
func RecordSeek(source string) { seeks.WithLabelValues(source).Inc() }

// ServeMetrics exposes /metrics on addr until ctx is done.
func ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

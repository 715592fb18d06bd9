package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder reports dispatch metrics using Prometheus primitives.
type PrometheusRecorder struct {
	dispatches *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	retries    *prometheus.CounterVec
	batchItems prometheus.Counter
}

func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docrouter_dispatches_total",
			Help: "Total number of action dispatches by endpoint and terminal status",
		}, []string{"endpoint", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docrouter_dispatch_duration_seconds",
			Help:    "Action dispatch latency in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docrouter_retry_attempts_total",
			Help: "Total retry waits by endpoint",
		}, []string{"endpoint"}),
		batchItems: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docrouter_batch_items_total",
			Help: "Total agent results processed through batch routing",
		}),
	}

	for _, collector := range []prometheus.Collector{r.dispatches, r.durations, r.retries, r.batchItems} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveDispatch(endpoint string, status string, duration time.Duration) {
	r.dispatches.WithLabelValues(endpoint, status).Inc()
	r.durations.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveRetry(endpoint string) {
	r.retries.WithLabelValues(endpoint).Inc()
}

func (r *PrometheusRecorder) ObserveBatch(size int) {
	r.batchItems.Add(float64(size))
}

func StartPrometheusServer(addr string, registry *prometheus.Registry) (*http.Server, error) {
	if addr == "" {
		addr = ":2112"
	}
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics endpoint %q: %w", addr, err)
	}

	srv := &http.Server{
		Addr:    ln.Addr().String(),
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		_ = srv.Serve(ln)
	}()
	return srv, nil
}

func StopServer(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

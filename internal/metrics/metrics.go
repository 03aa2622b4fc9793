// Package metrics exposes recompute activity as Prometheus metrics.
//
//	kinky_apply_requests_total        parameter sets handed to the scheduler
//	kinky_apply_coalesced_total       pending parameter sets replaced before dispatch
//	kinky_jobs_dispatched_total       transform jobs sent to the worker
//	kinky_jobs_completed_total        transform jobs finished
//	kinky_jobs_failed_total           jobs that ended in a worker failure
//	kinky_transform_duration_seconds  wall time per job
//	kinky_recompute_busy              1 while a recompute cycle is outstanding
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kinky/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns its registry so several sessions (and tests) can coexist.
type Collector struct {
	registry *prometheus.Registry

	requests   prometheus.Counter
	coalesced  prometheus.Counter
	dispatched prometheus.Counter
	completed  prometheus.Counter
	failed     prometheus.Counter
	duration   prometheus.Histogram
	busy       prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kinky_apply_requests_total",
			Help: "Total number of parameter sets handed to the scheduler",
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kinky_apply_coalesced_total",
			Help: "Total number of pending parameter sets superseded before dispatch",
		}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kinky_jobs_dispatched_total",
			Help: "Total number of transform jobs dispatched to the worker",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kinky_jobs_completed_total",
			Help: "Total number of transform jobs completed",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kinky_jobs_failed_total",
			Help: "Total number of transform jobs that ended in a worker failure",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kinky_transform_duration_seconds",
			Help:    "Transform job wall time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kinky_recompute_busy",
			Help: "1 while a recompute cycle is outstanding",
		}),
	}

	c.registry.MustRegister(
		c.requests,
		c.coalesced,
		c.dispatched,
		c.completed,
		c.failed,
		c.duration,
		c.busy,
	)
	return c
}

func (c *Collector) Requested()  { c.requests.Inc() }
func (c *Collector) Coalesced()  { c.coalesced.Inc() }
func (c *Collector) Dispatched() { c.dispatched.Inc() }
func (c *Collector) Failed()     { c.failed.Inc() }

func (c *Collector) Completed(d time.Duration) {
	c.completed.Inc()
	c.duration.Observe(d.Seconds())
}

func (c *Collector) SetBusy(busy bool) {
	if busy {
		c.busy.Set(1)
	} else {
		c.busy.Set(0)
	}
}

// Registry exposes the underlying registry for scraping or inspection.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Metrics", "metrics endpoint listening", map[string]interface{}{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

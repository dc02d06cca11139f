package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jetlumen"

// Registry owns the daemon's collectors on a private prometheus registry.
type Registry struct {
	reg            *prometheus.Registry
	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	rpcRequests    *prometheus.CounterVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Workflow actions by mode, route and outcome.",
		}, []string{"mode", "route", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "End to end workflow action latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"mode"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Service errors by category.",
		}, []string{"category"}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC requests by method and result.",
		}, []string{"method", "result"}),
	}
	reg.MustRegister(
		r.actions,
		r.actionDuration,
		r.errors,
		r.rpcRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Registry) ObserveAction(mode, route, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	mode = labelOrUnknown(mode)
	r.actions.WithLabelValues(mode, labelOrUnknown(route), labelOrUnknown(outcome)).Inc()
	r.actionDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (r *Registry) RecordError(category string) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(labelOrUnknown(category)).Inc()
}

func (r *Registry) RecordRPC(method string, ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	r.rpcRequests.WithLabelValues(labelOrUnknown(method), result).Inc()
}

// Gatherer is the source Handler serves.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{})
}

func labelOrUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

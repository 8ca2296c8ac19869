package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

var (
	// httpRequestsTotal counts HTTP requests by method, route and status code.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "code"},
	)

	// httpRequestDuration tracks HTTP handler latency.
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deck_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// grpcRequestsTotal counts unary RPCs by method and status code.
	grpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_grpc_requests_total",
			Help: "Total number of unary gRPC requests handled",
		},
		[]string{"method", "code"},
	)

	// graphNodes tracks the size of returned dependency graphs.
	graphNodes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deck_graph_nodes",
			Help:    "Number of nodes in returned dependency graphs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"view"},
	)

	// graphLinks tracks the number of links in returned dependency graphs.
	graphLinks = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deck_graph_links",
			Help:    "Number of links in returned dependency graphs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"view"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(grpcRequestsTotal)
	prometheus.MustRegister(graphNodes)
	prometheus.MustRegister(graphLinks)
}

// observeGraph records the size of a graph served for view ("full" or "tree").
func observeGraph(view string, g *model.Graph) {
	graphNodes.WithLabelValues(view).Observe(float64(len(g.Nodes)))
	graphLinks.WithLabelValues(view).Observe(float64(len(g.Links)))
}

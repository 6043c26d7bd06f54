package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heartroom_ws_connections",
		Help: "Current number of open chat websocket connections",
	})
	MessagesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heartroom_messages_created_total",
		Help: "Total number of chat messages persisted",
	})
	HeartsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heartroom_hearts_total",
		Help: "Heart attempts by result",
	}, []string{"result"})
	FeedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heartroom_feed_events_total",
		Help: "Change feed events published",
	}, []string{"table", "type"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heartroom_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "heartroom_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(WsConnections, MessagesCreated, HeartsTotal, FeedEvents, HTTPRequestsTotal, HTTPRequestDuration)
}
